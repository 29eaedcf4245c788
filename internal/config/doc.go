// Package config loads the taskboard configuration file.
//
// # Resolution
//
// Load reads ~/.config/taskboard/config.toml unless a path is given. A
// missing file is not an error; every field has a default. Values are then
// overridden, key by key, from a dotenv file (./.env unless a path is given)
// and finally from the process environment:
//
//   - TASKBOARD_API_URL overrides api_url
//   - TASKBOARD_MIRROR_BACKEND overrides [mirror] backend
//   - TASKBOARD_REDIS_URL overrides [mirror] redis_url
//   - TASKBOARD_LOG_LEVEL overrides log_level
//
// An explicitly named dotenv file must exist; the implicit ./.env may not.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:3000"
//	log_file = "~/.local/state/taskboard/taskboard.log"
//	log_level = "info"
//	assignees = ["Ana", "Ben"]
//	refresh_seconds = 30
//
//	[mirror]
//	backend = "sqlite"          # sqlite, redis or memory
//	path = "~/.local/state/taskboard/mirror.db"
//	redis_url = "redis://127.0.0.1:6379/0"
//	redis_prefix = "taskboard:"
//
// Paths accept a leading tilde. refresh_seconds = 0 turns the background
// refresh off.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors, unknown log
// levels, unknown mirror backends and negative refresh intervals. Every
// validation error mentions "parse config".
package config

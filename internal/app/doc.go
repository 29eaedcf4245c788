// Package app is the composition root of taskboard.
//
// # Startup
//
// Run performs these steps in order:
//
//  1. Load config.toml, then apply .env and environment overrides
//  2. Open the log file (the terminal belongs to the TUI)
//  3. Open the mirror backend: SQLite file, Redis or memory
//  4. Build the REST client and both stores, bind them to each other and
//     restore the mirrored collections and table state
//  5. Start the background reconciler
//  6. Run the TUI until the user quits or the context is cancelled
//
// The TUI opens on the mirrored projects and fetches the server's copy as
// its first command. Tasks are not fetched up front; the UI loads them when
// a project is opened.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()         TOML + .env + environment
//	       ├─────> mirror.New()          local snapshot store
//	       ├─────> remote.NewClient()    REST API
//	       ├─────> buildStores()         projects <-> tasks, Restore()
//	       ├─────> StartReconciler()     periodic ProjectStore.Sync
//	       └─────> ui.Run()              blocks
//
// # Reconciler
//
// The reconciler calls ProjectStore.Sync every refresh interval so task
// counts changed by other clients show up. Failures are logged, not toasted,
// and back off exponentially to a five minute ceiling; the first success
// resets the interval. refresh_seconds = 0 disables it.
//
// # Error Handling
//
// Configuration, log file, mirror and client setup errors are returned from
// Run. Once the UI is up, failures surface as toasts from the stores and as
// log entries.
package app

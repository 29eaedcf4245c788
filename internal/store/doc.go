// Package store owns the client-side project and task collections.
//
// # Overview
//
// ProjectStore and TaskStore each hold one ordered in-memory collection and
// the display state of one table. Every mutation updates the collection,
// writes it to the mirror and publishes a toast through a notify.Sink. The
// server is the source of truth for records; collection order is a client
// concern.
//
// # Wiring
//
// The stores reference each other through narrow interfaces so neither
// owns the other:
//
//	projects := store.NewProjectStore(client, deps)
//	tasks := store.NewTaskStore(client, deps)
//	projects.BindTasks(tasks)    // TaskCascade for Delete
//	tasks.BindProjects(projects) // ProjectRefresher for task counts
//
// # Task Counts
//
// Project.TaskCount is never computed locally. After a task is created or
// deleted, the task store asks the project store to FetchOne the owning
// project, and the server's recount comes back with it.
//
// # Cascading Delete
//
// ProjectStore.Delete removes the project's loaded tasks one at a time, then
// the project. The first failing task delete stops the cascade; tasks
// already deleted stay deleted and the project is kept.
//
// # Errors
//
// Fetches swallow failures after logging and notifying, leaving the current
// collection in place. Create, Update and Delete also return the error,
// wrapped. Local validation failures wrap ErrInvalidDraft or
// ErrMissingProject and never reach the server.
//
// # Table State
//
// Sorting, filters and column widths are mirrored per table. Stored sorting
// is validated strictly: one malformed entry discards the whole value.
// Filters and widths are stored as given.
package store

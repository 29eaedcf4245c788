// Package mockserver is a local stand-in for the taskboard REST backend.
//
// It serves /projects and /tasks from a JSON file with json-server
// conventions: numeric ids are assigned on POST, missing records answer 404
// with {}, and deleting a project deletes its tasks. Two rules of the real
// backend are layered on top:
//
//   - POST /tasks needs a projectId naming an existing project
//   - creating or deleting a task recounts its project's taskCount
//
// Request counts, latencies and record totals are exported on /metrics.
package mockserver

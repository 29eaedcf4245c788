// Package ui implements the taskboard terminal interface on Bubble Tea.
//
// The model renders two tables, projects and the tasks of one open project,
// and drives the stores in internal/store. Store calls that reach the server
// run as tea.Cmds and report back with an opDoneMsg; the stores publish their
// own outcome toasts, which the model polls and draws above the command bar.
//
// Table display state (sorting, the task status filter and the first column
// width) is saved through the stores so it survives restarts. The theme and
// the last opened project are saved to the preferences file.
package ui

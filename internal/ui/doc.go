// Package ui implements an interactive terminal interface for a sync run using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [SyncView] : Spinner with the latest progress messages while the engine runs
//  2. [ResultView] : Outcome summary and a scrollable list of additions, removals and dropped candidates
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during the run.
//
// Logging must go to a file while the TUI owns the terminal (see shared.NewFileLogger).
package ui

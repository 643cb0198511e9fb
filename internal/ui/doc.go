// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the search form of the keyword scanner:
//  1. [FormView] : Keywords, folder, exact match toggle and worker count, with upload progress
//     and the last error underneath
//  2. [ResultView] : Speedup chart, timing and the list of matches, with the selected match
//     shown in full
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.Orchestrator]; the submit key does nothing while a search is in flight.
//
// Keyboard navigation uses tab/shift+tab between fields, enter to search, space to toggle exact match and
// esc to go back, with contextual help displayed via charmbracelet/bubbles/help.
package ui

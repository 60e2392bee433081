// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for the blind listening comparison:
//  1. [SeedListView] : Browse and pick a seed track
//  2. [ComparisonView] : Listen to both arms side by side and vote
//  3. [RatingView] : Rate the winning playlist on three dimensions
//  4. [ResultView] : Reveal which source the participant picked
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Playback updates flow through a channel from the playback controller, providing
// non-blocking progress reporting while audio plays.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a/b, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui

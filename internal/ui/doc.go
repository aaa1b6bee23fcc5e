// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a menu-driven workflow for browsing passport data:
//  1. [MenuView] : Pick an action (profile, playlists, passport sources, demo)
//  2. [LoadingView] : Shown while the backend request is in flight
//  3. [ReportView] : Rendered report text with reload and back navigation
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Report bodies are produced by the formatter package so the TUI and CLI print identical output.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

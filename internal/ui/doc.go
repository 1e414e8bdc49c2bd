// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides the admin workflow for the catalog:
//  1. [LoginView] : Sign in against the configured credentials
//  2. [VideoListView] : Browse paginated videos as cards or a table, filter them and open actions
//  3. [CategoryListView] : Browse categories
//  4. [FormView] : Create or edit a video or category
//  5. [ConfirmView] : Confirm a delete
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern. Video page loads carry a
// sequence number and results for a superseded request are dropped. Notices flow through a channel from the
// CatalogEngine and are shown on the status line.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui

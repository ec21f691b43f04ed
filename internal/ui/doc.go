// Package ui implements the interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI has six views:
//  1. [HomeView] : Carousels of highlighted, recent and most liked cards, or search results
//  2. [ResourceView] : Resource details with like, open and add-to-playlist
//  3. [PlaylistView] : Ordered items with move and save
//  4. [AdminView] : User directory with status toggle (staff only)
//  5. [TagsView] : Tag creation and deletion (staff only)
//  6. [ProfileView] : The signed-in user's playlists and resources
//
// The [Model] implements the standard Init/Update/View pattern, receiving results via the Msg union type.
// State changes only inside Update; commands capture the view context and token at creation, and a result
// whose token no longer matches the current view is dropped. Leaving a view cancels its requests.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed
// via charmbracelet/bubbles/help.
package ui

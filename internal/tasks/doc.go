// Package tasks holds the state machines behind the catalog views.
//
// # Browsing
//
// [Browser] is the home view: tags, a search query or tag filter, and the carousels derived by
// [Derive]. Each carousel is paged by a [Window] of four cards. Fetches are split into
// [Browser.Begin], [Browser.Fetch] and [Browser.Apply] so the network part can run in a
// goroutine; every fetch carries a [Token] and only the latest one is applied.
//
// # Mutations
//
//   - [Like] is the optimistic like latch of a resource view.
//   - [Reorder] moves playlist items and saves the dense order.
//   - [Users] is the admin directory with the guarded status toggle.
//   - [Tags] adds and removes tags, rejecting duplicates locally.
//   - [SubmitResource], [SubmitPlaylist] and the password flows validate before calling out.
//
// # Progress Reporting
//
// [Exporter.BulkExport] writes many playlists through a rate-limited worker pool. Progress
// goes out as [ProgressUpdate] values on a channel; sends use select with default so a slow
// reader never blocks the export.
package tasks

// Package tasks orchestrates catalog operations with list state kept consistent with the server.
//
// # Lists
//
// [VideoList] and [CategoryList] hold what list views display. A video load fetches one page of videos and all
// categories concurrently and joins them before either is applied:
//
//  1. [VideoList.Begin] : issue a request with the next sequence number
//  2. [VideoList.Fetch] : run both requests through an errgroup
//  3. [VideoList.Apply] : install the result only if no newer request was issued
//
// A failed load leaves the previous items and page state in place.
//
// # Writes
//
// [CatalogEngine] saves [forms.Session] values and deletes entities:
//   - create sessions are validated locally and never reach the network when incomplete
//   - edit sessions send only the changed fields, and send nothing when there are none
//   - every successful write reloads the affected list from the server
//
// Failed writes return the API error and leave the session untouched for a retry.
//
// # Notices
//
// Results are reported through an optional non-blocking channel. The [Notice] struct carries a level, a title such as "Created" and a message such as "Video uploaded".
// Sends use select with default, so a slow reader drops notices rather than stalling a save.
//
// # Page Scans
//
// [CatalogEngine.FetchAll] reads every page through a worker pool sharing a [rate.Limiter]. It backs
// [CatalogEngine.ExportAll] and the page scan in [CatalogEngine.FindVideo].
//
// # Submission History
//
// The optional [Recorder] (repositories.SubmissionRecorder) stores every write attempt. Recording errors are logged
// and never fail the write.
package tasks

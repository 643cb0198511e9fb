// Package models defines the data exchanged between the keyword scanner client and the remote search service.
//
// Request entities are created fresh for every submission:
//   - [FileSet] : the ordered files collected from a folder, each a [SelectedFile]
//   - [SearchParameters] : keywords, exact-match flag and worker count sent with the files
//   - [SearchResponse] : the [MatchResult] list and [Timing] returned by the service
//
// [SearchRun] is the only persisted entity: a summary of a finished submission kept in the
// optional history database.
package models

// Package repositories implements SQLite persistence for search history.
//
// Key Implementations:
//   - [SearchRepository] : Finished submissions and their match results
//   - [HistoryAdapter] : Plugs [SearchRepository] into the orchestrator as a history recorder
//
// Match results are stored one row per result in response order; their keyword lists are
// JSON encoded.
package repositories

// Package services implements the HTTP transport to the remote keyword search service.
//
// # Search Requests
//
// [SearchClient.Search] sends one multipart POST to /api/search per call. The body is streamed
// through an [io.Pipe] rather than buffered, with an exact Content-Length computed up front so
// upload progress can be reported as a percentage of the whole payload.
//
// Parts, in order:
//   - files : one part per selected file, filename set to the path relative to the folder
//   - keywords : the raw comma-separated keyword text
//   - exactMatch : "true" or "false"
//   - numWorkers : decimal worker count
//
// # Progress Reporting
//
// Byte progress is delivered as [UploadProgress] values on a caller-owned channel. Events are
// sent in order, the percentage never decreases, and no event is sent after Search returns.
// Sends block until received (or the context ends), so the caller must drain the channel
// while Search runs. An optional interval throttles intermediate events; reaching 100% is
// always reported.
//
// # Authentication
//
// When a token is configured, requests carry it as a bearer token through an
// [oauth2.StaticTokenSource] client.
//
// # Error Handling
//
// Transport failures (connection refused, reset, context cancellation) are wrapped with
// [shared.ErrAPIRequest]. Non-2xx responses are not errors at this layer: the caller inspects
// [APIResponse.StatusCode] and body.
package services

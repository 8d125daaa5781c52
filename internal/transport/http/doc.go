// Package http implements the HTTP handlers for the analytics API.
// Handlers stay thin: they parse and validate requests, delegate to the
// service layer, and render JSON responses or RFC 7807-style error
// envelopes via the shared error handler.
//
// Route layout:
//
//	POST   /api/datasets                          upload CSV/XLSX
//	GET    /api/datasets                          list datasets
//	GET    /api/datasets/{id}                     dataset summary
//	DELETE /api/datasets/{id}                     remove dataset
//	POST   /api/datasets/{id}/query               run analytics pipeline
//	POST   /api/datasets/{id}/snapshots           build frozen snapshot
//	GET    /api/snapshots                         list snapshot summaries
//	GET    /api/snapshots/{id}                    full snapshot bundle
//	DELETE /api/snapshots/{id}                    remove snapshot
//	POST   /api/snapshots/{id}/replay             verify replay determinism
//	POST   /api/snapshots/{id}/export             write JSON + CSV exports
package http

// Package app wires configuration, logging, OpenTelemetry, the
// websocket hub, the service layer, and the chi router into one
// runnable server with graceful shutdown.
//
// Initialization order:
//
//	1. Load configuration from environment plus optional YAML overlay
//	2. Initialize the shared slog logger
//	3. Initialize OpenTelemetry tracing and Prometheus metrics
//	4. Create the websocket hub and the dataset/analytics/snapshot services
//	5. Build the router and the HTTP server
//
// Run blocks until SIGINT/SIGTERM, then drains the HTTP server,
// stops the hub, and flushes telemetry.
package app

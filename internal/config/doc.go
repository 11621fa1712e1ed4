// Package config defines configuration structures for the glean CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (GLEAN_ prefix)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, then the file, then the
// environment, then flags.
//
// # Example
//
//	url: http://localhost:8080/fragment?id={id}
//	max_id: 9223372036854775807
//	initial_requests: 500
//	quiet_period: 50ms
//	extra_requests: 50
//	backfill_interval: 50ms
//	request_timeout: 10s
//	rate_limit: 0          # probes per second, 0 = unlimited
//	progress: true
//	bucket: file:///var/lib/glean
//	object: runs/latest.json
//	metrics_addr: :9090
//	log_level: info
package config

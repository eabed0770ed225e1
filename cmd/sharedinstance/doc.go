// Command sharedinstance probes the process-wide sample instance.
//
// It starts N goroutines together, has each one request the shared sample
// instance, and reports whether all of them received the same object.
//
// Usage:
//
//	sharedinstance [--config FILE] [--callers N] [--log-level L] [--output yaml|text]
//	sharedinstance version
//
// Configuration is layered, lowest precedence first:
//
//   - built-in defaults (callers 8, logLevel info, logFormat text, output yaml)
//   - the YAML file given by --config
//   - SHARED_LOG_LEVEL, SHARED_LOG_FORMAT, SHARED_CALLERS, SHARED_OUTPUT
//   - command-line flags
//
// The merged result is validated once, after flags are applied, so a flag can
// replace an invalid value from the file or the environment.
//
// Exit codes:
//
//   - 0: every caller received the same instance
//   - 1: runtime failure (unreadable config, identity violated)
//   - 2: usage error (bad flag, stray argument, invalid merged config)
//
// Example report:
//
//	id: 5b0f7c1e-2f3a-4c55-9a51-0d7f4f3f2b8e
//	type: '*sample.Sample'
//	createdAt: 2026-10-19T09:00:00.123456789Z
//	callers: 8
//	distinct: 1
package main

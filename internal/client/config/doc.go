// Package config loads runtime configuration for the notehub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed NOTEHUB_, optionally seeded from a .env
//     file (already-set variables win over the file).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     backend API base URL
//	-l string     log format (text, json, zap)
//	-s string     session database path
//	-t duration   request timeout
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://notehub.example/api",
//	  "firebase_api_key": "AIza...",
//	  "storage": "s3",
//	  "s3_bucket": "notes",
//	  "persist_session": true,
//	  "request_timeout": "30s"
//	}
package config

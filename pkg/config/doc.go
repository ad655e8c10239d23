// Package config provides configuration management for Lantern.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("lantern.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("lantern.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LANTERN_SECTION_FIELD.
// For example:
//
//   - LANTERN_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LANTERN_SERVER_MAX_CONCURRENT overrides server.max_concurrent
//   - LANTERN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("lantern.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	  max_concurrent: 16
//	  admission_timeout: 30s
//
//	static:
//	  mounts:
//	    - pattern: "/.*"
//	      root: "/"
//	      backend: "dir"
//	      path: "./public"
//	      watch: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    enabled: true
package config

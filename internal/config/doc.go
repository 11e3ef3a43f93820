// Package config handles configuration loading for deep-thoughts.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file (chosen by extension) with
// environment variable expansion. Load applies defaults, then validates.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from DEEP_THOUGHTS_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/deep-thoughts/server.yaml
//  3. ~/.config/deep-thoughts/server.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${DEEP_THOUGHTS_JWT_SECRET}"
//
// PORT and DEEP_THOUGHTS_DB_PATH override server.http_addr and database.path.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "localhost:3001"
//	  allowed_origins: ["http://localhost:3000"]
//	  shutdown_timeout: "5s"
//
//	database:
//	  driver: "sqlite"              # sqlite, dynamodb
//	  path: "~/.local/share/deep-thoughts/thoughts.db"
//	  dynamodb:
//	    table: "deep-thoughts"
//	    region: "us-east-1"
//	    endpoint: ""                # set for dynamodb-local
//
//	auth:
//	  jwt_secret: "${DEEP_THOUGHTS_JWT_SECRET}"   # at least 32 bytes
//	  token_ttl: "2h"
//	  max_login_failures: 5     # 0 disables the lockout
//	  login_lockout: "15m"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
//	tailscale:
//	  enabled: false
//	  hostname: "deep-thoughts"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: false
//	  funnel: false
//
// The same keys are accepted in TOML using tables ([server], [auth], ...).
package config

// Package config handles configuration loading for hearthd.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults. Configuration is read
// once at startup; there is no hot reload.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${HEARTH_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8000"
//
// Database:
//
//	database:
//	  path: "/var/lib/hearth/hearth.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${HEARTH_JWT_SECRET}"  # required
//	  token_ttl: "24h"                    # default 24h
//
// Managed storage location (reported in monitoring storage stats):
//
//	storage:
//	  path: "/var/lib/hearth/storage"  # default ./storage
//
// Filesystem browser sandbox (empty list disables the restriction):
//
//	browser:
//	  allowed_roots:
//	    - "/srv/media"
//	    - "/srv/storage"
//
// Monitoring:
//
//	monitoring:
//	  stream_interval: "2s"  # dashboard push interval on the WebSocket stream
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

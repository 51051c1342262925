// Package config provides application configuration management.
//
// The config package resolves settings from an optional config.yaml and from
// environment variables (CONTAINER_IMAGE, CONTAINER_MEMORY, MAX_PIDS, ...).
// Server and logging settings are validated strictly. Sandbox settings are
// resolved leniently: an unparseable override falls back to its default so
// the sandbox stays available.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile := cfg.Profile()
package config

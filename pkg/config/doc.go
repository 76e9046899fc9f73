// Package config handles configuration management for saltbox.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. <prefix>/etc/saltbox/saltbox.toml, when present
//  3. SALTBOX_* environment variables (SALTBOX_MERGE_TOOL -> merge.tool)
//  4. command-line overrides
package config

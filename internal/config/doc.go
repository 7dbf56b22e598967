// Package config loads tealeaf's configuration file.
//
// The file lives at ~/.config/tealeaf/config.toml and every field is
// optional; a missing file yields the defaults. TEALEAF_API_BASE in the
// environment overrides the configured API base, which makes .env files
// and one-off shells work without editing the config.
package config

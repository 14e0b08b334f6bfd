// Package config loads, normalizes, and validates vogsdemo configuration.
//
// Configuration lives in TOML (default ~/.config/vogsdemo/config.toml, falling
// back to ./vogsdemo.toml). Load applies repository defaults, expands home
// directory paths, honours the VOGSDEMO_ASSET_BASE_URL override, and rejects
// settings the loader or daemon cannot run with.
package config

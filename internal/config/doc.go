// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for genchat.
//
// Configuration is read from a TOML file, with built-in defaults for any
// missing key, environment variable overrides, and validation.
//
// Configuration file location:
//   - ~/.genchat/config.toml (or the path given with --config)
//   - Built-in defaults when the file does not exist
//
// # Example
//
//	[endpoint]
//	url = "http://localhost:8000"
//	timeout = "2m"
//
//	[storage]
//	backend = "sqlite"
//	key = "chatLog"
//
//	[ui]
//	default_mode = "image"
//
// # Hot Reload
//
// Watch observes the config file and hands every successfully parsed
// version to a callback. The TUI uses this to retarget the generation
// client without restarting.
package config

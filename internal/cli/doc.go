// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the genchat command line.
//
// Commands:
//
//	genchat                 TUI when stdout is a terminal, REPL otherwise
//	genchat repl            line-mode chat with history
//	genchat ask <text>      one submission, prints the reply
//	genchat history         print the stored transcript
//	genchat export          write the transcript as md, html, json, jsonl or yaml
//	genchat health          check the generation endpoint
//	genchat config          show, locate or create the config file
//	genchat version         print version information
//
// Global flags (--config, --endpoint, --mode, --storage, --verbose)
// override the config file and GENCHAT_* environment variables.
package cli

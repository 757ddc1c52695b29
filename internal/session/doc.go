// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat transcript and drives one generation
// request at a time against the endpoint.
//
// # Key Types
//
//   - Controller: transcript, selected mode, input text and busy flag
//   - Pending: a submission that has been accepted but not yet resolved
//   - Generator: the endpoint client the controller calls
//
// # Usage
//
// Frontends that block (the REPL, the ask command) call Submit:
//
//	ctrl := session.New(session.Options{Store: store, Client: client})
//	if err := ctrl.Restore(ctx); err != nil {
//	    // non-fatal: the transcript starts empty
//	}
//	reply, ok := ctrl.Submit(ctx, "a red bicycle")
//
// Event-loop frontends split the cycle in two so the network call can
// run elsewhere:
//
//	pending, ok := ctrl.Begin(ctx, text)
//	resp, err := client.Generate(ctx, pending.Request())
//	ctrl.Resolve(ctx, pending, resp, err)
//
// # Persistence
//
// The whole transcript is written to the store after every change and
// read back once by Restore.
package session

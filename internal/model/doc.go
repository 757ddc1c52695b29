// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the genchat transcript.
//
// # Key Types
//
//   - Exchange: one transcript entry (user input, assistant output, or error)
//   - Origin: who produced an exchange (user, assistant, error)
//   - Mode: generation mode of a submission (chat, image, video)
//
// # Usage
//
// Build exchanges with the constructors so the media invariant holds:
//
//	user := model.NewUserExchange("a cat")
//	reply := model.NewAssistantExchange(model.ModeImage, model.ImageGeneratedText, url)
//
// Serialize a transcript for storage:
//
//	data, err := model.MarshalTranscript(exchanges)
//	restored, err := model.UnmarshalTranscript(data)
package model

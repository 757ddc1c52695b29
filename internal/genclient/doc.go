// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genclient provides the HTTP client for the generation endpoint.
//
// The endpoint exposes a single POST /chat operation that takes the user's
// text and the selected mode, and answers with either a text reply
// (bot_response) or a media URL (media_url). A GET on the base URL serves
// as a health check.
//
// # Usage
//
//	client := genclient.NewClient()
//	resp, err := client.Generate(ctx, genclient.GenerateRequest{
//	    UserMessage: "a red bicycle",
//	    Model:       "image",
//	})
//	if err != nil {
//	    var clientErr *genclient.ClientError
//	    if errors.As(err, &clientErr) && clientErr.Type == genclient.ErrTypeTimeout {
//	        // ...
//	    }
//	}
//	fmt.Println(resp.MediaURL)
//
// # Error Handling
//
// All failures are returned as *ClientError with a Type describing what
// went wrong. Callers that only need a yes/no answer can treat any
// non-nil error the same way.
package genclient

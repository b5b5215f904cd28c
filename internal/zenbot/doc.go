// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package zenbot provides the HTTP client for the ZenBot steel-specifications
// assistant service.
//
// The service is an external collaborator. This package speaks its JSON and
// streaming contract and nothing else.
//
// # Key Types
//
//   - Client: HTTP client for health, metrics, chat and history endpoints
//   - Frame: one decoded event from the chat stream
//   - FrameDecoder: line-buffered decoder that survives arbitrary read splits
//   - APIError: non-2xx response with its status and body
//
// # Usage
//
// Stream one answer:
//
//	client := zenbot.NewClient("http://localhost:8000")
//	err := client.ChatStream(ctx, zenbot.ChatRequest{
//	    Message: "What's the yield strength of Fe 550D 16mm?",
//	    Mode:    model.ModeFixed,
//	}, func(f zenbot.Frame) {
//	    if f.Type == zenbot.FrameToken {
//	        fmt.Print(f.Text())
//	    }
//	})
//
// # Streaming
//
// The stream endpoint writes lines of the form
//
//	data: {"type": "token", "content": "Fe "}
//
// A network read may end in the middle of a line. FrameDecoder carries the
// unterminated tail over to the next read and only parses complete lines.
// Lines that fail to parse are surfaced as frames with a non-nil Err so the
// caller can log and skip them in order.
package zenbot

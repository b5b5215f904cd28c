// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// evaluations and aggregate quality metrics.
//
// # Key Types
//
//   - Conversation: append-only ordered sequence of messages for one session
//   - Message: single message with role, content, timestamp and an optional evaluation
//   - Evaluation: the backend's per-answer scores (spec, pricing, hallucination, overall)
//   - Metrics: aggregate snapshot returned by the metrics endpoint
//   - Mode: which documentation set the backend answers from (fixed or buggy)
//   - HealthStatus: checking, healthy or unhealthy
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("What's the current price of TMT 12mm?"))
//	reply := model.NewAssistantMessage()
//	conv.Append(reply)
//	reply.AppendToken("Rs 58,000 ")
//	reply.AppendToken("per tonne.")
//	reply.Finalize()
package model

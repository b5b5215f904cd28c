// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat state of one client session: the
// conversation, the pending input, the documentation mode and the turn in
// flight.
//
// It is transport agnostic. Callers submit a turn, run the request however
// they like, feed every decoded frame back through ApplyFrame and close the
// turn with Finish. The TUI and the line-oriented REPL share it.
//
// # Turn Phases
//
//	idle -> awaiting -> streaming -> complete
//	            \            \
//	             +------------+---> failed
//
// The assistant message is created on the first token or evaluation frame
// and then mutated through the pointer the turn holds, never looked up by
// position.
//
// # Usage
//
//	s := session.New(model.ModeFixed)
//	s.SetInput("What's the delivery time to Ranchi?")
//	turn, err := s.Submit()
//	if err != nil {
//	    return err
//	}
//	err = client.ChatStream(ctx, turn.Request, func(f zenbot.Frame) {
//	    s.ApplyFrame(turn.ID, f)
//	})
//	s.Finish(turn.ID, err)
package session

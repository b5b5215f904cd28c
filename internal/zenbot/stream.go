// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package zenbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
)

// =============================================================================
// FRAMES
// =============================================================================

// FrameType discriminates chat stream events.
type FrameType string

const (
	FrameToken      FrameType = "token"
	FrameEvaluation FrameType = "evaluation"
	FrameDone       FrameType = "done"
	FrameError      FrameType = "error"
)

// ErrMalformedFrame is wrapped by the Err of every frame that failed to decode.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one decoded event from the chat stream.
type Frame struct {
	Type           FrameType       `json:"type"`
	Content        json.RawMessage `json:"content,omitempty"`
	ConversationID int             `json:"conversation_id,omitempty"`

	// Raw is the original line. Err is non-nil when the line did not decode;
	// Type and Content are then unset.
	Raw string `json:"-"`
	Err error  `json:"-"`
}

// Malformed reports whether the frame failed to decode.
func (f Frame) Malformed() bool {
	return f.Err != nil
}

// Text returns the content as a string. JSON strings are unquoted; any other
// JSON value is returned verbatim.
func (f Frame) Text() string {
	if len(f.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(f.Content, &s); err == nil {
		return s
	}
	return string(f.Content)
}

// Evaluation decodes the content of an evaluation frame.
func (f Frame) Evaluation() (model.Evaluation, error) {
	var eval model.Evaluation
	if err := json.Unmarshal(f.Content, &eval); err != nil {
		return model.Evaluation{}, fmt.Errorf("%w: evaluation content: %v", ErrMalformedFrame, err)
	}
	return eval.Normalize(), nil
}

// StreamCallback receives frames in stream order.
type StreamCallback func(Frame)

// =============================================================================
// FRAME DECODER
// =============================================================================

const dataPrefix = "data:"

// FrameDecoder turns arbitrary byte chunks into frames. Bytes after the last
// newline are carried over to the next Feed, so a line split across reads is
// decoded once it is complete. The zero value is ready to use.
type FrameDecoder struct {
	carry []byte
}

// Feed appends chunk and returns the frames of every line it completed.
func (d *FrameDecoder) Feed(chunk []byte) []Frame {
	d.carry = append(d.carry, chunk...)

	var frames []Frame
	for {
		i := bytes.IndexByte(d.carry, '\n')
		if i < 0 {
			break
		}
		if f, ok := decodeLine(d.carry[:i]); ok {
			frames = append(frames, f)
		}
		d.carry = d.carry[i+1:]
	}
	if len(d.carry) == 0 {
		d.carry = nil
	}
	return frames
}

// Flush decodes whatever remains after the stream ended without a final newline.
func (d *FrameDecoder) Flush() []Frame {
	rest := d.carry
	d.carry = nil
	if f, ok := decodeLine(rest); ok {
		return []Frame{f}
	}
	return nil
}

// Pending returns the number of carried-over bytes.
func (d *FrameDecoder) Pending() int {
	return len(d.carry)
}

// decodeLine parses one line. Lines without the data prefix (blank
// separators, comments, other SSE fields) yield no frame.
func decodeLine(line []byte) (Frame, bool) {
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Frame{}, false
	}
	payload := bytes.TrimPrefix(line[len(dataPrefix):], []byte(" "))
	raw := string(line)

	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedFrame, err)}, true
	}
	switch f.Type {
	case FrameToken, FrameEvaluation, FrameDone, FrameError:
	default:
		return Frame{Raw: raw, Err: fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, f.Type)}, true
	}
	f.Raw = raw
	return f, true
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// streamReadSize is the read buffer for the chat stream.
const streamReadSize = 4096

// ChatStream posts req to the streaming endpoint and calls callback for each
// frame in order. It returns nil when the server closes the stream, however
// many frames arrived. A request error, non-2xx status, missing body or
// read error is returned; frames decoded before a read error have already
// been delivered.
//
// There is no timeout; cancel ctx to abandon the stream.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, callback StreamCallback) error {
	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return ErrNoBody
	}

	return processStream(resp.Body, callback)
}

// processStream reads body to EOF, feeding every chunk through a FrameDecoder.
func processStream(body io.Reader, callback StreamCallback) error {
	var dec FrameDecoder
	buf := make([]byte, streamReadSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, f := range dec.Feed(buf[:n]) {
				callback(f)
			}
		}
		if errors.Is(err, io.EOF) {
			for _, f := range dec.Flush() {
				callback(f)
			}
			return nil
		}
		if err != nil {
			if dec.Pending() > 0 {
				logging.Debugw("discarding partial line", "bytes", dec.Pending())
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}
}

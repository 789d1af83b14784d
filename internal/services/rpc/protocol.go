// Package rpc serves the lottery tools over line-delimited JSON-RPC 2.0 so an
// assistant host can drive ingestion and lookups through stdio
package rpc

import (
	"bytes"
	"encoding/json"

	perr "glolotto/internal/platform/errors"
)

// ProtocolVersion is the tool protocol revision announced by initialize
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one inbound message
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// HasID reports whether the message carries a non null id
func (r Request) HasID() bool {
	b := bytes.TrimSpace(r.ID)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}

// Response is one outbound message. ID is null only for parse errors
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is the JSON-RPC error object; Data carries the project error wire when known
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var nullID = json.RawMessage("null")

func result(req Request, v any) Response {
	return Response{JSONRPC: "2.0", Result: v, ID: req.ID}
}

func failure(req Request, code int, msg string, data any) Response {
	return Response{JSONRPC: "2.0", Error: &Error{Code: code, Message: msg, Data: data}, ID: req.ID}
}

// toolFailure maps a tool error to a JSON-RPC error; bad arguments are -32602
func toolFailure(req Request, err error) Response {
	w := perr.WireFrom(err)
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeValidation, perr.ErrorCodeJSON:
		return failure(req, CodeInvalidParams, "Invalid arguments: "+w.Message, w)
	}
	return failure(req, CodeInternalError, "Tool execution error: "+err.Error(), w)
}

// TextContent is one content block of a tool result
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the result of tools/call
type ToolResult struct {
	Content []TextContent `json:"content"`
}

// Tool describes one callable tool in tools/list
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Package mcp implements the JSON-RPC envelope and method dispatch of the
// demo server. Transports hand it decoded requests; it never fails past the
// envelope.
package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/johncarpenter/osdu-mcp-demo/internal/catalog"
)

// JSON-RPC 2.0 structures

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// HasID reports whether the caller supplied a non-null id.
func (r *Request) HasID() bool {
	return present(r.ID)
}

// present reports whether raw holds a value other than null.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// RPCError represents a JSON-RPC 2.0 error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
	// ServerError is the generic handler failure code.
	ServerError = -32000
)

const jsonRPCVersion = "2.0"

// DefaultID is echoed when the caller omits the id.
var DefaultID = json.RawMessage(`1`)

// Protocol structures

// ServerInfo describes the server implementation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capability marks a supported feature.
type Capability struct {
	Supported bool `json:"supported"`
}

// Capabilities describes what the server supports.
type Capabilities struct {
	Resources *Capability `json:"resources,omitempty"`
	Tools     *Capability `json:"tools,omitempty"`
	Prompts   *Capability `json:"prompts,omitempty"`
}

// InitializeParams are the parameters for the initialize method.
type InitializeParams struct {
	ProtocolVersion string      `json:"protocolVersion"`
	ClientInfo      *ServerInfo `json:"clientInfo,omitempty"`
}

// InitializeResult is the result of the initialize method.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ResourcesListResult is the result of resources/list.
type ResourcesListResult struct {
	Resources  []catalog.Resource `json:"resources"`
	NextCursor *string            `json:"nextCursor"`
}

// ResourceReadParams are the parameters for resources/read.
type ResourceReadParams struct {
	URI string `json:"uri"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools []catalog.Tool `json:"tools"`
}

// ToolCallParams are the parameters for tools/call. Arguments may arrive
// under "arguments" or, from older clients, under "params".
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Args returns whichever argument field was supplied.
func (p ToolCallParams) Args() json.RawMessage {
	if present(p.Arguments) {
		return p.Arguments
	}
	return p.Params
}

// PromptsListResult is the result of prompts/list.
type PromptsListResult struct {
	Prompts []catalog.Prompt `json:"prompts"`
}

// PromptGetParams are the parameters for prompts/get.
type PromptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
}

// Args returns whichever argument field was supplied.
func (p PromptGetParams) Args() map[string]string {
	if p.Arguments != nil {
		return p.Arguments
	}
	return p.Params
}

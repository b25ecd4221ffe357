package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/johncarpenter/osdu-mcp-demo/internal/catalog"
	"github.com/johncarpenter/osdu-mcp-demo/internal/logging"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "OsduMCPDemo"
)

// Interceptor runs before dispatch. It may enrich the context or reject the
// request by returning an error; an *RPCError is sent as-is, anything else
// becomes an InvalidRequest error.
type Interceptor func(ctx context.Context, req *Request) (context.Context, error)

// CheckVersion rejects requests that name a JSON-RPC version other than 2.0.
// An absent version is accepted.
func CheckVersion(ctx context.Context, req *Request) (context.Context, error) {
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		return ctx, &RPCError{Code: InvalidRequest, Message: "Invalid JSON-RPC version"}
	}
	return ctx, nil
}

// tagLogger scopes the context logger to the request's method.
func (s *Server) tagLogger(ctx context.Context, req *Request) (context.Context, error) {
	logger := logging.FromContext(ctx, s.logger).With("rpc_method", req.Method)
	return logging.WithLogger(ctx, logger), nil
}

// Server dispatches JSON-RPC requests to the catalog.
type Server struct {
	catalog      *catalog.Catalog
	version      string
	logger       *slog.Logger
	interceptors []Interceptor
	reader       *bufio.Reader
	writer       io.Writer
}

// NewServer creates a new dispatcher over cat. Every request passes
// CheckVersion and gets a method-scoped logger before any interceptor added
// with Use.
func NewServer(cat *catalog.Catalog, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		catalog: cat,
		version: version,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}
	s.interceptors = []Interceptor{CheckVersion, s.tagLogger}
	return s
}

// Use appends interceptors, run in order before every dispatch.
func (s *Server) Use(interceptors ...Interceptor) {
	s.interceptors = append(s.interceptors, interceptors...)
}

// SetIO allows setting custom IO for testing.
func (s *Server) SetIO(r io.Reader, w io.Writer) {
	s.reader = bufio.NewReader(r)
	s.writer = w
}

// Run serves newline-delimited requests over the configured reader and
// writer until EOF or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if werr := s.serveLine(ctx, line); werr != nil {
				return werr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
	}
}

func (s *Server) serveLine(ctx context.Context, line []byte) error {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Error("invalid JSON in request", "error", err)
		return s.write(&Response{
			JSONRPC: jsonRPCVersion,
			Error:   &RPCError{Code: ParseError, Message: "Parse error"},
			ID:      json.RawMessage("null"),
		})
	}

	resp := s.Handle(ctx, &req)
	if ParseMethod(req.Method).IsNotification() && !req.HasID() {
		return nil
	}
	return s.write(resp)
}

func (s *Server) write(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// Handle runs the interceptors, dispatches req and wraps the outcome in an
// envelope. It always returns a response.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	// A null id is treated like an absent one and answered with DefaultID.
	id := req.ID
	if !req.HasID() {
		id = DefaultID
	}

	for _, intercept := range s.interceptors {
		next, err := intercept(ctx, req)
		if err != nil {
			var rpcErr *RPCError
			if !errors.As(err, &rpcErr) {
				rpcErr = &RPCError{Code: InvalidRequest, Message: err.Error()}
			}
			return s.respond(ctx, req, id, nil, rpcErr)
		}
		if next != nil {
			ctx = next
		}
	}

	logging.FromContext(ctx, s.logger).Debug("received request", "params", string(req.Params))

	result, rpcErr := s.dispatch(ctx, req)
	return s.respond(ctx, req, id, result, rpcErr)
}

func (s *Server) respond(ctx context.Context, req *Request, id json.RawMessage, result any, rpcErr *RPCError) *Response {
	resp := &Response{JSONRPC: jsonRPCVersion, ID: id}
	logger := logging.FromContext(ctx, s.logger)
	if rpcErr != nil {
		resp.Error = rpcErr
		logger.Debug("returning error", "method", req.Method, "code", rpcErr.Code, "message", rpcErr.Message)
		return resp
	}
	resp.Result = result
	logger.Debug("returning result", "method", req.Method)
	return resp
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	method := ParseMethod(req.Method)
	switch method {
	case MethodInitialize:
		return s.handleInitialize(), nil
	case MethodInitialized, MethodPing:
		return map[string]any{}, nil
	case MethodResourcesList:
		return ResourcesListResult{Resources: s.catalog.ListResources()}, nil
	case MethodResourcesRead:
		return s.handleResourcesRead(ctx, req)
	case MethodToolsList:
		return ToolsListResult{Tools: s.catalog.ListTools()}, nil
	case MethodToolsCall:
		return s.handleToolsCall(ctx, req)
	case MethodPromptsList:
		return PromptsListResult{Prompts: s.catalog.ListPrompts()}, nil
	case MethodPromptsGet:
		return s.handlePromptsGet(req)
	case MethodUnknown:
		return nil, &RPCError{Code: MethodNotFound, Message: "Method not found: " + req.Method}
	default:
		panic(fmt.Sprintf("mcp: unhandled method %v", method))
	}
}

func (s *Server) handleInitialize() InitializeResult {
	return InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: Capabilities{
			Resources: &Capability{Supported: true},
			Tools:     &Capability{Supported: true},
			Prompts:   &Capability{Supported: true},
		},
		ServerInfo: ServerInfo{
			Name:    serverName,
			Version: s.version,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, req *Request) (any, *RPCError) {
	var params ResourceReadParams
	if err := decodeParams(req.Params, &params); err != nil {
		return nil, err
	}

	result, err := s.catalog.ReadResource(ctx, params.URI)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, catalog.ErrInvalidURI) {
		return nil, &RPCError{Code: InvalidParams, Message: "Invalid resource URI: " + params.URI}
	}
	logging.FromContext(ctx, s.logger).Error("resource read error", "uri", params.URI, "error", err)
	return nil, &RPCError{Code: ServerError, Message: "Resource read error: " + err.Error()}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) (any, *RPCError) {
	var params ToolCallParams
	if err := decodeParams(req.Params, &params); err != nil {
		return nil, err
	}

	result, err := s.catalog.CallTool(ctx, params.Name, params.Args())
	if err == nil {
		return result, nil
	}
	if errors.Is(err, catalog.ErrUnknownTool) {
		return nil, &RPCError{Code: InvalidParams, Message: "Invalid tool name: " + params.Name}
	}
	logging.FromContext(ctx, s.logger).Error("tool call error", "tool", params.Name, "error", err)
	return nil, &RPCError{Code: ServerError, Message: "Tool call error: " + err.Error()}
}

func (s *Server) handlePromptsGet(req *Request) (any, *RPCError) {
	var params PromptGetParams
	if err := decodeParams(req.Params, &params); err != nil {
		return nil, err
	}

	text, err := s.catalog.GetPrompt(params.Name, params.Args())
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPrompt) {
			return nil, &RPCError{Code: InvalidParams, Message: "Invalid prompt name: " + params.Name}
		}
		return nil, &RPCError{Code: ServerError, Message: err.Error()}
	}
	return text, nil
}

// decodeParams unmarshals params into v; absent params leave v zeroed.
func decodeParams(params json.RawMessage, v any) *RPCError {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return &RPCError{Code: InvalidParams, Message: "Invalid params: " + err.Error()}
	}
	return nil
}

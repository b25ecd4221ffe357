// Package catalog holds the static resource, tool and prompt definitions
// exposed by the server, and routes reads and invocations to their handlers.
package catalog

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
)

var (
	// ErrInvalidURI is returned when no resource matches a URI.
	ErrInvalidURI = errors.New("invalid resource URI")
	// ErrUnknownTool is returned when no tool has the requested name.
	ErrUnknownTool = errors.New("invalid tool name")
	// ErrUnknownPrompt is returned when no prompt has the requested name.
	ErrUnknownPrompt = errors.New("invalid prompt name")
)

// ResourceError wraps a failure while reading a matched resource.
type ResourceError struct {
	URI string
	Err error
}

func (e *ResourceError) Error() string { return e.Err.Error() }
func (e *ResourceError) Unwrap() error { return e.Err }

// ToolError wraps a failure inside a matched tool, including missing or
// malformed arguments.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string { return e.Err.Error() }
func (e *ToolError) Unwrap() error { return e.Err }

func toolErrorf(tool, format string, args ...any) error {
	return &ToolError{Tool: tool, Err: fmt.Errorf(format, args...)}
}

// Resource describes an addressable resource.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Tool describes an invocable tool.
type Tool struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"inputSchema"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
}

// PromptArgument is one declared prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Prompt describes a prompt template.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// Catalog answers enumeration queries and dispatches reads and calls
// against a Store.
type Catalog struct {
	store     store.Store
	resources []resourceEntry
	tools     []toolEntry
	prompts   []promptEntry
}

// New builds the catalog over s.
func New(s store.Store) *Catalog {
	c := &Catalog{store: s}
	c.resources = c.resourceEntries()
	c.tools = c.toolEntries()
	c.prompts = promptEntries()
	return c
}

// ListResources returns the resource catalog in declaration order.
func (c *Catalog) ListResources() []Resource {
	out := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		out = append(out, r.Resource)
	}
	return out
}

// ListTools returns the tool catalog in declaration order.
func (c *Catalog) ListTools() []Tool {
	out := make([]Tool, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Tool)
	}
	return out
}

// ListPrompts returns the prompt catalog in declaration order.
func (c *Catalog) ListPrompts() []Prompt {
	out := make([]Prompt, 0, len(c.prompts))
	for _, p := range c.prompts {
		out = append(out, p.Prompt)
	}
	return out
}

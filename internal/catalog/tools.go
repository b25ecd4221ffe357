package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

// Tool input structures

// AddNumbersInput is the input for add_numbers.
type AddNumbersInput struct {
	A *int `json:"a"`
	B *int `json:"b"`
}

// GetCasingsForWellInput is the input for get_casings_for_well.
type GetCasingsForWellInput struct {
	WellID *string `json:"well_id"`
}

type toolEntry struct {
	Tool
	call func(ctx context.Context, args json.RawMessage) (any, error)
}

func (c *Catalog) toolEntries() []toolEntry {
	return []toolEntry{
		{
			Tool: Tool{
				Name:        "add_numbers",
				Description: "Adds two integers together.",
				InputSchema: &jsonschema.Schema{
					Type:  "object",
					Title: "add_numbersArguments",
					Properties: map[string]*jsonschema.Schema{
						"a": {Type: "integer", Title: "A"},
						"b": {Type: "integer", Title: "B"},
					},
					Required: []string{"a", "b"},
				},
				OutputSchema: &jsonschema.Schema{
					Type:  "object",
					Title: "add_numbersOutput",
					Properties: map[string]*jsonschema.Schema{
						"result": {Type: "integer", Title: "Result"},
					},
					Required: []string{"result"},
				},
			},
			call: c.addNumbers,
		},
		{
			Tool: Tool{
				Name:        "get_casings_for_well",
				Description: "Retrieves a list of all casings for a given well ID.",
				InputSchema: &jsonschema.Schema{
					Type:  "object",
					Title: "get_casings_for_wellArguments",
					Properties: map[string]*jsonschema.Schema{
						"well_id": {Type: "string", Title: "Well Id"},
					},
					Required: []string{"well_id"},
				},
				OutputSchema: &jsonschema.Schema{Type: "array"},
			},
			call: c.getCasingsForWell,
		},
		{
			Tool: Tool{
				Name:         "list_all_wells",
				Description:  "Lists all wells from the osdu:wells Resource.",
				InputSchema:  &jsonschema.Schema{Type: "object"},
				OutputSchema: &jsonschema.Schema{Type: "array"},
			},
			call: c.listAllWells,
		},
	}
}

// CallTool invokes the named tool with raw JSON arguments.
func (c *Catalog) CallTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	for _, t := range c.tools {
		if t.Name == name {
			return t.call(ctx, args)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// decodeArgs unmarshals tool arguments; absent arguments decode as {}.
func decodeArgs(tool string, args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return toolErrorf(tool, "invalid arguments: %v", err)
	}
	return nil
}

func (c *Catalog) addNumbers(_ context.Context, args json.RawMessage) (any, error) {
	const tool = "add_numbers"
	var input AddNumbersInput
	if err := decodeArgs(tool, args, &input); err != nil {
		return nil, err
	}
	if input.A == nil {
		return nil, toolErrorf(tool, "missing required argument: a")
	}
	if input.B == nil {
		return nil, toolErrorf(tool, "missing required argument: b")
	}
	a, b := *input.A, *input.B
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return nil, toolErrorf(tool, "integer overflow adding %d and %d", a, b)
	}
	return sum, nil
}

func (c *Catalog) getCasingsForWell(ctx context.Context, args json.RawMessage) (any, error) {
	const tool = "get_casings_for_well"
	var input GetCasingsForWellInput
	if err := decodeArgs(tool, args, &input); err != nil {
		return nil, err
	}
	if input.WellID == nil {
		return nil, toolErrorf(tool, "missing required argument: well_id")
	}

	casings, err := store.CasingsForWell(ctx, c.store, *input.WellID)
	if err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	if len(casings) == 0 {
		return nil, toolErrorf(tool, "No casings found for well %s", *input.WellID)
	}
	return casings, nil
}

func (c *Catalog) listAllWells(ctx context.Context, _ json.RawMessage) (any, error) {
	recs, err := c.store.All(ctx, types.KindWell)
	if err != nil {
		return nil, &ToolError{Tool: "list_all_wells", Err: err}
	}
	return store.WellsOf(recs), nil
}

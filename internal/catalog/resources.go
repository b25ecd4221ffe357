package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

const greetingScheme = "greeting://"

// matcher extracts template parameters from a URI.
type matcher interface {
	match(uri string) (map[string]string, bool)
}

type exactMatcher string

func (m exactMatcher) match(uri string) (map[string]string, bool) {
	return nil, uri == string(m)
}

// greetingMatcher takes the segment after "://" verbatim, with no decoding
// or character restrictions.
type greetingMatcher struct{}

func (greetingMatcher) match(uri string) (map[string]string, bool) {
	if !strings.HasPrefix(uri, greetingScheme) {
		return nil, false
	}
	name := strings.Split(uri, "://")[1]
	return map[string]string{"name": name}, true
}

type templateMatcher struct {
	tmpl *uritemplate.Template
}

func (m templateMatcher) match(uri string) (map[string]string, bool) {
	values := m.tmpl.Match(uri)
	if values == nil {
		return nil, false
	}
	params := make(map[string]string)
	for _, name := range m.tmpl.Varnames() {
		params[name] = values.Get(name).String()
	}
	return params, true
}

type resourceEntry struct {
	Resource
	matcher matcher
	read    func(ctx context.Context, params map[string]string) (any, error)
}

func (c *Catalog) resourceEntries() []resourceEntry {
	return []resourceEntry{
		{
			Resource: Resource{
				URI:         "greeting://{name}",
				Name:        "Greeting Resource",
				Description: "Returns a personalized greeting message. Replace {name} with a name.",
				MimeType:    "text/plain",
			},
			matcher: greetingMatcher{},
			read: func(_ context.Context, params map[string]string) (any, error) {
				return Greeting(params["name"]), nil
			},
		},
		c.collection("osdu:wells", "OSDU Wells Resource", "Retrieves all OSDU Well data.", types.KindWell),
		c.item("osdu:well://{id}", "OSDU Well Resource", "Retrieves one OSDU Well by id.", types.KindWell),
		c.collection("osdu:trajectories", "OSDU WellboreTrajectories Resource", "Retrieves all OSDU WellboreTrajectory data.", types.KindTrajectory),
		c.item("osdu:trajectory://{id}", "OSDU WellboreTrajectory Resource", "Retrieves one OSDU WellboreTrajectory by id.", types.KindTrajectory),
		c.collection("osdu:casings", "OSDU Casings Resource", "Retrieves all OSDU Casing data.", types.KindCasing),
		c.item("osdu:casing://{id}", "OSDU Casing Resource", "Retrieves one OSDU Casing by id.", types.KindCasing),
	}
}

func (c *Catalog) collection(uri, name, description string, kind types.Kind) resourceEntry {
	return resourceEntry{
		Resource: Resource{URI: uri, Name: name, Description: description, MimeType: "application/json"},
		matcher:  exactMatcher(uri),
		read: func(ctx context.Context, _ map[string]string) (any, error) {
			return c.store.All(ctx, kind)
		},
	}
}

func (c *Catalog) item(uri, name, description string, kind types.Kind) resourceEntry {
	return resourceEntry{
		Resource: Resource{URI: uri, Name: name, Description: description, MimeType: "application/json"},
		matcher:  templateMatcher{tmpl: uritemplate.MustNew(uri)},
		read: func(ctx context.Context, params map[string]string) (any, error) {
			return c.store.Get(ctx, kind, params["id"])
		},
	}
}

// Greeting renders the greeting resource text.
func Greeting(name string) string {
	return "Hello, " + name + "! Welcome to the MCP demo."
}

// ReadResource resolves uri against the catalog, exact URIs first, then
// templates, and reads the matching resource.
func (c *Catalog) ReadResource(ctx context.Context, uri string) (any, error) {
	entry, params, ok := c.matchResource(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	result, err := entry.read(ctx, params)
	if err != nil {
		return nil, &ResourceError{URI: uri, Err: err}
	}
	return result, nil
}

func (c *Catalog) matchResource(uri string) (resourceEntry, map[string]string, bool) {
	for _, r := range c.resources {
		if m, ok := r.matcher.(exactMatcher); ok && string(m) == uri {
			return r, nil, true
		}
	}
	for _, r := range c.resources {
		if _, ok := r.matcher.(exactMatcher); ok {
			continue
		}
		if params, ok := r.matcher.match(uri); ok {
			return r, params, true
		}
	}
	return resourceEntry{}, nil, false
}

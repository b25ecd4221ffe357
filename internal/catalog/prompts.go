package catalog

import (
	"fmt"
)

const defaultStyle = "friendly"

var greetingStyles = map[string]string{
	"friendly": "Write a warm and friendly greeting",
	"formal":   "Write a professional and formal greeting",
	"casual":   "Write a relaxed and casual greeting",
}

type promptEntry struct {
	Prompt
	render func(args map[string]string) string
}

func promptEntries() []promptEntry {
	return []promptEntry{
		{
			Prompt: Prompt{
				Name:        "generate_greeting",
				Description: "Generates a prompt for creating a greeting in a specified style.",
				Arguments: []PromptArgument{
					{Name: "name", Required: true},
					{Name: "style", Required: false},
				},
			},
			render: func(args map[string]string) string {
				return GreetingPrompt(args["name"], args["style"])
			},
		},
	}
}

// GreetingPrompt renders the generate_greeting template. Unknown or empty
// styles fall back to friendly.
func GreetingPrompt(name, style string) string {
	sentence, ok := greetingStyles[style]
	if !ok {
		sentence = greetingStyles[defaultStyle]
	}
	return sentence + " for " + name + "."
}

// GetPrompt renders the named prompt.
func (c *Catalog) GetPrompt(name string, args map[string]string) (string, error) {
	for _, p := range c.prompts {
		if p.Name == name {
			return p.render(args), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
}

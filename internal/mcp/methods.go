package mcp

// Method is the closed set of recognised method names.
type Method int

const (
	MethodUnknown Method = iota
	MethodInitialize
	MethodInitialized
	MethodPing
	MethodResourcesList
	MethodResourcesRead
	MethodToolsList
	MethodToolsCall
	MethodPromptsList
	MethodPromptsGet
)

var methodNames = map[Method]string{
	MethodInitialize:    "initialize",
	MethodInitialized:   "notifications/initialized",
	MethodPing:          "ping",
	MethodResourcesList: "resources/list",
	MethodResourcesRead: "resources/read",
	MethodToolsList:     "tools/list",
	MethodToolsCall:     "tools/call",
	MethodPromptsList:   "prompts/list",
	MethodPromptsGet:    "prompts/get",
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames)+1)
	for method, name := range methodNames {
		m[name] = method
	}
	// legacy spelling of the initialized notification
	m["initialized"] = MethodInitialized
	return m
}()

// ParseMethod maps a wire name onto a Method, MethodUnknown if unrecognised.
func ParseMethod(name string) Method {
	if m, ok := methodsByName[name]; ok {
		return m
	}
	return MethodUnknown
}

// String returns the wire name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsNotification reports whether the method is fire-and-forget.
func (m Method) IsNotification() bool {
	return m == MethodInitialized
}

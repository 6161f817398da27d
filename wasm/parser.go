//go:build wasm

package main

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/praetorian-inc/uaparser"
	"github.com/praetorian-inc/uaparser/pkg/devicetype"
	"github.com/praetorian-inc/uaparser/pkg/rule"
	"github.com/praetorian-inc/uaparser/pkg/serve"
)

var (
	parsers   = make(map[int]*uaparser.Parser)
	parsersMu sync.RWMutex
	nextID    int
)

// newParser creates a parser from a regexes.yaml document, or from the
// built-in catalogue when the argument is "builtin".
// JS: UAParserNew(regexesYAML) -> {handle} or {error}
func newParser(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "regexes argument required"}
	}

	var opts []uaparser.Option
	if src := args[0].String(); src != "builtin" {
		cat, err := rule.NewLoader().LoadCatalogue([]byte(src))
		if err != nil {
			return map[string]interface{}{"error": "failed to load regexes: " + err.Error()}
		}
		opts = append(opts, uaparser.WithCatalogue(cat))
	}

	p, err := uaparser.New(opts...)
	if err != nil {
		return map[string]interface{}{"error": "failed to create parser: " + err.Error()}
	}

	// Register parser
	parsersMu.Lock()
	id := nextID
	nextID++
	parsers[id] = p
	parsersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

// parse classifies one user agent.
// JS: UAParserParse(handle, userAgent) -> JSON classification or {error}
func parse(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and userAgent arguments required"}
	}

	p, ok := lookup(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid parser handle"}
	}

	return marshal(classify(p, args[1].String()))
}

// parseBatch classifies a JSON array of user agents, preserving order.
// JS: UAParserParseBatch(handle, userAgentsJSON) -> JSON results or {error}
func parseBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and userAgentsJSON arguments required"}
	}

	p, ok := lookup(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid parser handle"}
	}

	var agents []string
	if err := json.Unmarshal([]byte(args[1].String()), &agents); err != nil {
		return map[string]interface{}{"error": "failed to parse userAgents JSON: " + err.Error()}
	}

	out := serve.ParseBatchData{Results: make([]serve.ParseData, 0, len(agents))}
	for _, ua := range agents {
		out.Results = append(out.Results, classify(p, ua))
	}
	return marshal(out)
}

// deviceType reports the form factor of a user agent. It needs no parser.
// JS: UAParserDeviceType(userAgent) -> "desktop" | "mobile" | "tablet"
func deviceType(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "userAgent argument required"}
	}
	return devicetype.Classify(args[0].String()).String()
}

// closeParser releases a parser handle.
// JS: UAParserClose(handle)
func closeParser(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "handle argument required"}
	}

	handle := args[0].Int()

	parsersMu.Lock()
	_, ok := parsers[handle]
	delete(parsers, handle)
	parsersMu.Unlock()

	if !ok {
		return map[string]interface{}{"error": "invalid parser handle"}
	}
	return nil
}

func lookup(handle int) (*uaparser.Parser, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	p, ok := parsers[handle]
	return p, ok
}

func classify(p *uaparser.Parser, ua string) serve.ParseData {
	parsed := p.Parse(ua)
	return serve.ParseData{
		UserAgent:  ua,
		Browser:    parsed.Browser,
		OS:         parsed.OS,
		Device:     parsed.Device,
		DeviceType: p.DeviceType(ua),
	}
}

func marshal(v any) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}
	return string(jsonBytes)
}

// Package taint implements the taint-flow analyzer (L7): sources, sinks,
// and transfers are read from a configuration document and layered over a
// points-to Solver's run via its observer hooks, so taint
// objects ride the real points-to propagation instead of requiring a
// separate fixpoint.
package taint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EndpointKind tags one side of a transfer rule.
type EndpointKind int

const (
	// EndpointBase is the call's receiver.
	EndpointBase EndpointKind = iota
	// EndpointResult is the call's LHS.
	EndpointResult
	// EndpointArg is the argIndex'th argument.
	EndpointArg
)

// Endpoint is one side of a transfer rule: BASE, RESULT, or argIndex.
type Endpoint struct {
	Kind     EndpointKind
	ArgIndex int
}

// ParseEndpoint parses "base", "result", or "argN" into an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	switch s {
	case "base":
		return Endpoint{Kind: EndpointBase}, nil
	case "result":
		return Endpoint{Kind: EndpointResult}, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "arg%d", &n); err == nil {
		return Endpoint{Kind: EndpointArg, ArgIndex: n}, nil
	}
	return Endpoint{}, fmt.Errorf("taint: invalid endpoint %q (want base, result, or argN)", s)
}

func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointBase:
		return "base"
	case EndpointResult:
		return "result"
	default:
		return fmt.Sprintf("arg%d", e.ArgIndex)
	}
}

// rawSource, rawSink and rawTransfer are the on-disk shapes of one
// sources/sinks/transfers entry; LoadConfig resolves these into the lookup
// maps the Manager consults.
type rawSource struct {
	Class  string `yaml:"class"`
	Method string `yaml:"method"`
}

type rawSink struct {
	Class    string `yaml:"class"`
	Method   string `yaml:"method"`
	ArgIndex int    `yaml:"argIndex"`
}

type rawTransfer struct {
	Class  string `yaml:"class"`
	Method string `yaml:"method"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

type rawConfig struct {
	Sources   []rawSource   `yaml:"sources"`
	Sinks     []rawSink     `yaml:"sinks"`
	Transfers []rawTransfer `yaml:"transfers"`
}

// Sink is a resolved sink rule.
type Sink struct {
	ArgIndex int
}

// Transfer is a resolved transfer rule.
type Transfer struct {
	From, To Endpoint
}

// Config is the resolved sources/sinks/transfers document,
// indexed by the qualified method key (see methodKey) the Manager looks
// call sites up by.
type Config struct {
	sources   map[string]bool
	sinks     map[string]Sink
	transfers map[string]Transfer
}

func methodKey(class, method string) string { return class + "#" + method }

// NewConfig returns an empty Config to be filled with AddSource, AddSink and
// AddTransfer (no YAML), mainly for tests.
func NewConfig() *Config {
	return &Config{
		sources:   make(map[string]bool),
		sinks:     make(map[string]Sink),
		transfers: make(map[string]Transfer),
	}
}

// AddSource registers a source rule: calls to (class, method) taint their
// result.
func (c *Config) AddSource(class, method string) {
	c.sources[methodKey(class, method)] = true
}

// AddSink registers a sink rule.
func (c *Config) AddSink(class, method string, argIndex int) {
	c.sinks[methodKey(class, method)] = Sink{ArgIndex: argIndex}
}

// AddTransfer registers a transfer rule.
func (c *Config) AddTransfer(class, method string, from, to Endpoint) {
	c.transfers[methodKey(class, method)] = Transfer{From: from, To: to}
}

func (c *Config) source(key string) bool        { return c.sources[key] }
func (c *Config) sink(key string) (Sink, bool)  { s, ok := c.sinks[key]; return s, ok }
func (c *Config) transfer(key string) (Transfer, bool) {
	t, ok := c.transfers[key]
	return t, ok
}

// LoadConfig reads a taint configuration document ( `taint-config`
// option) from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taint: reading config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("taint: parsing config: %w", err)
	}
	cfg := NewConfig()
	for _, s := range raw.Sources {
		cfg.AddSource(s.Class, s.Method)
	}
	for _, s := range raw.Sinks {
		cfg.AddSink(s.Class, s.Method, s.ArgIndex)
	}
	for _, t := range raw.Transfers {
		from, err := ParseEndpoint(t.From)
		if err != nil {
			return nil, err
		}
		to, err := ParseEndpoint(t.To)
		if err != nil {
			return nil, err
		}
		cfg.AddTransfer(t.Class, t.Method, from, to)
	}
	return cfg, nil
}

// Package config holds the small set of tunable search parameters exposed
// to a UCI client via "setoption", with the type/default/min/max metadata
// needed to answer "uci" option queries.
package config

import (
	"fmt"
	"strconv"
)

// Kind identifies a UCI option type.
type Kind int

const (
	Spin Kind = iota
	Check
)

// Param is a single named, typed, bounded configuration value.
type Param struct {
	Name    string
	Kind    Kind
	Value   string
	Default string
	Min     string
	Max     string
}

// UCIString formats the option the way "uci" reports it to the GUI.
func (p Param) UCIString() string {
	switch p.Kind {
	case Spin:
		return fmt.Sprintf("option name %s type spin default %s min %s max %s", p.Name, p.Default, p.Min, p.Max)
	default:
		return fmt.Sprintf("option name %s type check default %s", p.Name, p.Default)
	}
}

// Params is the engine's configuration store: the four options the search
// consults on every move, addressable by name from setoption.
type Params struct {
	order  []string
	byName map[string]*Param
}

// New returns the default configuration: max_search_depth=7,
// use_pruning=true, use_incremental_search=true,
// search_until_no_captures=false.
func New() *Params {
	defaults := []Param{
		{Name: "max_search_depth", Kind: Spin, Value: "7", Default: "7", Min: "2", Max: "8"},
		{Name: "use_pruning", Kind: Check, Value: "true", Default: "true"},
		{Name: "use_incremental_search", Kind: Check, Value: "true", Default: "true"},
		{Name: "search_until_no_captures", Kind: Check, Value: "false", Default: "false"},
	}

	p := &Params{byName: make(map[string]*Param, len(defaults))}
	for i := range defaults {
		d := defaults[i]
		p.order = append(p.order, d.Name)
		p.byName[d.Name] = &d
	}
	return p
}

// Set updates a named parameter's value. It reports an error for an
// unknown name rather than silently ignoring it, since a typo in a
// setoption command should be visible to whoever is driving the engine.
func (p *Params) Set(name, value string) error {
	param, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("unknown config parameter %q", name)
	}
	param.Value = value
	return nil
}

// Get returns a parameter's current raw string value.
func (p *Params) Get(name string) string {
	if param, ok := p.byName[name]; ok {
		return param.Value
	}
	return ""
}

// MaxSearchDepth returns max_search_depth as an int, defaulting to 7 if
// the stored value fails to parse.
func (p *Params) MaxSearchDepth() int {
	n, err := strconv.Atoi(p.Get("max_search_depth"))
	if err != nil {
		return 7
	}
	return n
}

// UsePruning returns use_pruning as a bool.
func (p *Params) UsePruning() bool {
	return p.Get("use_pruning") == "true"
}

// UseIncrementalSearch returns use_incremental_search as a bool: when
// true, the engine performs iterative deepening; when false, it searches
// directly to MaxSearchDepth.
func (p *Params) UseIncrementalSearch() bool {
	return p.Get("use_incremental_search") == "true"
}

// SearchUntilNoCaptures returns search_until_no_captures as a bool: when
// true, the search continues past its depth limit with captures and
// promotions until none remain (quiescence search); when false, it
// returns the static evaluation at the depth limit.
func (p *Params) SearchUntilNoCaptures() bool {
	return p.Get("search_until_no_captures") == "true"
}

// Each calls fn for every parameter, in the order they were registered,
// for printing the options block in response to "uci".
func (p *Params) Each(fn func(Param)) {
	for _, name := range p.order {
		fn(*p.byName[name])
	}
}

// String renders every parameter as "name: value" lines.
func (p *Params) String() string {
	s := ""
	for _, name := range p.order {
		s += fmt.Sprintf("%s: %s\n", name, p.byName[name].Value)
	}
	return s
}

package env

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// VarType identifies the parsed type of an environment variable.
type VarType int

const (
	TypeString VarType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeDuration
)

func (t VarType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeBool:
		return "Boolean"
	case TypeInt:
		return "Integer"
	case TypeFloat:
		return "Floating-Point"
	case TypeDuration:
		return "Duration"
	default:
		return "Unknown"
	}
}

// Component tags a variable with the part of the system that consumes it.
type Component string

const (
	ComponentServer       Component = "server"
	ComponentStorage      Component = "storage"
	ComponentIntelligence Component = "intelligence"
	ComponentTesting      Component = "testing"
)

// Var describes a registered environment variable.
type Var struct {
	Name         string  `json:"name"`
	DefaultValue string  `json:"default_value"`
	Description  string  `json:"description"`
	Type         VarType `json:"-"`
	Component    Component
	Hidden       bool
}

var allVars = make(map[string]Var)

func register(v Var) {
	allVars[v.Name] = v
}

// StringVar provides access to a string-typed environment variable.
type StringVar struct{ v Var }

// RegisterStringVar registers a string environment variable with a default value.
func RegisterStringVar(name, defaultValue, description string, component Component) StringVar {
	v := Var{Name: name, DefaultValue: defaultValue, Description: description, Type: TypeString, Component: component}
	register(v)
	return StringVar{v}
}

func (s StringVar) Name() string         { return s.v.Name }
func (s StringVar) DefaultValue() string { return s.v.DefaultValue }

// Get returns the current value of the variable, or the default when unset.
func (s StringVar) Get() string {
	val, _ := s.Lookup()
	return val
}

// Lookup returns the current value and whether the variable is set in the
// environment. When unset the default value is returned.
func (s StringVar) Lookup() (string, bool) {
	if val, ok := os.LookupEnv(s.v.Name); ok {
		return val, true
	}
	return s.v.DefaultValue, false
}

// BoolVar provides access to a boolean-typed environment variable.
type BoolVar struct{ v Var }

// RegisterBoolVar registers a boolean environment variable with a default value.
// Values are parsed with strconv.ParseBool; unparseable values fall back to
// the default.
func RegisterBoolVar(name string, defaultValue bool, description string, component Component) BoolVar {
	v := Var{Name: name, DefaultValue: strconv.FormatBool(defaultValue), Description: description, Type: TypeBool, Component: component}
	register(v)
	return BoolVar{v}
}

func (b BoolVar) Name() string { return b.v.Name }

func (b BoolVar) Get() bool {
	val, _ := b.Lookup()
	return val
}

func (b BoolVar) Lookup() (bool, bool) {
	def, _ := strconv.ParseBool(b.v.DefaultValue)
	raw, ok := os.LookupEnv(b.v.Name)
	if !ok {
		return def, false
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def, true
	}
	return val, true
}

// IntVar provides access to an integer-typed environment variable.
type IntVar struct{ v Var }

// RegisterIntVar registers an integer environment variable with a default
// value. Unparseable values fall back to the default.
func RegisterIntVar(name string, defaultValue int, description string, component Component) IntVar {
	v := Var{Name: name, DefaultValue: strconv.Itoa(defaultValue), Description: description, Type: TypeInt, Component: component}
	register(v)
	return IntVar{v}
}

func (i IntVar) Name() string { return i.v.Name }

func (i IntVar) Get() int {
	val, _ := i.Lookup()
	return val
}

func (i IntVar) Lookup() (int, bool) {
	def, _ := strconv.Atoi(i.v.DefaultValue)
	raw, ok := os.LookupEnv(i.v.Name)
	if !ok {
		return def, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def, true
	}
	return val, true
}

// DurationVar provides access to a duration-typed environment variable.
type DurationVar struct{ v Var }

// RegisterDurationVar registers a duration environment variable with a
// default value. Values use time.ParseDuration syntax; unparseable values
// fall back to the default.
func RegisterDurationVar(name string, defaultValue time.Duration, description string, component Component) DurationVar {
	v := Var{Name: name, DefaultValue: defaultValue.String(), Description: description, Type: TypeDuration, Component: component}
	register(v)
	return DurationVar{v}
}

func (d DurationVar) Name() string { return d.v.Name }

func (d DurationVar) Get() time.Duration {
	val, _ := d.Lookup()
	return val
}

func (d DurationVar) Lookup() (time.Duration, bool) {
	def, _ := time.ParseDuration(d.v.DefaultValue)
	raw, ok := os.LookupEnv(d.v.Name)
	if !ok {
		return def, false
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return def, true
	}
	return val, true
}

// VarDescriptions returns all registered, non-hidden variables sorted by name.
func VarDescriptions() []Var {
	vars := make([]Var, 0, len(allVars))
	for _, v := range allVars {
		if v.Hidden {
			continue
		}
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// VarByName looks up a registered variable by its environment name.
func VarByName(name string) (Var, bool) {
	v, ok := allVars[name]
	return v, ok
}

// ExportMarkdown renders the registry as markdown documentation, optionally
// filtered to a single component ("all" for everything).
func ExportMarkdown(component string) string {
	var sb strings.Builder
	byComponent := make(map[Component][]Var)
	for _, v := range VarDescriptions() {
		if component != "all" && string(v.Component) != component {
			continue
		}
		byComponent[v.Component] = append(byComponent[v.Component], v)
	}

	components := make([]string, 0, len(byComponent))
	for c := range byComponent {
		components = append(components, string(c))
	}
	sort.Strings(components)

	for _, c := range components {
		fmt.Fprintf(&sb, "## %s\n\n", c)
		sb.WriteString("| Name | Type | Default | Description |\n")
		sb.WriteString("| ---- | ---- | ------- | ----------- |\n")
		for _, v := range byComponent[Component(c)] {
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` | %s |\n", v.Name, v.Type, v.DefaultValue, v.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExportJSON renders the registry as JSON, optionally filtered to a single
// component ("all" for everything).
func ExportJSON(component string) string {
	type jsonVar struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		DefaultValue string `json:"default_value"`
		Description  string `json:"description"`
		Component    string `json:"component"`
	}
	vars := make([]jsonVar, 0, len(allVars))
	for _, v := range VarDescriptions() {
		if component != "all" && string(v.Component) != component {
			continue
		}
		vars = append(vars, jsonVar{
			Name:         v.Name,
			Type:         v.Type.String(),
			DefaultValue: v.DefaultValue,
			Description:  v.Description,
			Component:    string(v.Component),
		})
	}
	out, err := json.MarshalIndent(vars, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

// Package menu models the expression parameters and menu trees exposed to
// the host avatar runtime, and merges them across haptic prefabs.
package menu

import (
	"fmt"
	"strings"
)

// Parameter names shared by every generated output. They are part of the
// contract with the host parameter system and must not change.
const (
	GlobalShowParam      = "haptic/global/show"
	GlobalIntensityParam = "haptic/global/intensity"
)

// ValueType is the semantic type of a parameter.
type ValueType int

const (
	Bool ValueType = iota
	Int
	Float
)

var valueTypeNames = []string{"bool", "int", "float"}

func (t ValueType) String() string {
	if t < 0 || int(t) >= len(valueTypeNames) {
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
	return valueTypeNames[t]
}

// Cost returns the synced memory cost in bits: bool 1, int and float 8.
func (t ValueType) Cost() int {
	if t == Bool {
		return 1
	}
	return 8
}

func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ValueType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, n := range valueTypeNames {
		if n == s {
			*t = ValueType(i)
			return nil
		}
	}
	return fmt.Errorf("menu: unknown value type %q", text)
}

// Parameter is one named, typed control value. Name is its identity.
type Parameter struct {
	Name          string    `json:"name"`
	Type          ValueType `json:"type"`
	Default       float64   `json:"default"`
	Saved         bool      `json:"saved"`
	NetworkSynced bool      `json:"network_synced"`
}

// Parameters is an ordered parameter list asset.
type Parameters struct {
	Name string      `json:"name"`
	List []Parameter `json:"parameters"`
}

// Clone copies the list.
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return nil
	}
	return &Parameters{Name: p.Name, List: append([]Parameter(nil), p.List...)}
}

// Find returns the parameter with the given name.
func (p *Parameters) Find(name string) (Parameter, bool) {
	for _, par := range p.List {
		if par.Name == name {
			return par, true
		}
	}
	return Parameter{}, false
}

// Add appends par unless a parameter with the same name exists.
func (p *Parameters) Add(par Parameter) bool {
	if _, ok := p.Find(par.Name); ok {
		return false
	}
	p.List = append(p.List, par)
	return true
}

// Cost sums the per-type cost of every parameter.
func (p *Parameters) Cost() int {
	total := 0
	for _, par := range p.List {
		total += par.Type.Cost()
	}
	return total
}

// Names lists the parameter names in order.
func (p *Parameters) Names() []string {
	out := make([]string, len(p.List))
	for i, par := range p.List {
		out[i] = par.Name
	}
	return out
}

// IdentityParam is the per-prefab parameter that advertises an installed
// map to other clients.
func IdentityParam(author, name string, version int) Parameter {
	return Parameter{
		Name:          fmt.Sprintf("haptic/prefabs/%s/%s/v%d", author, name, version),
		Type:          Int,
		Default:       float64(version),
		Saved:         true,
		NetworkSynced: false,
	}
}

package menu

import (
	"fmt"
	"strings"
)

// ControlType is the kind of a menu entry.
type ControlType int

const (
	Button ControlType = iota
	Toggle
	SubMenu
	RadialPuppet
)

var controlTypeNames = []string{"button", "toggle", "submenu", "radial"}

func (t ControlType) String() string {
	if t < 0 || int(t) >= len(controlTypeNames) {
		return fmt.Sprintf("ControlType(%d)", int(t))
	}
	return controlTypeNames[t]
}

func (t ControlType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ControlType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, n := range controlTypeNames {
		if n == s {
			*t = ControlType(i)
			return nil
		}
	}
	return fmt.Errorf("menu: unknown control type %q", text)
}

// Control is one menu entry. SubMenu is set for SubMenu controls;
// SubParameters lists the parameters a radial puppet drives.
type Control struct {
	Name          string      `json:"name"`
	Type          ControlType `json:"type"`
	Parameter     string      `json:"parameter,omitempty"`
	Value         float64     `json:"value"`
	SubParameters []string    `json:"sub_parameters,omitempty"`
	SubMenu       *Menu       `json:"sub_menu,omitempty"`
}

// Clone deep-copies the control and its sub-menu.
func (c *Control) Clone() *Control {
	if c == nil {
		return nil
	}
	out := *c
	out.SubParameters = append([]string(nil), c.SubParameters...)
	out.SubMenu = c.SubMenu.Clone()
	return &out
}

// Menu is an ordered list of controls bound to a parameter list.
type Menu struct {
	Name       string      `json:"name"`
	Parameters *Parameters `json:"-"`
	Controls   []*Control  `json:"controls"`
}

// Clone deep-copies the control tree. The parameter list is shared, as
// menus reference parameter assets rather than own them.
func (m *Menu) Clone() *Menu {
	if m == nil {
		return nil
	}
	out := &Menu{Name: m.Name, Parameters: m.Parameters}
	out.Controls = make([]*Control, len(m.Controls))
	for i, c := range m.Controls {
		out.Controls[i] = c.Clone()
	}
	return out
}

// Find returns the first control named name.
func (m *Menu) Find(name string) *Control {
	for _, c := range m.Controls {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Main returns the sub-menu of the first control, which is where a root
// menu keeps its main page.
func (m *Menu) Main() *Menu {
	if m == nil || len(m.Controls) == 0 {
		return nil
	}
	return m.Controls[0].SubMenu
}

// SetMain points the first control of a root menu at main.
func (m *Menu) SetMain(main *Menu) error {
	if len(m.Controls) == 0 {
		return fmt.Errorf("menu: %s has no controls", m.Name)
	}
	m.Controls[0].SubMenu = main
	return nil
}

// ControlNames lists control names in order.
func (m *Menu) ControlNames() []string {
	out := make([]string, len(m.Controls))
	for i, c := range m.Controls {
		out[i] = c.Name
	}
	return out
}

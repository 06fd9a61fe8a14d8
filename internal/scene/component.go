package scene

// Component is data attached to an object. Each kind declares its own
// structural copy so cloning never inspects fields at runtime.
type Component interface {
	Kind() string
	Clone() Component
}

// AddComponent attaches c, replacing any component of the same kind.
func (o *Object) AddComponent(c Component) {
	for i, existing := range o.components {
		if existing.Kind() == c.Kind() {
			o.components[i] = c
			return
		}
	}
	o.components = append(o.components, c)
}

// RemoveComponent drops the component of the given kind, if present.
func (o *Object) RemoveComponent(kind string) bool {
	for i, c := range o.components {
		if c.Kind() == kind {
			o.components = append(o.components[:i], o.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the attached components in insertion order.
func (o *Object) Components() []Component {
	return append([]Component(nil), o.components...)
}

// Get returns the first component of type T on o.
func Get[T Component](o *Object) (T, bool) {
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

package runtime

import "sort"

// Environment is the single flat variable scope of a program run. Every
// assignment, wherever it appears, is visible everywhere immediately.
type Environment struct {
	values map[string]Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Get returns the value bound to name.
func (e *Environment) Get(name string) (Value, error) {
	if val, ok := e.values[name]; ok {
		return val, nil
	}
	return nil, &UndeclaredVariableError{Name: name}
}

// Set binds name to value and returns the previous binding, if any.
func (e *Environment) Set(name string, value Value) (prev Value, existed bool) {
	prev, existed = e.values[name]
	e.values[name] = value
	return prev, existed
}

// Len returns the number of bound names.
func (e *Environment) Len() int {
	return len(e.values)
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package syntax

import (
	"fmt"
	"regexp"
	"sort"
)

var placeholder = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// ResolveVariables expands every {{name}} reference inside the variable
// table itself, so that each resolved value is placeholder-free.
// Variables may reference other variables; cycles and references to
// undefined names are errors.
func ResolveVariables(vars map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(vars))
	visiting := make(map[string]bool, len(vars))

	var resolve func(name string) (string, error)
	resolve = func(name string) (string, error) {
		if v, ok := resolved[name]; ok {
			return v, nil
		}
		raw, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: {{%s}}", ErrUnknownVariable, name)
		}
		if visiting[name] {
			return "", fmt.Errorf("%w: {{%s}}", ErrCyclicVariable, name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		out, err := substitute(raw, resolve)
		if err != nil {
			return "", err
		}
		resolved[name] = out
		return out, nil
	}

	// Sorted for deterministic error reporting.
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := resolve(name); err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
	}
	return resolved, nil
}

// Interpolate replaces each {{name}} in pattern with its value from a table
// already processed by ResolveVariables.
func Interpolate(pattern string, resolved map[string]string) (string, error) {
	return substitute(pattern, func(name string) (string, error) {
		v, ok := resolved[name]
		if !ok {
			return "", fmt.Errorf("%w: {{%s}}", ErrUnknownVariable, name)
		}
		return v, nil
	})
}

func substitute(s string, lookup func(string) (string, error)) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		name := placeholder.FindStringSubmatch(m)[1]
		v, err := lookup(name)
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

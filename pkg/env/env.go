// Package env expands env(NAME) references inside YAML configuration values.
package env

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml/ast"
)

// reference matches env(NAME) and captures NAME.
var reference = regexp.MustCompile(`env\(([^)]+)\)`)

// controlChars are rejected in substituted values. Tabs and newlines pass.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// Lookup resolves a variable name. Tests may replace it.
var Lookup = os.LookupEnv

// ExpandNode rewrites env(NAME) references found in scalar values below node.
// Mapping keys are left untouched. References to unset variables are kept
// verbatim so CheckResolved can report them with the field name later.
func ExpandNode(node ast.Node) error {
	if node == nil {
		return nil
	}
	return expand(node, true)
}

func expand(node ast.Node, isValue bool) error {
	switch n := node.(type) {
	case *ast.DocumentNode:
		return expandChild(n.Body, true)
	case *ast.MappingNode:
		for _, v := range n.Values {
			if err := expand(v, isValue); err != nil {
				return err
			}
		}
	case *ast.MappingValueNode:
		return expandChild(n.Value, true)
	case *ast.SequenceNode:
		for _, v := range n.Values {
			if err := expand(v, true); err != nil {
				return err
			}
		}
	case *ast.TagNode:
		return expandChild(n.Value, isValue)
	case *ast.AnchorNode:
		return expandChild(n.Value, isValue)
	case *ast.LiteralNode:
		if isValue && n.Value != nil {
			s, err := ExpandString(n.Value.Value)
			if err != nil {
				return err
			}
			n.Value.Value = s
		}
	case *ast.StringNode:
		if isValue {
			s, err := ExpandString(n.Value)
			if err != nil {
				return err
			}
			n.Value = s
		}
	}
	return nil
}

func expandChild(node ast.Node, isValue bool) error {
	if node == nil {
		return nil
	}
	return expand(node, isValue)
}

// ExpandString replaces every env(NAME) whose variable is set.
func ExpandString(s string) (string, error) {
	var firstErr error
	out := reference.ReplaceAllStringFunc(s, func(match string) string {
		name := reference.FindStringSubmatch(match)[1]
		value, ok := Lookup(name)
		if !ok {
			return match
		}
		if controlChars.MatchString(value) && firstErr == nil {
			firstErr = fmt.Errorf("environment variable %s contains disallowed control characters", name)
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// CheckResolved reports the first env(NAME) reference left in value, e.g.
// "release.github.token: environment variable GITHUB_TOKEN is not set".
func CheckResolved(value, field string) error {
	if m := reference.FindStringSubmatch(value); m != nil {
		return fmt.Errorf("%s: environment variable %s is not set", field, m[1])
	}
	return nil
}

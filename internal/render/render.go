// Package render substitutes named placeholders into message templates.
package render

import (
	"regexp"
	"strings"
)

// placeholderRe matches {name} and {{name}} with optional inner whitespace.
// Double braces are tried first so "{{amt}}" is not consumed as "{" + "{amt}" + "}".
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}|\{\s*([A-Za-z0-9_]+)\s*\}`)

// Render replaces every {name} or {{name}} placeholder with the matching
// value, case-insensitively. Missing values default to empty string;
// placeholders whose name is unknown are left untouched.
func Render(template string, vars map[string]string) string {
	if template == "" || !strings.Contains(template, "{") {
		return template
	}

	lookup := make(map[string]string, len(vars))
	for k, v := range vars {
		lookup[strings.ToLower(k)] = v
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		if value, ok := lookup[strings.ToLower(name)]; ok {
			return value
		}
		return match
	})
}

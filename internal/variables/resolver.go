package variables

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// placeholderRegex matches {{name}}; name is any run of characters except '}'.
var placeholderRegex = regexp.MustCompile(`\{\{([^}]+)\}\}`)

const dateLayout = "2006-01-02"

// Resolver substitutes {{name}} placeholders. It holds no state besides the
// clock used for the "today" and "timestamp" built-ins.
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a Resolver. A nil clock falls back to time.Now.
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// Resolve replaces every placeholder in text. Built-ins win over the lookup
// table; dotted names are walked through table; anything else is kept
// verbatim and reported as a warning, once per occurrence.
func (r *Resolver) Resolve(text string, table Value) (string, []string) {
	var warnings []string
	now := r.now()

	out := placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(placeholderRegex.FindStringSubmatch(match)[1])

		if value, ok := builtin(name, now); ok {
			return value
		}

		if strings.Contains(name, ".") {
			if value, ok := table.Lookup(name); ok {
				return value.String()
			}
		}

		warnings = append(warnings, fmt.Sprintf("Variable not found: %s", name))
		return match
	})

	return out, warnings
}

// ResolveAll resolves each string independently, concatenating warnings in
// input order.
func (r *Resolver) ResolveAll(texts []string, table Value) ([]string, []string) {
	out := make([]string, len(texts))
	var warnings []string
	for i, text := range texts {
		resolved, w := r.Resolve(text, table)
		out[i] = resolved
		warnings = append(warnings, w...)
	}
	return out, warnings
}

func builtin(name string, now time.Time) (string, bool) {
	switch name {
	case "today":
		return now.UTC().Format(dateLayout), true
	case "timestamp":
		return strconv.FormatInt(now.UnixMilli(), 10), true
	default:
		return "", false
	}
}

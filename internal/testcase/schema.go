package testcase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// IDPattern is the accepted shape of meta.id.
var IDPattern = regexp.MustCompile(`^TC-[A-Z_-]+-[0-9]+$`)

var (
	// ErrSyntax marks text that could not be decoded at all.
	ErrSyntax = errors.New("YAML syntax error")
	// ErrSchema marks a decodable document that violates the schema.
	ErrSchema = errors.New("schema validation failed")
)

// SchemaError carries every violation found in a document, each formatted
// as "<dotted.path>: <message>".
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Is lets errors.Is(err, ErrSchema) match any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Decode parses text into a YAML node tree. An empty document yields a nil
// node and no error.
func Decode(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, strings.TrimPrefix(err.Error(), "yaml: "))
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

// Parse decodes and validates text. Decode failures wrap ErrSyntax;
// structural failures are returned as *SchemaError.
func Parse(text string) (*TestCase, error) {
	root, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return FromNode(root)
}

// FromNode validates an already-decoded tree and converts it to a TestCase.
func FromNode(root *yaml.Node) (*TestCase, error) {
	if violations := Validate(root); len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}
	var tc TestCase
	if err := root.Decode(&tc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	return &tc, nil
}

// Validate returns every schema violation of root in document-schema order.
// A nil root is reported as a missing document.
func Validate(root *yaml.Node) []string {
	v := &validator{}

	doc, ok := v.object("(root)", root)
	if !ok {
		return v.errs
	}

	if meta, ok := v.object("meta", field(doc, "meta")); ok {
		v.validateMeta(meta)
	}
	v.optionalStrings("precondition", field(doc, "precondition"), "")
	if scenario, ok := v.object("scenario", field(doc, "scenario")); ok {
		v.requireStrings("scenario.given", field(scenario, "given"), "Given cannot be empty")
		v.requireStrings("scenario.when", field(scenario, "when"), "When cannot be empty")
		v.requireStrings("scenario.then", field(scenario, "then"), "Then cannot be empty")
	}
	v.optionalString("notes", field(doc, "notes"))

	return v.errs
}

type validator struct {
	errs []string
}

func (v *validator) add(path, format string, args ...interface{}) {
	v.errs = append(v.errs, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateMeta(meta *yaml.Node) {
	if id, ok := v.requireString("meta.id", field(meta, "id")); ok && !IDPattern.MatchString(id) {
		v.add("meta.id", "ID format must be TC-<FEATURE>-<NUMBER>")
	}

	if title, ok := v.requireString("meta.title", field(meta, "title")); ok && title == "" {
		v.add("meta.title", "Title is required")
	}

	v.optionalString("meta.feature", field(meta, "feature"))

	priority := field(meta, "priority")
	if priority == nil || typeName(priority) != "string" || !Priority(priority.Value).Valid() {
		v.add("meta.priority", "Priority must be one of: high, medium, low")
	}

	v.optionalStrings("meta.tags", field(meta, "tags"), "")
	v.optionalString("meta.author", field(meta, "author"))

	if last := field(meta, "lastUpdated"); last != nil {
		if t := typeName(last); t != "string" && t != "date" {
			v.add("meta.lastUpdated", "Expected string or date, received %s", t)
		}
	}
}

func (v *validator) object(path string, n *yaml.Node) (*yaml.Node, bool) {
	if n == nil {
		v.add(path, "Required")
		return nil, false
	}
	if n.Kind != yaml.MappingNode {
		v.add(path, "Expected object, received %s", typeName(n))
		return nil, false
	}
	return n, true
}

func (v *validator) requireString(path string, n *yaml.Node) (string, bool) {
	if n == nil {
		v.add(path, "Required")
		return "", false
	}
	if t := typeName(n); t != "string" {
		v.add(path, "Expected string, received %s", t)
		return "", false
	}
	return n.Value, true
}

func (v *validator) optionalString(path string, n *yaml.Node) {
	if n != nil {
		v.requireString(path, n)
	}
}

// requireStrings validates a required list of strings; emptyMsg is reported when
// the list has no elements.
func (v *validator) requireStrings(path string, n *yaml.Node, emptyMsg string) {
	if n == nil {
		v.add(path, "Required")
		return
	}
	v.stringList(path, n, emptyMsg)
}

func (v *validator) optionalStrings(path string, n *yaml.Node, emptyMsg string) {
	if n != nil {
		v.stringList(path, n, emptyMsg)
	}
}

func (v *validator) stringList(path string, n *yaml.Node, emptyMsg string) {
	if n.Kind != yaml.SequenceNode {
		v.add(path, "Expected array, received %s", typeName(n))
		return
	}
	if emptyMsg != "" && len(n.Content) == 0 {
		v.add(path, "%s", emptyMsg)
	}
	for i, item := range n.Content {
		v.requireString(fmt.Sprintf("%s.%d", path, i), deref(item))
	}
}

// field returns the value node stored under key in a mapping node.
func field(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func typeName(n *yaml.Node) string {
	n = deref(n)
	if n == nil {
		return "undefined"
	}
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return "number"
		case "!!bool":
			return "boolean"
		case "!!null":
			return "null"
		case "!!timestamp":
			return "date"
		default:
			return "string"
		}
	default:
		return "unknown"
	}
}

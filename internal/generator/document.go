package generator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mtctl/internal/api"
	"mtctl/internal/testcase"
)

// MetaInput is the caller-supplied metadata of a new test case.
type MetaInput struct {
	Title    string   `json:"title"`
	Feature  string   `json:"feature"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
	Author   string   `json:"author,omitempty"`
}

// CreateInput describes a test case to generate. Non-empty scenario lists
// replace the corresponding template list.
type CreateInput struct {
	Template string     `json:"template"`
	Meta     *MetaInput `json:"meta"`
	Scenario *Template  `json:"scenario,omitempty"`
}

// Generated is the created document and the id assigned to it.
type Generated struct {
	YAMLContent string `json:"yamlContent"`
	GeneratedID string `json:"generatedId"`
}

// Creator builds test-case documents from templates.
type Creator struct {
	ids       IDGenerator
	templates *Registry
	now       func() time.Time
}

// NewCreator wires a Creator. The id generator is owned by the caller so a
// sequence can be shared across calls deliberately.
func NewCreator(ids IDGenerator, templates *Registry, now func() time.Time) *Creator {
	if templates == nil {
		templates = DefaultRegistry()
	}
	if now == nil {
		now = time.Now
	}
	return &Creator{ids: ids, templates: templates, now: now}
}

// Templates exposes the registry in use.
func (c *Creator) Templates() *Registry { return c.templates }

// Create validates in and renders a new test-case document.
func (c *Creator) Create(in CreateInput) (*Generated, error) {
	tmpl, err := c.validate(in)
	if err != nil {
		return nil, err
	}

	scenario := mergeScenario(tmpl, in.Scenario)
	id := c.ids.Generate(in.Meta.Feature)

	tc := testcase.TestCase{
		Meta: testcase.Meta{
			ID:          id,
			Title:       in.Meta.Title,
			Feature:     in.Meta.Feature,
			Priority:    testcase.Priority(in.Meta.Priority),
			Tags:        in.Meta.Tags,
			Author:      in.Meta.Author,
			LastUpdated: c.now().UTC().Format("2006-01-02"),
		},
		Scenario: testcase.Scenario{
			Given: scenario.Given,
			When:  scenario.When,
			Then:  scenario.Then,
		},
	}

	content, err := Render(tc)
	if err != nil {
		return nil, err
	}
	return &Generated{YAMLContent: content, GeneratedID: id}, nil
}

func (c *Creator) validate(in CreateInput) (Template, error) {
	if in.Template == "" {
		return Template{}, api.InvalidInput("template is required and must be a string")
	}
	tmpl, ok := c.templates.Lookup(in.Template)
	if !ok {
		return Template{}, api.InvalidInput("Invalid template: %s. Must be one of: %s",
			in.Template, strings.Join(c.templates.Names(), ", "))
	}
	if in.Meta == nil {
		return Template{}, api.InvalidInput("meta is required")
	}
	if strings.TrimSpace(in.Meta.Title) == "" {
		return Template{}, api.InvalidInput("meta.title is required and cannot be empty")
	}
	if strings.TrimSpace(in.Meta.Feature) == "" {
		return Template{}, api.InvalidInput("meta.feature is required and cannot be empty")
	}
	if !testcase.Priority(in.Meta.Priority).Valid() {
		return Template{}, api.InvalidInput("meta.priority must be one of: high, medium, low")
	}
	return tmpl, nil
}

func mergeScenario(base Template, override *Template) Template {
	if override == nil {
		return base
	}
	out := base
	if len(override.Given) > 0 {
		out.Given = override.Given
	}
	if len(override.When) > 0 {
		out.When = override.When
	}
	if len(override.Then) > 0 {
		out.Then = override.Then
	}
	return out
}

// Render writes tc in the layout used for hand-maintained test cases: a
// meta block, the optional precondition list and the scenario, separated by
// blank lines, with tags in flow style.
func Render(tc testcase.TestCase) (string, error) {
	var b strings.Builder

	b.WriteString("meta:\n")
	writeField(&b, "  ", "id", tc.Meta.ID)
	writeField(&b, "  ", "title", tc.Meta.Title)
	if tc.Meta.Feature != "" {
		writeField(&b, "  ", "feature", tc.Meta.Feature)
	}
	writeField(&b, "  ", "priority", string(tc.Meta.Priority))
	if len(tc.Meta.Tags) > 0 {
		tags, err := flowList(tc.Meta.Tags)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  tags: %s\n", tags)
	}
	if tc.Meta.Author != "" {
		writeField(&b, "  ", "author", tc.Meta.Author)
	}
	if tc.Meta.LastUpdated != "" {
		writeField(&b, "  ", "lastUpdated", tc.Meta.LastUpdated)
	}

	if len(tc.Precondition) > 0 {
		b.WriteString("\nprecondition:\n")
		writeSteps(&b, "  ", tc.Precondition)
	}

	b.WriteString("\nscenario:\n")
	b.WriteString("  given:\n")
	writeSteps(&b, "    ", tc.Scenario.Given)
	b.WriteString("\n  when:\n")
	writeSteps(&b, "    ", tc.Scenario.When)
	b.WriteString("\n  then:\n")
	writeSteps(&b, "    ", tc.Scenario.Then)

	if tc.Notes != "" {
		b.WriteString("\n")
		writeField(&b, "", "notes", tc.Notes)
	}

	return b.String(), nil
}

func writeField(b *strings.Builder, indent, key, value string) {
	fmt.Fprintf(b, "%s%s: %s\n", indent, key, scalar(value))
}

func writeSteps(b *strings.Builder, indent string, steps []string) {
	for _, s := range steps {
		fmt.Fprintf(b, "%s- %s\n", indent, scalar(s))
	}
}

// scalar renders s as a single-line YAML string, quoting whenever a plain
// scalar would be read back as something else.
func scalar(s string) string {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsAny(s, "\n\r") {
		n.Style = yaml.DoubleQuotedStyle
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(string(out), "\n")
}

func flowList(items []string) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, item := range items {
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item}
		if strings.ContainsAny(item, "\n\r") {
			n.Style = yaml.DoubleQuotedStyle
		}
		seq.Content = append(seq.Content, n)
	}
	out, err := yaml.Marshal(seq)
	if err != nil {
		return "", fmt.Errorf("failed to render tags: %w", err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

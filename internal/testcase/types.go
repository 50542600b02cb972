package testcase

// Priority is the urgency of a test case.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the accepted priorities in rank order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities so that high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return len(Priorities)
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < len(Priorities)
}

// Meta identifies and classifies a test case.
type Meta struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Feature     string   `yaml:"feature,omitempty" json:"feature,omitempty"`
	Priority    Priority `yaml:"priority" json:"priority"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	LastUpdated string   `yaml:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
}

// Scenario holds the Given-When-Then steps.
type Scenario struct {
	Given []string `yaml:"given" json:"given"`
	When  []string `yaml:"when" json:"when"`
	Then  []string `yaml:"then" json:"then"`
}

// TestCase is a validated manual test-case document.
type TestCase struct {
	Meta         Meta     `yaml:"meta" json:"meta"`
	Precondition []string `yaml:"precondition,omitempty" json:"precondition,omitempty"`
	Scenario     Scenario `yaml:"scenario" json:"scenario"`
	Notes        string   `yaml:"notes,omitempty" json:"notes,omitempty"`
}

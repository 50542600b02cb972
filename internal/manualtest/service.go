// Package manualtest is the operation layer shared by the MCP tools and the
// CLI. A Service owns the only state that outlives a call: the id generator
// and the clock.
package manualtest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mtctl/internal/api"
	"mtctl/internal/generator"
	"mtctl/internal/results"
	"mtctl/internal/scaffold"
	"mtctl/internal/testcase"
	"mtctl/internal/variables"
	"mtctl/pkg/logging"
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// BaseDir is the workspace root init writes into. Empty means the
	// working directory.
	BaseDir string
	// RootDir is the project directory relative to BaseDir.
	RootDir string
	// IDStrategy selects how create numbers new test cases.
	IDStrategy generator.Strategy
	// Now is the clock used for dates, timestamps and cleanup ages.
	Now func() time.Time
	// Remover deletes result directories during cleanup.
	Remover results.Remover
}

// Service runs every manual-test operation.
type Service struct {
	baseDir  string
	rootDir  string
	now      func() time.Time
	ids      generator.IDGenerator
	creator  *generator.Creator
	resolver *variables.Resolver
	cleaner  *results.Cleaner
}

// New builds a Service from opts.
func New(opts Options) (*Service, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ids, err := generator.NewIDGenerator(opts.IDStrategy, now)
	if err != nil {
		return nil, err
	}

	return &Service{
		baseDir:  opts.BaseDir,
		rootDir:  opts.RootDir,
		now:      now,
		ids:      ids,
		creator:  generator.NewCreator(ids, generator.DefaultRegistry(), now),
		resolver: variables.NewResolver(now),
		cleaner:  results.NewCleaner(opts.Remover, now),
	}, nil
}

// ResetSequence restarts sequential numbering. Other strategies are
// unaffected.
func (s *Service) ResetSequence() {
	if seq, ok := s.ids.(*generator.SequentialGenerator); ok {
		seq.Reset()
	}
}

// ValidationResult reports whether a document is a valid test case.
type ValidationResult struct {
	IsValid    bool               `json:"isValid"`
	Errors     []string           `json:"errors"`
	Warnings   []string           `json:"warnings"`
	ParsedData *testcase.TestCase `json:"parsedData,omitempty"`
}

// Validate checks content. Problems are reported in the result, never as an
// error.
func (s *Service) Validate(content string) *ValidationResult {
	result := &ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}}

	tc, err := testcase.Parse(content)
	if err != nil {
		result.IsValid = false
		var schemaErr *testcase.SchemaError
		if errors.As(err, &schemaErr) {
			result.Errors = append(result.Errors, schemaErr.Violations...)
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	result.ParsedData = tc
	return result
}

// ProcessedSteps are the scenario steps after variable substitution.
type ProcessedSteps struct {
	Given []string `json:"given"`
	When  []string `json:"when"`
	Then  []string `json:"then"`
}

// ParseResult is a validated test case with its resolved steps.
type ParseResult struct {
	TestCase       *testcase.TestCase `json:"testCase"`
	ProcessedSteps ProcessedSteps     `json:"processedSteps"`
	Warnings       []string           `json:"warnings"`
}

// Parse validates content and resolves the placeholders of its scenario
// against projectMeta. Validation failures are returned as one error whose
// message joins every violation with "; ".
func (s *Service) Parse(content string, projectMeta variables.Value) (*ParseResult, error) {
	validation := s.Validate(content)
	if !validation.IsValid {
		kind := testcase.ErrSchema
		if len(validation.Errors) == 1 && strings.HasPrefix(validation.Errors[0], testcase.ErrSyntax.Error()) {
			kind = testcase.ErrSyntax
		}
		return nil, &api.Error{Kind: kind, Msg: strings.Join(validation.Errors, "; ")}
	}

	tc := validation.ParsedData
	warnings := []string{}
	var steps ProcessedSteps
	var w []string

	steps.Given, w = s.resolver.ResolveAll(tc.Scenario.Given, projectMeta)
	warnings = append(warnings, w...)
	steps.When, w = s.resolver.ResolveAll(tc.Scenario.When, projectMeta)
	warnings = append(warnings, w...)
	steps.Then, w = s.resolver.ResolveAll(tc.Scenario.Then, projectMeta)
	warnings = append(warnings, w...)

	if len(warnings) > 0 {
		logging.Debug("Parse", "%s: %d unresolved placeholders", tc.Meta.ID, len(warnings))
	}
	return &ParseResult{TestCase: tc, ProcessedSteps: steps, Warnings: warnings}, nil
}

// ListCases lists the test cases stored in dir.
func (s *Service) ListCases(dir string, filter testcase.Filter, sortBy string) (*testcase.Listing, error) {
	if dir == "" {
		return nil, api.InvalidInput("dirPath is required and must be a string")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, api.InvalidInput("filter.priority must be one of: high, medium, low")
	}
	field, err := testcase.ParseSortField(sortBy)
	if err != nil {
		return nil, err
	}
	return testcase.List(dir, filter, field)
}

// Create renders a new test-case document from a template.
func (s *Service) Create(in generator.CreateInput) (*generator.Generated, error) {
	generated, err := s.creator.Create(in)
	if err != nil {
		return nil, err
	}
	logging.Debug("Create", "Generated %s from template %s", generated.GeneratedID, in.Template)
	return generated, nil
}

// Templates lists the names create accepts.
func (s *Service) Templates() []string {
	return s.creator.Templates().Names()
}

// Init scaffolds a project below the configured base directory.
func (s *Service) Init(in scaffold.Input) (*scaffold.Result, error) {
	return scaffold.Init(in, scaffold.Options{BaseDir: s.baseDir, RootDir: s.rootDir})
}

// ListResults lists one page of the results stored in dir.
func (s *Service) ListResults(dir string, opts results.ListOptions) (*results.ListResult, error) {
	if dir == "" {
		return nil, api.InvalidInput("dirPath is required and must be a string")
	}
	return results.List(dir, opts)
}

// Report compiles the results in in.ResultsDir and writes the report.
func (s *Service) Report(in results.ReportInput) (*results.ReportOutput, error) {
	return results.Generate(in, s.now())
}

// Clean removes, or previews removing, the results in dir matching
// opts.Criteria.
func (s *Service) Clean(dir string, opts results.CleanOptions) (*results.CleanupResult, error) {
	return s.cleaner.Clean(dir, opts)
}

// LoadProjectMeta reads a project-meta.yml file into a lookup table.
func LoadProjectMeta(path string) (variables.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return variables.Null, api.NotFound("Project meta file not found: %s", path)
		}
		return variables.Null, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return variables.Null, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return variables.FromAny(tree), nil
}

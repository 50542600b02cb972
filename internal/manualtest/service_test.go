package manualtest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtctl/internal/api"
	"mtctl/internal/generator"
	"mtctl/internal/results"
	"mtctl/internal/scaffold"
	"mtctl/internal/testcase"
	"mtctl/internal/variables"
)

var fixedNow = time.Date(2024, 1, 12, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	svc, err := New(opts)
	require.NoError(t, err)
	return svc
}

const validCase = `meta:
  id: TC-LOGIN-001
  title: ログインできること
  feature: login
  priority: high
scenario:
  given:
    - "{{environments.production}}/login を開いている"
  when:
    - "{{test_data.users.valid_user.username}} でログインする"
    - "{{missing_var}} を入力する"
  then:
    - "{{today}} の記録が表示される"
`

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New(Options{IDStrategy: "uuid"})
	assert.Error(t, err)
}

func TestService_Validate(t *testing.T) {
	svc := newService(t, Options{})

	t.Run("valid", func(t *testing.T) {
		res := svc.Validate(validCase)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Errors)
		require.NotNil(t, res.ParsedData)
		assert.Equal(t, "TC-LOGIN-001", res.ParsedData.Meta.ID)
	})

	t.Run("syntax error", func(t *testing.T) {
		res := svc.Validate("meta: [unclosed")
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "YAML syntax error: ")
		assert.Nil(t, res.ParsedData)
	})

	t.Run("schema errors", func(t *testing.T) {
		res := svc.Validate("meta:\n  id: bad\n  title: x\n  priority: urgent\n")
		assert.False(t, res.IsValid)
		assert.Equal(t, []string{
			"meta.id: ID format must be TC-<FEATURE>-<NUMBER>",
			"meta.priority: Priority must be one of: high, medium, low",
			"scenario: Required",
		}, res.Errors)
		assert.Equal(t, []string{}, res.Warnings)
	})
}

func TestService_Parse(t *testing.T) {
	svc := newService(t, Options{})
	meta := variables.FromAny(map[string]interface{}{
		"environments": map[string]interface{}{"production": "https://example.com"},
		"test_data": map[string]interface{}{
			"users": map[string]interface{}{"valid_user": map[string]interface{}{"username": "testuser"}},
		},
	})

	res, err := svc.Parse(validCase, meta)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/login を開いている"}, res.ProcessedSteps.Given)
	assert.Equal(t, []string{"testuser でログインする", "{{missing_var}} を入力する"}, res.ProcessedSteps.When)
	assert.Equal(t, []string{"2024-01-12 の記録が表示される"}, res.ProcessedSteps.Then)
	assert.Equal(t, []string{"Variable not found: missing_var"}, res.Warnings)
	assert.Equal(t, "{{today}} の記録が表示される", res.TestCase.Scenario.Then[0], "the parsed document keeps the raw text")
}

func TestService_Parse_Invalid(t *testing.T) {
	svc := newService(t, Options{})

	_, err := svc.Parse("meta:\n  id: bad\n", variables.Null)
	require.Error(t, err)
	assert.True(t, errors.Is(err, testcase.ErrSchema))
	assert.Contains(t, err.Error(), "; ")

	_, err = svc.Parse("a: [", variables.Null)
	require.Error(t, err)
	assert.True(t, errors.Is(err, testcase.ErrSyntax))
}

func TestService_CreateRoundTrip(t *testing.T) {
	svc := newService(t, Options{})

	for _, tmpl := range svc.Templates() {
		t.Run(tmpl, func(t *testing.T) {
			generated, err := svc.Create(generator.CreateInput{
				Template: tmpl,
				Meta:     &generator.MetaInput{Title: "タイトル: " + tmpl, Feature: "user profile", Priority: "low", Tags: []string{"smoke"}},
			})
			require.NoError(t, err)

			res := svc.Validate(generated.YAMLContent)
			assert.True(t, res.IsValid, res.Errors)
			assert.Equal(t, generated.GeneratedID, res.ParsedData.Meta.ID)
		})
	}
}

func TestService_ResetSequence(t *testing.T) {
	svc := newService(t, Options{})
	in := generator.CreateInput{Template: "api", Meta: &generator.MetaInput{Title: "t", Feature: "api", Priority: "high"}}

	first, err := svc.Create(in)
	require.NoError(t, err)
	second, err := svc.Create(in)
	require.NoError(t, err)
	assert.Equal(t, "TC-API-001", first.GeneratedID)
	assert.Equal(t, "TC-API-002", second.GeneratedID)

	svc.ResetSequence()
	again, err := svc.Create(in)
	require.NoError(t, err)
	assert.Equal(t, "TC-API-001", again.GeneratedID)
}

func TestService_InitThenList(t *testing.T) {
	base := t.TempDir()
	svc := newService(t, Options{BaseDir: base, RootDir: "qa"})

	_, err := svc.Init(scaffold.Input{ProjectName: "shop", BaseURL: "https://shop.example.com"})
	require.NoError(t, err)

	casesDir := filepath.Join(base, "qa", "test-cases")
	for _, priority := range []string{"low", "high"} {
		generated, err := svc.Create(generator.CreateInput{
			Template: "login",
			Meta:     &generator.MetaInput{Title: priority, Feature: "login", Priority: priority},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(casesDir, generated.GeneratedID+".yml"), []byte(generated.YAMLContent), 0644))
	}

	listing, err := svc.ListCases(casesDir, testcase.Filter{}, "priority")
	require.NoError(t, err)
	require.Equal(t, 2, listing.TotalCount)
	assert.Equal(t, testcase.Priority("high"), listing.TestCases[0].Meta.Priority)

	meta, err := LoadProjectMeta(filepath.Join(base, "qa", "project-meta.yml"))
	require.NoError(t, err)
	url, ok := meta.Lookup("environments.production")
	require.True(t, ok)
	assert.Equal(t, "https://shop.example.com", url.String())
}

func TestService_ListCases_InputErrors(t *testing.T) {
	svc := newService(t, Options{})

	_, err := svc.ListCases("", testcase.Filter{}, "")
	assert.True(t, api.IsInputError(err))

	_, err = svc.ListCases(t.TempDir(), testcase.Filter{Priority: "urgent"}, "")
	assert.EqualError(t, err, "filter.priority must be one of: high, medium, low")

	_, err = svc.ListCases(t.TempDir(), testcase.Filter{}, "title")
	assert.EqualError(t, err, "sortBy must be one of: id, lastUpdated, priority, feature")
}

func TestService_CleanUsesServiceClock(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "2024-01-01_TC-A-001")
	recent := filepath.Join(root, "2024-01-11_TC-A-002")
	for dir, mtime := range map[string]time.Time{
		old:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		recent: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, os.MkdirAll(dir, 0755))
		report := filepath.Join(dir, "report.md")
		require.NoError(t, os.WriteFile(report, []byte("**Status**: passed\n"), 0644))
		require.NoError(t, os.Chtimes(report, mtime, mtime))
		require.NoError(t, os.Chtimes(dir, mtime, mtime))
	}

	days := 5
	svc := newService(t, Options{})
	res, err := svc.Clean(root, results.CleanOptions{Criteria: &results.Criteria{OlderThanDays: &days}})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.TotalItemsCleaned)
	assert.NoDirExists(t, old)
	assert.DirExists(t, recent)
}

func TestLoadProjectMeta_Missing(t *testing.T) {
	_, err := LoadProjectMeta(filepath.Join(t.TempDir(), "project-meta.yml"))
	assert.True(t, errors.Is(err, api.ErrNotFound))
}

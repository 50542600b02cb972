// Package scaffold lays out a new manual-test project: the directory tree,
// project-meta.yml, a README, a test-case template and optionally an MCP
// client configuration.
package scaffold

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"

	"mtctl/internal/api"
	"mtctl/pkg/logging"
)

const (
	// DefaultRootDir is where the project lives relative to the base dir.
	DefaultRootDir = "tests/manual-tests"

	projectMetaFile  = "project-meta.yml"
	readmeFile       = "README.md"
	templateFile     = "test-case-template.yml"
	mcpConfigFile    = ".mcp.json"
	testCasesDir     = "test-cases"
	testResultsDir   = "test-results"
	templatesDir     = "templates"
	defaultVersion   = "1.0.0"
	defaultServerCmd = "mtctl"
)

//go:embed templates/README.md.tmpl
var readmeTemplate string

//go:embed templates/test-case-template.yml
var testCaseTemplate string

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Feature is one entry of the features list in project-meta.yml.
type Feature struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Enabled     bool   `json:"-" yaml:"enabled"`
}

// Input describes the project to initialise.
type Input struct {
	ProjectName      string            `json:"projectName"`
	BaseURL          string            `json:"baseUrl"`
	Environments     map[string]string `json:"environments,omitempty"`
	Features         []Feature         `json:"features,omitempty"`
	TestDataTemplate bool              `json:"testDataTemplate,omitempty"`
	MCPConfig        bool              `json:"mcpConfig,omitempty"`
	Force            bool              `json:"force,omitempty"`
}

// Options locates the project on disk.
type Options struct {
	// BaseDir is the workspace root; .mcp.json is written here.
	BaseDir string
	// RootDir is the project directory. Relative paths are resolved
	// against BaseDir.
	RootDir string
}

// Result lists what Init created.
type Result struct {
	CreatedFiles       []string `json:"createdFiles"`
	CreatedDirectories []string `json:"createdDirectories"`
	Message            string   `json:"message"`
}

// Validate checks in and returns the first problem found.
func Validate(in Input) error {
	if in.ProjectName == "" {
		return api.InvalidInput("projectName is required and must be a string")
	}
	if !projectNamePattern.MatchString(in.ProjectName) {
		return api.InvalidInput("projectName can only contain alphanumeric characters, dots, underscores, and hyphens")
	}
	if in.BaseURL == "" {
		return api.InvalidInput("baseUrl is required and must be a string")
	}
	if !validURL(in.BaseURL) {
		return api.InvalidInput("baseUrl must be a valid URL")
	}

	envNames := make([]string, 0, len(in.Environments))
	for name := range in.Environments {
		envNames = append(envNames, name)
	}
	sort.Strings(envNames)
	for _, name := range envNames {
		if !validURL(in.Environments[name]) {
			return api.InvalidInput("environments.%s must be a valid URL", name)
		}
	}

	seen := map[string]bool{}
	for i, f := range in.Features {
		if f.Name == "" {
			return api.InvalidInput("features[%d].name is required and must be a string", i)
		}
		if f.Description == "" {
			return api.InvalidInput("features[%d].description is required and must be a string", i)
		}
		if seen[f.Name] {
			return api.InvalidInput("Duplicate feature name: %s", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// Init validates in and writes the project skeleton.
func Init(in Input, opts Options) (*Result, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	base := opts.BaseDir
	if base == "" {
		base = "."
	}
	rootRel := opts.RootDir
	if rootRel == "" {
		rootRel = DefaultRootDir
	}
	root := rootRel
	if !filepath.IsAbs(root) {
		root = filepath.Join(base, rootRel)
	}

	paths := struct {
		meta, readme, template, mcp string
	}{
		meta:     filepath.Join(root, projectMetaFile),
		readme:   filepath.Join(root, readmeFile),
		template: filepath.Join(root, templatesDir, templateFile),
		mcp:      filepath.Join(base, mcpConfigFile),
	}

	if !in.Force {
		for _, p := range []string{paths.meta, paths.readme} {
			if _, err := os.Stat(p); err == nil {
				return nil, api.AlreadyExists("File already exists: %s. Use force=true to overwrite.", p)
			}
		}
	}

	dirs := []string{
		root,
		filepath.Join(root, testCasesDir),
		filepath.Join(root, testResultsDir),
		filepath.Join(root, templatesDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	result := &Result{CreatedDirectories: dirs}

	metaYAML, err := yaml.Marshal(BuildProjectMeta(in))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize project meta: %w", err)
	}
	readme, err := renderReadme(in.ProjectName, rootRel)
	if err != nil {
		return nil, err
	}

	files := []struct {
		path string
		data []byte
	}{
		{paths.meta, metaYAML},
		{paths.readme, readme},
		{paths.template, []byte(testCaseTemplate)},
	}
	if in.MCPConfig {
		mcp, err := json.MarshalIndent(mcpClientConfig(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize MCP config: %w", err)
		}
		files = append(files, struct {
			path string
			data []byte
		}{paths.mcp, mcp})
	}

	for _, f := range files {
		if err := writeFileAtomic(f.path, f.data); err != nil {
			return nil, err
		}
		logging.Debug("Scaffold", "Wrote %s", f.path)
		result.CreatedFiles = append(result.CreatedFiles, f.path)
	}

	result.Message = fmt.Sprintf("Project '%s' initialized successfully!", in.ProjectName)
	logging.Info("Scaffold", "Initialized project %s in %s", in.ProjectName, root)
	return result, nil
}

func renderReadme(projectName, rootDir string) ([]byte, error) {
	tmpl, err := template.New("readme").Parse(readmeTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse README template: %w", err)
	}
	var buf bytes.Buffer
	data := struct{ ProjectName, RootDir string }{projectName, filepath.ToSlash(rootDir)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render README: %w", err)
	}
	return buf.Bytes(), nil
}

func mcpClientConfig() map[string]interface{} {
	return map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"manual-tests": map[string]interface{}{
				"type":    "stdio",
				"command": defaultServerCmd,
				"args":    []string{"serve"},
			},
		},
	}
}

// writeFileAtomic writes through a temporary file and a rename so readers
// never see a half-written document.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

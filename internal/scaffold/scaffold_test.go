package scaffold

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"mtctl/internal/api"
)

func TestValidate(t *testing.T) {
	valid := Input{ProjectName: "my-app_1.0", BaseURL: "https://example.com"}

	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{"valid", func(*Input) {}, ""},
		{"missing name", func(in *Input) { in.ProjectName = "" }, "projectName is required and must be a string"},
		{"bad name", func(in *Input) { in.ProjectName = "my app" }, "projectName can only contain alphanumeric characters, dots, underscores, and hyphens"},
		{"missing url", func(in *Input) { in.BaseURL = "" }, "baseUrl is required and must be a string"},
		{"bad url", func(in *Input) { in.BaseURL = "example.com" }, "baseUrl must be a valid URL"},
		{"bad environment", func(in *Input) {
			in.Environments = map[string]string{"prod": "https://p", "staging": "nope"}
		}, "environments.staging must be a valid URL"},
		{"feature without description", func(in *Input) {
			in.Features = []Feature{{Name: "login"}}
		}, "features[0].description is required and must be a string"},
		{"duplicate feature", func(in *Input) {
			in.Features = []Feature{{Name: "login", Description: "a"}, {Name: "login", Description: "b"}}
		}, "Duplicate feature name: login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := Validate(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, api.IsInputError(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestInit_CreatesLayout(t *testing.T) {
	base := t.TempDir()

	res, err := Init(Input{ProjectName: "shop", BaseURL: "https://shop.example.com", MCPConfig: true}, Options{BaseDir: base})
	require.NoError(t, err)

	root := filepath.Join(base, DefaultRootDir)
	assert.Equal(t, "Project 'shop' initialized successfully!", res.Message)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "test-cases"),
		filepath.Join(root, "test-results"),
		filepath.Join(root, "templates"),
	}, res.CreatedDirectories)
	assert.Equal(t, []string{
		filepath.Join(root, "project-meta.yml"),
		filepath.Join(root, "README.md"),
		filepath.Join(root, "templates", "test-case-template.yml"),
		filepath.Join(base, ".mcp.json"),
	}, res.CreatedFiles)

	for _, f := range res.CreatedFiles {
		assert.FileExists(t, f)
		assert.NoFileExists(t, f+".tmp")
	}

	var meta map[string]interface{}
	data, err := os.ReadFile(filepath.Join(root, "project-meta.yml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, map[string]interface{}{"production": "https://shop.example.com"}, meta["environments"])
	project := meta["project"].(map[string]interface{})
	assert.Equal(t, "shopのマニュアルテスト", project["description"])
	assert.Equal(t, "1.0.0", project["version"])

	readme, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "shopのマニュアルテストプロジェクトです。")
	assert.Contains(t, string(readme), "`{{today}}`")
	assert.Contains(t, string(readme), "tests/manual-tests/")

	var mcp map[string]map[string]map[string]interface{}
	data, err = os.ReadFile(filepath.Join(base, ".mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &mcp))
	assert.Equal(t, "stdio", mcp["mcpServers"]["manual-tests"]["type"])
}

func TestInit_RefusesToOverwriteWithoutForce(t *testing.T) {
	base := t.TempDir()
	in := Input{ProjectName: "shop", BaseURL: "https://shop.example.com"}

	_, err := Init(in, Options{BaseDir: base})
	require.NoError(t, err)

	_, err = Init(in, Options{BaseDir: base})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrAlreadyExists))
	assert.Equal(t, "File already exists: "+filepath.Join(base, DefaultRootDir, "project-meta.yml")+". Use force=true to overwrite.", err.Error())

	in.Force = true
	_, err = Init(in, Options{BaseDir: base})
	assert.NoError(t, err)
}

func TestInit_CustomRootDir(t *testing.T) {
	base := t.TempDir()

	res, err := Init(Input{ProjectName: "p", BaseURL: "http://localhost:3000"}, Options{BaseDir: base, RootDir: "qa"})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "qa"), res.CreatedDirectories[0])
	assert.Len(t, res.CreatedFiles, 3)
}

func TestBuildProjectMeta(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		meta := BuildProjectMeta(Input{ProjectName: "p", BaseURL: "https://p"})

		assert.Equal(t, map[string]string{"production": "https://p"}, meta.Environments)
		require.Len(t, meta.Features, 2)
		assert.Equal(t, "top-page", meta.Features[0].Name)
		assert.True(t, meta.Features[1].Enabled)
		assert.NotContains(t, meta.TestData, "products")
		assert.Equal(t, "#login-button", meta.CommonSelectors["login_form"]["login_button"])
	})

	t.Run("extended test data", func(t *testing.T) {
		meta := BuildProjectMeta(Input{ProjectName: "p", BaseURL: "https://p", TestDataTemplate: true})

		users := meta.TestData["users"].(map[string]interface{})
		assert.Equal(t, "test@example.com", users["valid_user"].(map[string]interface{})["email"])
		assert.Contains(t, users, "invalid_user")
		assert.Contains(t, meta.TestData, "products")
	})

	t.Run("explicit features and environments", func(t *testing.T) {
		meta := BuildProjectMeta(Input{
			ProjectName:  "p",
			BaseURL:      "https://p",
			Environments: map[string]string{"staging": "https://s"},
			Features:     []Feature{{Name: "cart", Description: "カート"}},
		})

		assert.Equal(t, map[string]string{"staging": "https://s"}, meta.Environments)
		assert.Equal(t, []Feature{{Name: "cart", Description: "カート", Enabled: true}}, meta.Features)
	})
}

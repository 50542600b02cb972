package scaffold

import "fmt"

// ProjectMeta is the project-meta.yml document. Its test_data and
// environments sections double as the lookup table for {{a.b}} variables.
type ProjectMeta struct {
	Project         ProjectInfo                  `yaml:"project"`
	Environments    map[string]string            `yaml:"environments"`
	Features        []Feature                    `yaml:"features"`
	TestData        map[string]interface{}       `yaml:"test_data"`
	CommonSelectors map[string]map[string]string `yaml:"common_selectors"`
}

type ProjectInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// BuildProjectMeta fills in defaults for anything the input omits.
func BuildProjectMeta(in Input) ProjectMeta {
	envs := in.Environments
	if len(envs) == 0 {
		envs = map[string]string{"production": in.BaseURL}
	}

	features := in.Features
	if len(features) == 0 {
		features = []Feature{
			{Name: "top-page", Description: "トップページ機能"},
			{Name: "login", Description: "ログイン機能"},
		}
	}
	enabled := make([]Feature, len(features))
	for i, f := range features {
		f.Enabled = true
		enabled[i] = f
	}

	return ProjectMeta{
		Project: ProjectInfo{
			Name:        in.ProjectName,
			Description: fmt.Sprintf("%sのマニュアルテスト", in.ProjectName),
			Version:     defaultVersion,
		},
		Environments:    envs,
		Features:        enabled,
		TestData:        testData(in.TestDataTemplate),
		CommonSelectors: commonSelectors(),
	}
}

func testData(extended bool) map[string]interface{} {
	validUser := map[string]interface{}{
		"username": "testuser",
		"password": "testpass123",
	}
	users := map[string]interface{}{"valid_user": validUser}
	data := map[string]interface{}{"users": users}

	if !extended {
		return data
	}

	validUser["email"] = "test@example.com"
	users["invalid_user"] = map[string]interface{}{
		"username": "invalid",
		"password": "wrong",
	}
	data["products"] = map[string]interface{}{
		"sample_product": map[string]interface{}{
			"name":        "サンプル商品",
			"price":       1000,
			"description": "テスト用の商品",
		},
	}
	return data
}

func commonSelectors() map[string]map[string]string {
	return map[string]map[string]string{
		"login_form": {
			"username_field": "#username",
			"password_field": "#password",
			"login_button":   "#login-button",
		},
		"navigation": {
			"home_link":     `a[href="/"]`,
			"logout_button": "#logout",
		},
	}
}

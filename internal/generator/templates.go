package generator

// Template is the default Given-When-Then skeleton for a kind of test.
type Template struct {
	Given []string `json:"given" yaml:"given"`
	When  []string `json:"when" yaml:"when"`
	Then  []string `json:"then" yaml:"then"`
}

// Registry maps template names to skeletons, remembering insertion order.
type Registry struct {
	names     []string
	templates map[string]Template
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: map[string]Template{}}
}

// Register adds or replaces a template.
func (r *Registry) Register(name string, t Template) {
	if _, exists := r.templates[name]; !exists {
		r.names = append(r.names, name)
	}
	r.templates[name] = t
}

// Lookup returns the named template.
func (r *Registry) Lookup(name string) (Template, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// Names lists the registered templates in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// DefaultRegistry holds the built-in login, form, navigation and api
// templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("login", Template{
		Given: []string{"ユーザーがログアウト状態である"},
		When: []string{
			"ログインページにアクセスする",
			"ユーザー名フィールドに有効なユーザー名を入力する",
			"パスワードフィールドに有効なパスワードを入力する",
			"ログインボタンをクリックする",
		},
		Then: []string{
			"ダッシュボードページにリダイレクトされる",
			"ユーザー名が表示される",
			"ログアウトボタンが表示される",
		},
	})
	r.Register("form", Template{
		Given: []string{"フォームページが表示されている"},
		When: []string{
			"フォームの必須フィールドに値を入力する",
			"送信ボタンをクリックする",
		},
		Then: []string{
			"送信が成功する",
			"成功メッセージが表示される",
		},
	})
	r.Register("navigation", Template{
		Given: []string{"ホームページが表示されている"},
		When: []string{
			"ナビゲーションメニューをクリックする",
			"目的のページリンクをクリックする",
		},
		Then: []string{
			"正しいページに遷移する",
			"ページタイトルが正しく表示される",
		},
	})
	r.Register("api", Template{
		Given: []string{"APIエンドポイントが利用可能である"},
		When: []string{
			"APIリクエストを送信する",
			"レスポンスを受信する",
		},
		Then: []string{
			"ステータスコードが200である",
			"レスポンスボディが期待される形式である",
		},
	})
	return r
}

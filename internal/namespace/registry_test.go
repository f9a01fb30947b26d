package namespace

import (
	"reflect"
	"testing"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
)

func TestNew_MergesContentNamespaces(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CommentsConfig
		enabled []int
	}{
		{
			name:    "content namespaces become enabled",
			cfg:     config.CommentsConfig{ContentNamespaces: []int{0, 4}},
			enabled: []int{0, 4},
		},
		{
			name: "explicit false is kept",
			cfg: config.CommentsConfig{
				ContentNamespaces: []int{0, 4},
				EnabledNamespaces: map[int]bool{4: false},
			},
			enabled: []int{0},
		},
		{
			name: "explicit entries and content merged",
			cfg: config.CommentsConfig{
				ContentNamespaces: []int{0},
				EnabledNamespaces: map[int]bool{2: true, 3: false},
			},
			enabled: []int{0, 2},
		},
		{
			name:    "nothing configured",
			cfg:     config.CommentsConfig{},
			enabled: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.cfg)
			if got := r.EnabledNamespaces(); !reflect.DeepEqual(got, tt.enabled) {
				t.Errorf("EnabledNamespaces() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestNew_DoesNotMutateConfig(t *testing.T) {
	cfg := config.CommentsConfig{
		ContentNamespaces: []int{0},
		EnabledNamespaces: map[int]bool{2: true},
	}
	r := New(cfg)
	if _, ok := cfg.EnabledNamespaces[0]; ok {
		t.Error("New must not write into the config map")
	}
	if !r.Enabled(0) {
		t.Error("namespace 0 should be enabled")
	}
}

func TestRegistry_Parse(t *testing.T) {
	r := New(config.CommentsConfig{})

	tests := []struct {
		in    string
		ns    int
		title string
	}{
		{"User:Alice", 2, "Alice"},
		{"user:Alice", 2, "Alice"},
		{"User_talk:Bob", 3, "Bob"},
		{"Main Page", 0, "Main Page"},
		{"Unknown:Thing", 0, "Unknown:Thing"},
		{"User:Alice/Sandbox", 2, "Alice/Sandbox"},
	}
	for _, tt := range tests {
		ns, title := r.Parse(tt.in)
		if ns != tt.ns || title != tt.title {
			t.Errorf("Parse(%q) = (%d, %q), want (%d, %q)", tt.in, ns, title, tt.ns, tt.title)
		}
	}
}

func TestRegistry_PrefixedText(t *testing.T) {
	r := New(config.CommentsConfig{})
	if got := r.PrefixedText(&models.Page{Namespace: 2, Title: "Bob"}); got != "User:Bob" {
		t.Errorf("PrefixedText = %q", got)
	}
	if got := r.PrefixedText(&models.Page{Namespace: 0, Title: "Main Page"}); got != "Main Page" {
		t.Errorf("PrefixedText = %q", got)
	}
}

func TestRootName(t *testing.T) {
	if got := RootName(&models.Page{Namespace: 2, Title: "Bob/Drafts/One"}); got != "Bob" {
		t.Errorf("RootName = %q, want Bob", got)
	}
	if got := RootName(&models.Page{Namespace: 2, Title: "Bob"}); got != "Bob" {
		t.Errorf("RootName = %q, want Bob", got)
	}
}

func TestRegistry_CustomNames(t *testing.T) {
	r := New(config.CommentsConfig{Namespaces: map[int]string{0: "", 100: "Portal"}})
	ns, title := r.Parse("Portal:Science")
	if ns != 100 || title != "Science" {
		t.Errorf("Parse = (%d, %q)", ns, title)
	}
	if _, ok := r.Name(2); ok {
		t.Error("default names should be replaced by configured names")
	}
}

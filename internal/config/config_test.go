package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_NOTIFY_KEY", "")
	t.Setenv("COMMENTS_ENABLED_NAMESPACES", "")
	t.Setenv("COMMENTS_CONTENT_NAMESPACES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Redis.NotifyKey != "comments:notifications" {
		t.Errorf("NotifyKey = %q", cfg.Redis.NotifyKey)
	}
	if cfg.Comments.MaxMentions != 10 {
		t.Errorf("MaxMentions = %d, want 10", cfg.Comments.MaxMentions)
	}
	if cfg.Import.ExportFlushEvery != 100 {
		t.Errorf("ExportFlushEvery = %d, want 100", cfg.Import.ExportFlushEvery)
	}
	if !cfg.Import.DefaultSkipExisting {
		t.Error("DefaultSkipExisting should default to true")
	}
}

func TestLoad_NamespaceEnv(t *testing.T) {
	t.Setenv("COMMENTS_CONTENT_NAMESPACES", "0, 4")
	t.Setenv("COMMENTS_ENABLED_NAMESPACES", "2=true,4=false,6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Comments.ContentNamespaces) != 2 || cfg.Comments.ContentNamespaces[1] != 4 {
		t.Errorf("ContentNamespaces = %v", cfg.Comments.ContentNamespaces)
	}
	want := map[int]bool{2: true, 4: false, 6: true}
	for ns, on := range want {
		if got, ok := cfg.Comments.EnabledNamespaces[ns]; !ok || got != on {
			t.Errorf("EnabledNamespaces[%d] = %v (present %v), want %v", ns, got, ok, on)
		}
	}
}

func TestLoad_InvalidNamespaceList(t *testing.T) {
	t.Setenv("COMMENTS_CONTENT_NAMESPACES", "zero")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric namespace")
	}
}

func TestCommentsConfig_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "namespaces.yaml")
	content := `namespaces:
  0: ""
  2: User
  3: User talk
  100: Portal
content_namespaces: [0, 100]
comments_enabled_namespaces:
  2: true
  100: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var c CommentsConfig
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if c.Namespaces[100] != "Portal" {
		t.Errorf("Namespaces[100] = %q", c.Namespaces[100])
	}
	if len(c.ContentNamespaces) != 2 {
		t.Errorf("ContentNamespaces = %v", c.ContentNamespaces)
	}
	if c.EnabledNamespaces[100] {
		t.Error("namespace 100 should be explicitly disabled")
	}
}

func TestCommentsConfig_LoadFile_Missing(t *testing.T) {
	var c CommentsConfig
	if err := c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing host", func(c *Config) { c.Database.Host = "" }, true},
		{"missing db name", func(c *Config) { c.Database.Name = "" }, true},
		{"zero mentions", func(c *Config) { c.Comments.MaxMentions = 0 }, true},
		{"zero flush", func(c *Config) { c.Import.ExportFlushEvery = 0 }, true},
		{"zero workers", func(c *Config) { c.Import.WorkerConcurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{Host: "localhost", Name: "page_comments"},
				Import:   ImportConfig{ExportFlushEvery: 100, WorkerConcurrency: 1},
				Comments: CommentsConfig{MaxMentions: 10},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

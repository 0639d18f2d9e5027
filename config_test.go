package assetpipe

import (
	"errors"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.SourceRoots = []string{"assets"}
	cfg.OutputDir = "build"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"no roots", func(c *Config) { c.SourceRoots = nil }, "SourceRoots"},
		{"no output", func(c *Config) { c.OutputDir = "" }, "OutputDir"},
		{"empty name", func(c *Config) { c.AtlasName = "" }, "AtlasName"},
		{"name with dir", func(c *Config) { c.AtlasName = "a/b" }, "AtlasName"},
		{"hidden name", func(c *Config) { c.AtlasName = ".atlas" }, "AtlasName"},
		{"manifest name", func(c *Config) { c.AtlasName = "shaders" }, "AtlasName"},
		{"manifest name folded", func(c *Config) { c.AtlasName = "Shaders" }, "AtlasName"},
		{"page too small", func(c *Config) { c.PageSize = 32 }, "PageSize"},
		{"page too large", func(c *Config) { c.PageSize = 16384 }, "PageSize"},
		{"page not pow2", func(c *Config) { c.PageSize = 1000 }, "PageSize"},
		{"min page", func(c *Config) { c.PageSize = 64 }, ""},
		{"zero pages", func(c *Config) { c.MaxPages = 0 }, "MaxPages"},
		{"too many pages", func(c *Config) { c.MaxPages = 257 }, "MaxPages"},
		{"negative padding", func(c *Config) { c.Padding = -1 }, "Padding"},
		{"zero padding", func(c *Config) { c.Padding = 0 }, ""},
		{"large padding", func(c *Config) { c.Padding = 17 }, "Padding"},
		{"unknown target", func(c *Config) { c.ShaderTarget = "dxil" }, "ShaderTarget"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "Workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestConfigFingerprint(t *testing.T) {
	base := validConfig()
	fp := base.Fingerprint()
	if len(fp) != 64 {
		t.Errorf("Fingerprint length = %d, want 64", len(fp))
	}

	same := base
	same.Workers = 12
	same.SourceRoots = []string{"elsewhere"}
	if same.Fingerprint() != fp {
		t.Error("Fingerprint changed for settings that do not affect output")
	}

	for name, modify := range map[string]func(*Config){
		"page size": func(c *Config) { c.PageSize = 2048 },
		"max pages": func(c *Config) { c.MaxPages = 2 },
		"padding":   func(c *Config) { c.Padding = 0 },
		"name":      func(c *Config) { c.AtlasName = "ui" },
	} {
		cfg := base
		modify(&cfg)
		if cfg.Fingerprint() == fp {
			t.Errorf("Fingerprint unchanged after changing %s", name)
		}
	}
}

func TestConfigPaths(t *testing.T) {
	cfg := validConfig()
	if got, want := cfg.cachePath(), filepath.Join("build", DefaultCacheFile); got != want {
		t.Errorf("cachePath = %q, want %q", got, want)
	}
	cfg.CachePath = "/tmp/c.json"
	if got := cfg.cachePath(); got != "/tmp/c.json" {
		t.Errorf("cachePath = %q", got)
	}
	key := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	if got := cfg.pageFile(3, key); got != "atlas_3_0123456789ab.png" {
		t.Errorf("pageFile = %q", got)
	}
	if got, want := cfg.descriptorPath(), filepath.Join("build", "atlas.json"); got != want {
		t.Errorf("descriptorPath = %q, want %q", got, want)
	}
}

func TestWithWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 3
	o := defaultBuildOptions(&cfg)
	if o.workers != 3 {
		t.Errorf("workers = %d, want 3", o.workers)
	}
	WithWorkers(5)(&o)
	if o.workers != 5 {
		t.Errorf("workers = %d, want 5", o.workers)
	}
	WithWorkers(0)(&o)
	if o.workers != 5 {
		t.Errorf("WithWorkers(0) changed workers to %d", o.workers)
	}
}

func TestConfigIsPageFile(t *testing.T) {
	cfg := validConfig()
	tests := []struct {
		name string
		want bool
	}{
		{"atlas_0_0123456789ab.png", true},
		{"atlas_12_ffffffffffff.png", true},
		{"atlas_0.png", false},
		{"atlas_x_0123456789ab.png", false},
		{"atlas_0_0123456789AB.png", false},
		{"atlas_0_0123456789a.png", false},
		{"atlas_ui_0_0123456789ab.png", false},
		{"atlas.json", false},
		{"other_0_0123456789ab.png", false},
	}
	for _, tt := range tests {
		if got := cfg.isPageFile(tt.name); got != tt.want {
			t.Errorf("isPageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if name := cfg.pageFile(7, "abcdef0123456789"); !cfg.isPageFile(name) {
		t.Errorf("isPageFile(pageFile()) = false for %q", name)
	}
}

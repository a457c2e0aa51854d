package arbor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte("path_cache_size: 128\nbox_test_cost: 10\ndebug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.PathCacheSize != 128 || cfg.BoxTestCost != 10 || !cfg.Debug {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.CompositeCacheSize != def.CompositeCacheSize || cfg.RenderCallCost != def.RenderCallCost {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"malformed", "path_cache_size: [", false},
		{"not power of two", "composite_cache_size: 100", true},
		{"zero path cache", "path_cache_size: 0", true},
		{"negative memory", "memory_limit: -1", true},
		{"zero box cost", "box_test_cost: 0", true},
		{"negative triangle cost", "triangle_cost: -2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrInvalidConfig) != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (%v)", !tt.invalid, tt.invalid, err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	if err := os.WriteFile(path, []byte("memory_limit: 65536\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MemoryLimit != 65536 {
		t.Errorf("MemoryLimit = %d, want 65536", cfg.MemoryLimit)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v, want os.ErrNotExist", err)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompositeCacheSize = 3
	if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestEngineMemoryLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemoryLimit = 10
	if _, err := NewEngine(cfg); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("err = %v, want ErrOutOfMemory for a limit below the cache size", err)
	}
}

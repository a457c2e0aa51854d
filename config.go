package arbor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds engine tunables. Zero values are not meaningful; start from
// DefaultConfig or LoadConfig.
type Config struct {
	// CompositeCacheSize is the number of slots in the composite transform
	// table. Must be a power of two.
	CompositeCacheSize int `yaml:"composite_cache_size"`
	// PathCacheSize is the number of slots in the node-to-node path table.
	// Must be a power of two.
	PathCacheSize int `yaml:"path_cache_size"`
	// MemoryLimit caps the bytes the render queue and transform cache may
	// reserve. Zero means unlimited.
	MemoryLimit int `yaml:"memory_limit"`

	// Culling cost model used to decide whether a group keeps a cached
	// bounding box.
	BoxTestCost    int `yaml:"box_test_cost"`
	RenderCallCost int `yaml:"render_call_cost"`
	TriangleCost   int `yaml:"triangle_cost"`

	// Debug enables invariant checks that panic on violation and per-pass
	// debug logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		CompositeCacheSize: 256,
		PathCacheSize:      64,
		BoxTestCost:        60,
		RenderCallCost:     40,
		TriangleCost:       1,
	}
}

// LoadConfig parses YAML on top of DefaultConfig and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("arbor: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("arbor: read config: %w", err)
	}
	return LoadConfig(data)
}

// Validate reports whether the configuration can be used to build an Engine.
func (c Config) Validate() error {
	if !isPowerOfTwo(c.CompositeCacheSize) {
		return fmt.Errorf("%w: composite_cache_size %d is not a power of two", ErrInvalidConfig, c.CompositeCacheSize)
	}
	if !isPowerOfTwo(c.PathCacheSize) {
		return fmt.Errorf("%w: path_cache_size %d is not a power of two", ErrInvalidConfig, c.PathCacheSize)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("%w: memory_limit %d is negative", ErrInvalidConfig, c.MemoryLimit)
	}
	if c.BoxTestCost <= 0 || c.RenderCallCost < 0 || c.TriangleCost < 0 {
		return fmt.Errorf("%w: culling costs must be non-negative and box_test_cost positive", ErrInvalidConfig)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

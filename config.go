package assetpipe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gogpu/assetpipe/descriptor"
	"github.com/gogpu/assetpipe/pack"
	"github.com/gogpu/assetpipe/shader"
)

// DefaultCacheFile is the cache file name inside the output directory.
const DefaultCacheFile = ".assetpipe-cache.json"

// ShaderManifestFile is the shader manifest name inside the output
// directory. AtlasName must not map onto it.
const ShaderManifestFile = "shaders.json"

// pageKeyLen is the number of page-key hex digits in a page file name.
const pageKeyLen = 12

// Config describes one pipeline build.
type Config struct {
	// SourceRoots are the directories scanned for images and shaders.
	// Identifiers are paths relative to their root.
	SourceRoots []string

	// OutputDir receives the descriptor, page images, and shader bytecode.
	OutputDir string

	// AtlasName names the descriptor (<name>.json) and pages (<name>_<i>.png).
	// Default: "atlas".
	AtlasName string

	// PageSize is the width and height of every atlas page.
	// Must be a power of 2 in [64, 8192]. Default: 1024.
	PageSize int

	// MaxPages limits the number of atlas pages. Default: 8.
	MaxPages int

	// Padding is the gap in pixels between packed images. Default: 1.
	Padding int

	// ShaderTarget selects the bytecode format. Default: "spirv".
	ShaderTarget string

	// Workers is the number of rasterization and compile workers.
	// 0 means GOMAXPROCS.
	Workers int

	// CachePath overrides the cache file location.
	// Default: OutputDir/.assetpipe-cache.json.
	CachePath string
}

// DefaultConfig returns default configuration. SourceRoots and OutputDir
// must still be set.
func DefaultConfig() Config {
	return Config{
		AtlasName:    "atlas",
		PageSize:     1024,
		MaxPages:     8,
		Padding:      1,
		ShaderTarget: shader.TargetSPIRV.String(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.SourceRoots) == 0 {
		return &ConfigError{Field: "SourceRoots", Reason: "must not be empty"}
	}
	if c.OutputDir == "" {
		return &ConfigError{Field: "OutputDir", Reason: "must not be empty"}
	}
	if c.AtlasName == "" || c.AtlasName != filepath.Base(c.AtlasName) || c.AtlasName[0] == '.' {
		return &ConfigError{Field: "AtlasName", Reason: "must be a plain file name"}
	}
	if strings.EqualFold(c.AtlasName+".json", ShaderManifestFile) {
		return &ConfigError{Field: "AtlasName", Reason: "collides with the shader manifest " + ShaderManifestFile}
	}
	if c.PageSize < 64 {
		return &ConfigError{Field: "PageSize", Reason: "must be at least 64"}
	}
	if c.PageSize > 8192 {
		return &ConfigError{Field: "PageSize", Reason: "must be at most 8192"}
	}
	if c.PageSize&(c.PageSize-1) != 0 {
		return &ConfigError{Field: "PageSize", Reason: "must be power of 2"}
	}
	if c.MaxPages < 1 || c.MaxPages > 256 {
		return &ConfigError{Field: "MaxPages", Reason: "must be in [1, 256]"}
	}
	if c.Padding < 0 || c.Padding > 16 {
		return &ConfigError{Field: "Padding", Reason: "must be in [0, 16]"}
	}
	if _, err := shader.ParseTarget(c.ShaderTarget); err != nil {
		return &ConfigError{Field: "ShaderTarget", Reason: err.Error()}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "Workers", Reason: "must be non-negative"}
	}
	return nil
}

// Fingerprint hashes every setting that affects build output. A cache
// recorded under a different fingerprint is discarded.
func (c *Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "descriptor=%d\n", descriptor.FormatVersion)
	fmt.Fprintf(h, "page=%d\nmax=%d\npad=%d\n", c.PageSize, c.MaxPages, c.Padding)
	fmt.Fprintf(h, "name=%s\ntarget=%s\n", c.AtlasName, c.ShaderTarget)
	return hex.EncodeToString(h.Sum(nil))
}

// packConfig returns the packer settings for c.
func (c *Config) packConfig() pack.Config {
	return pack.Config{
		PageWidth:  c.PageSize,
		PageHeight: c.PageSize,
		MaxPages:   c.MaxPages,
		Padding:    c.Padding,
	}
}

func (c *Config) cachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(c.OutputDir, DefaultCacheFile)
}

func (c *Config) descriptorPath() string {
	return filepath.Join(c.OutputDir, c.AtlasName+".json")
}

// pageFile names page index after its content key, so a rebuilt page never
// overwrites a file that the previous descriptor still references.
func (c *Config) pageFile(index int, key string) string {
	if len(key) > pageKeyLen {
		key = key[:pageKeyLen]
	}
	return fmt.Sprintf("%s_%d_%s.png", c.AtlasName, index, key)
}

// isPageFile reports whether name has the form pageFile produces.
func (c *Config) isPageFile(name string) bool {
	rest, ok := strings.CutPrefix(name, c.AtlasName+"_")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, ".png")
	if !ok {
		return false
	}
	index, key, ok := strings.Cut(rest, "_")
	if !ok || index == "" || len(key) != pageKeyLen {
		return false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	for _, r := range key {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func (c *Config) shaderManifestPath() string {
	return filepath.Join(c.OutputDir, ShaderManifestFile)
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "assetpipe: invalid config." + e.Field + ": " + e.Reason
}

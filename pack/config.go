package pack

// Config holds the packer limits. Changing any field changes every layout.
type Config struct {
	// PageWidth and PageHeight are the fixed page dimensions.
	// Must be powers of 2 in [16, 8192]. Default: 1024.
	PageWidth  int
	PageHeight int

	// MaxPages limits the number of pages. Default: 8.
	MaxPages int

	// Padding is the gap in pixels between neighbouring rectangles.
	// Default: 1.
	Padding int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		PageWidth:  1024,
		PageHeight: 1024,
		MaxPages:   8,
		Padding:    1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateSide("PageWidth", c.PageWidth); err != nil {
		return err
	}
	if err := validateSide("PageHeight", c.PageHeight); err != nil {
		return err
	}
	if c.MaxPages < 1 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at least 1"}
	}
	if c.MaxPages > 256 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at most 256"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding > 16 {
		return &ConfigError{Field: "Padding", Reason: "must be at most 16"}
	}
	return nil
}

func validateSide(field string, v int) error {
	if v < 16 {
		return &ConfigError{Field: field, Reason: "must be at least 16"}
	}
	if v > 8192 {
		return &ConfigError{Field: field, Reason: "must be at most 8192"}
	}
	if v&(v-1) != 0 {
		return &ConfigError{Field: field, Reason: "must be power of 2"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "pack: invalid config." + e.Field + ": " + e.Reason
}

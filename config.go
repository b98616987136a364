package tagtext

import "github.com/coregx/tagtext/tagtable"

// Config controls how a Compiler compiles definitions.
//
// Example:
//
//	config := tagtext.DefaultConfig()
//	config.Wide = true // tag []rune text
//	c, err := tagtext.NewCompiler(config)
type Config struct {
	// CacheCapacity is the number of compiled tables the compiler's cache
	// holds before it is cleared. 0 disables caching.
	// Default: 100
	CacheCapacity int

	// Wide compiles tables for []rune text instead of []byte.
	// Default: false
	Wide bool

	// Cacheable looks definitions up in the cache before compiling them
	// and stores the results.
	// Default: true
	Cacheable bool
}

// DefaultConfig returns the configuration used by Compile: narrow tables
// and a cache of tagtable.DefaultCapacity tables.
func DefaultConfig() Config {
	return Config{
		CacheCapacity: tagtable.DefaultCapacity,
		Wide:          false,
		Cacheable:     true,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - CacheCapacity: 0 to 1,000,000
func (c Config) Validate() error {
	if c.CacheCapacity < 0 || c.CacheCapacity > 1_000_000 {
		return &ConfigError{
			Field:   "CacheCapacity",
			Message: "must be between 0 and 1,000,000",
		}
	}
	return nil
}

func (c Config) mode() tagtable.Mode {
	if c.Wide {
		return tagtable.Wide
	}
	return tagtable.Narrow
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "tagtext: invalid config: " + e.Field + ": " + e.Message
}

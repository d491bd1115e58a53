package main

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/schuko"
)

// scriptConfig adapts the options section of a script to
// schuko.Configuration. YAML scalars arrive as bool, int or string.
type scriptConfig map[string]interface{}

var _ schuko.Configuration = scriptConfig{}

// InitDefaults is part of interface schuko.Configuration. Defaults are
// supplied by restyle.DefaultOptions.
func (c scriptConfig) InitDefaults() {}

// IsInteractive is part of interface schuko.Configuration.
func (c scriptConfig) IsInteractive() bool { return false }

// IsSet is part of interface schuko.Configuration.
func (c scriptConfig) IsSet(key string) bool {
	_, ok := c[key]
	return ok
}

// GetString is part of interface schuko.Configuration.
func (c scriptConfig) GetString(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// GetInt is part of interface schuko.Configuration.
func (c scriptConfig) GetInt(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if c.IsSet(key) {
		tracer().Errorf("option %s is not a number: %v", key, c[key])
	}
	return 0
}

// GetBool is part of interface schuko.Configuration.
func (c scriptConfig) GetBool(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if c.IsSet(key) {
		tracer().Errorf("option %s is not a boolean: %v", key, c[key])
	}
	return false
}

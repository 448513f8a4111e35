/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package envutil reads typed flag defaults from the environment.
package envutil

import (
	"os"
	"strconv"
	"time"
)

// lookup returns parse(value) when key is set, non-empty and parses; otherwise def.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	v, err := parse(value)
	if err != nil {
		return def
	}
	return v
}

// GetString returns the environment variable value if set and non-empty, otherwise returns the default value.
func GetString(key, defaultValue string) string {
	return lookup(key, defaultValue, func(s string) (string, error) { return s, nil })
}

// GetBool accepts anything strconv.ParseBool does ("1", "t", "true", ...).
// An unparsable value yields the default.
func GetBool(key string, defaultValue bool) bool {
	return lookup(key, defaultValue, strconv.ParseBool)
}

// GetInt returns the environment variable value as int if set and valid, otherwise returns the default value.
func GetInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, strconv.Atoi)
}

// GetFloat returns the environment variable value as float64 if set and valid, otherwise returns the default value.
func GetFloat(key string, defaultValue float64) float64 {
	return lookup(key, defaultValue, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// GetDuration returns the environment variable value as time.Duration if set and valid, otherwise returns the default value.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	return lookup(key, defaultValue, time.ParseDuration)
}

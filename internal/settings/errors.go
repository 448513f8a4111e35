/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import "fmt"

// ParameterParseError reports a stored value that could not be parsed.
// Accessors return it together with the default they fell back to.
type ParameterParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParameterParseError) Error() string {
	return fmt.Sprintf("parse setting %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ParameterParseError) Unwrap() error {
	return e.Err
}

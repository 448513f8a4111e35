/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package applier

import (
	"context"

	"github.com/go-logr/logr"
)

// Log only records the theme change.
type Log struct {
	log logr.Logger
}

// NewLog creates a logging applier.
func NewLog(log logr.Logger) *Log {
	return &Log{log: log.WithName("applier")}
}

// Apply implements Applier.
func (l *Log) Apply(_ context.Context, activated bool) error {
	l.log.Info("theme applied", "theme", Theme(activated))
	return nil
}

/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package applier

import (
	"context"
	"sync"
)

// Fake records applied values for test assertions.
type Fake struct {
	mu sync.Mutex

	// Applied contains every value passed to Apply.
	Applied []bool

	// Err, if set, is returned by Apply.
	Err error
}

// Apply implements Applier.
func (f *Fake) Apply(_ context.Context, activated bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Applied = append(f.Applied, activated)
	return f.Err
}

// Values returns a copy of the applied values.
func (f *Fake) Values() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.Applied...)
}

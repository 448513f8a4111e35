//go:build e2e

/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package testutil

import (
	"context"
	"time"

	. "github.com/onsi/gomega"

	"github.com/ardikabs/autodark/internal/settings"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// EventuallyApplied waits until the last value applied for user equals want.
func EventuallyApplied(d *Daemon, user string, want bool) {
	Eventually(func() bool {
		got, ok := d.LastApplied(user)
		return ok && got == want
	}, DefaultTimeout, DefaultInterval).Should(BeTrueBecause("user %s should end up with activated=%v", user, want))
}

// ConsistentlyApplied asserts that user keeps want as its last applied value for duration.
func ConsistentlyApplied(d *Daemon, user string, want bool, duration time.Duration) {
	Consistently(func() bool {
		got, ok := d.LastApplied(user)
		return ok && got == want
	}, duration, DefaultInterval).Should(BeTrue())
}

// WaitForWatch blocks until an edit written through writer reaches the runner
// of user, i.e. its store watch is established.
func WaitForWatch(ctx context.Context, d *Daemon, user string, writer settings.Store) {
	attempt := 0
	Eventually(func() int {
		attempt++
		Expect(Probe(ctx, writer, attempt)).To(Succeed())
		return d.Runner(user).Seen(ProbeKey)
	}, DefaultTimeout, 200*time.Millisecond).Should(BeNumerically(">", 0))
}

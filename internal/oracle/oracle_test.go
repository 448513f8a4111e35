/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/ardikabs/autodark/internal/wellknown"
)

type recordingListener struct {
	mu     sync.Mutex
	states []*State
}

func (r *recordingListener) OnStateChanged(state *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingListener) received() []*State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*State(nil), r.states...)
}

func utcDate(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

func TestStatic(t *testing.T) {
	o := NewStatic(nil)
	assert.Nil(t, o.CurrentState())

	l := &recordingListener{}
	o.Subscribe(l)
	o.Subscribe(l)
	assert.Equal(t, 1, o.Subscribers())

	night := &State{IsNight: true, Sunset: utcDate(10, 18), Sunrise: utcDate(11, 6)}
	o.Set(night)

	got := o.CurrentState()
	require.NotNil(t, got)
	assert.True(t, got.Equal(night))

	got.IsNight = false
	assert.True(t, o.CurrentState().IsNight, "CurrentState returns a copy")

	o.Unsubscribe(l)
	o.Set(nil)
	assert.Len(t, l.received(), 1)
	assert.Nil(t, o.CurrentState())
}

func TestStateEqual(t *testing.T) {
	a := &State{IsNight: true, Sunset: utcDate(10, 18), Sunrise: utcDate(11, 6)}
	b := &State{IsNight: true, Sunset: utcDate(10, 18).In(time.FixedZone("X", 3600)), Sunrise: utcDate(11, 6)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*State)(nil).Equal(nil))
	assert.False(t, a.Equal(&State{IsNight: false, Sunset: a.Sunset, Sunrise: a.Sunrise}))
}

// sunServer answers with sunrise at 06:00 and sunset at 18:00 UTC for every date.
func sunServer(t *testing.T, failing *atomic.Bool) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing != nil && failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		date := r.URL.Query().Get("date")
		if r.URL.Query().Get("formatted") != "0" || r.URL.Query().Get("lat") != "52.52" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		resp := map[string]any{
			"status": "OK",
			"results": map[string]string{
				"sunrise": date + "T06:00:00+00:00",
				"sunset":  date + "T18:00:00+00:00",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTTPOracle(endpoint string, clk *clocktesting.FakeClock) *HTTPOracle {
	return NewHTTP(HTTPConfig{
		Endpoint:        endpoint,
		Latitude:        52.52,
		Longitude:       13.405,
		RefreshInterval: 6 * time.Hour,
		RetryInterval:   5 * time.Minute,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
	}, clk, func() *time.Location { return time.UTC }, logr.Discard())
}

func TestHTTPOracle_DayAndNight(t *testing.T) {
	srv := sunServer(t, nil)
	clk := clocktesting.NewFakeClock(utcDate(10, 12))
	o := newTestHTTPOracle(srv.URL, clk)

	l := &recordingListener{}
	o.Subscribe(l)

	wait := o.tick(context.Background())
	state := o.CurrentState()
	require.NotNil(t, state)
	assert.False(t, state.IsNight)
	assert.True(t, state.Sunrise.Equal(utcDate(10, 6)))
	assert.True(t, state.Sunset.Equal(utcDate(10, 18)))
	assert.Equal(t, 6*time.Hour, wait)
	assert.Len(t, l.received(), 1)

	clk.SetTime(utcDate(10, 19))
	o.tick(context.Background())
	state = o.CurrentState()
	assert.True(t, state.IsNight)
	assert.True(t, state.Sunset.Equal(utcDate(10, 18)))
	assert.True(t, state.Sunrise.Equal(utcDate(11, 6)))
	assert.Len(t, l.received(), 2)

	o.tick(context.Background())
	assert.Len(t, l.received(), 2, "unchanged state is not pushed again")
}

func TestHTTPOracle_BeforeSunrise(t *testing.T) {
	srv := sunServer(t, nil)
	clk := clocktesting.NewFakeClock(utcDate(10, 3))
	o := newTestHTTPOracle(srv.URL, clk)

	wait := o.tick(context.Background())
	state := o.CurrentState()
	require.NotNil(t, state)
	assert.True(t, state.IsNight)
	assert.True(t, state.Sunset.Equal(utcDate(9, 18)))
	assert.True(t, state.Sunrise.Equal(utcDate(10, 6)))
	assert.Equal(t, 3*time.Hour, wait, "next tick lands on sunrise")
}

func TestHTTPOracle_FailureKeepsState(t *testing.T) {
	var failing atomic.Bool
	srv := sunServer(t, &failing)
	clk := clocktesting.NewFakeClock(utcDate(10, 12))
	o := newTestHTTPOracle(srv.URL, clk)

	failing.Store(true)
	wait := o.tick(context.Background())
	assert.Nil(t, o.CurrentState(), "no reading until the first successful fetch")
	assert.Equal(t, 5*time.Minute, wait)

	failing.Store(false)
	o.tick(context.Background())
	require.NotNil(t, o.CurrentState())

	failing.Store(true)
	clk.SetTime(utcDate(10, 19))
	wait = o.tick(context.Background())
	state := o.CurrentState()
	require.NotNil(t, state)
	assert.True(t, state.IsNight, "cached sun times still drive crossings")
	assert.Equal(t, 5*time.Minute, wait)
}

func TestHTTPOracle_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	healthy := sunServer(t, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		healthy.Config.Handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	clk := clocktesting.NewFakeClock(utcDate(10, 12))
	o := newTestHTTPOracle(srv.URL, clk)

	wait := o.tick(context.Background())
	require.NotNil(t, o.CurrentState(), "a single 503 is retried within the same refresh")
	assert.Equal(t, 6*time.Hour, wait)
	assert.Equal(t, int32(4), calls.Load(), "one failed attempt plus one request per day")
}

func TestNewHTTP_RetryDefaults(t *testing.T) {
	o := NewHTTP(HTTPConfig{}, clocktesting.NewFakeClock(utcDate(10, 12)), nil, logr.Discard())
	assert.Equal(t, wellknown.OracleRetryMax, o.client.RetryMax)

	o = NewHTTP(HTTPConfig{RetryMax: 1}, clocktesting.NewFakeClock(utcDate(10, 12)), nil, logr.Discard())
	assert.Equal(t, 1, o.client.RetryMax)
}

func TestHTTPOracle_NoSunTimes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"INVALID_DATE","results":{}}`))
	}))
	defer srv.Close()

	o := newTestHTTPOracle(srv.URL, clocktesting.NewFakeClock(utcDate(10, 12)))
	_, err := o.fetchDay(context.Background(), "2026-03-10")
	assert.ErrorIs(t, err, ErrNoSunTimes)
}

func TestHTTPOracle_RunStopsOnCancel(t *testing.T) {
	srv := sunServer(t, nil)
	clk := clocktesting.NewFakeClock(utcDate(10, 12))
	o := newTestHTTPOracle(srv.URL, clk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	require.Eventually(t, func() bool { return o.CurrentState() != nil }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, clk.HasWaiters, 5*time.Second, 10*time.Millisecond)

	clk.SetTime(utcDate(10, 18))
	require.Eventually(t, func() bool {
		s := o.CurrentState()
		return s != nil && s.IsNight
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

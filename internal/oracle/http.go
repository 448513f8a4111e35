/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/metrics"
	"github.com/ardikabs/autodark/internal/wellknown"
)

// DefaultEndpoint is a public sunrise/sunset API.
const DefaultEndpoint = "https://api.sunrise-sunset.org/json"

const dateLayout = "2006-01-02"

// ErrNoSunTimes is returned when the endpoint has no sunrise or sunset for a date, e.g. polar day or night.
var ErrNoSunTimes = errors.New("no sunrise/sunset for date")

// HTTPConfig configures an HTTP oracle.
type HTTPConfig struct {
	// Endpoint is the sunrise/sunset API URL. Defaults to DefaultEndpoint.
	Endpoint string

	Latitude  float64
	Longitude float64

	// RefreshInterval is how often sun times are refetched. Defaults to wellknown.OracleRefreshInterval.
	RefreshInterval time.Duration

	// RetryInterval is the delay after a failed refresh. Defaults to wellknown.OracleRetryInterval.
	RetryInterval time.Duration

	// RetryMax bounds the retries of a single request. Defaults to wellknown.OracleRetryMax.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	// Zero keeps the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// sunDay holds the sun times of one local calendar date.
type sunDay struct {
	sunrise time.Time
	sunset  time.Time
}

type sunResponse struct {
	Status  string `json:"status"`
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
}

// HTTPOracle derives the day/night state from sunrise and sunset times fetched
// over HTTP, and pushes a new state at every sunrise and sunset crossing.
type HTTPOracle struct {
	cfg      HTTPConfig
	client   *retryablehttp.Client
	clock    clock.Clock
	location func() *time.Location
	log      logr.Logger

	mu        sync.RWMutex
	state     *State
	days      map[string]sunDay
	fetchedAt time.Time
	listeners listeners
}

var _ Oracle = (*HTTPOracle)(nil)

// NewHTTP creates an HTTP oracle. Call Run to start fetching.
func NewHTTP(cfg HTTPConfig, clk clock.Clock, location func() *time.Location, log logr.Logger) *HTTPOracle {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = wellknown.OracleRefreshInterval
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = wellknown.OracleRetryInterval
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = wellknown.OracleRetryMax
	}
	if location == nil {
		location = func() *time.Location { return time.Local }
	}

	log = log.WithName("oracle")

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.Logger = leveledLogger{log: log}

	return &HTTPOracle{
		cfg:      cfg,
		client:   client,
		clock:    clk,
		location: location,
		log:      log,
		days:     make(map[string]sunDay),
	}
}

// CurrentState implements Oracle.
func (o *HTTPOracle) CurrentState() *State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.state == nil {
		return nil
	}
	cp := *o.state
	return &cp
}

// Subscribe implements Oracle.
func (o *HTTPOracle) Subscribe(l Listener) { o.listeners.add(l) }

// Unsubscribe implements Oracle.
func (o *HTTPOracle) Unsubscribe(l Listener) { o.listeners.remove(l) }

// Run refreshes the state until ctx is cancelled.
func (o *HTTPOracle) Run(ctx context.Context) error {
	o.log.Info("starting day/night oracle", "endpoint", o.cfg.Endpoint,
		"latitude", o.cfg.Latitude, "longitude", o.cfg.Longitude)

	for {
		wait := o.tick(ctx)

		timer := o.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.log.Info("stopping day/night oracle")
			return nil
		case <-timer.C():
		}
	}
}

// tick refetches stale sun times, publishes the current state and returns the delay until the next tick.
func (o *HTTPOracle) tick(ctx context.Context) time.Duration {
	now := o.clock.Now().In(o.location())

	var fetchErr error
	if o.stale(now) {
		fetchErr = o.fetch(ctx, now)
		if fetchErr != nil {
			o.log.Error(fetchErr, "failed to refresh sun times")
			metrics.OracleRefreshTotal.WithLabelValues("error").Inc()
		} else {
			metrics.OracleRefreshTotal.WithLabelValues("success").Inc()
		}
	}

	state, next, err := o.compute(now)
	if err != nil {
		o.log.V(1).Info("no day/night state available", "reason", err.Error())
	}
	o.publish(state)

	wait := o.cfg.RefreshInterval
	if fetchErr != nil {
		wait = o.cfg.RetryInterval
	} else {
		o.mu.RLock()
		wait = o.fetchedAt.Add(o.cfg.RefreshInterval).Sub(now)
		o.mu.RUnlock()
	}
	if !next.IsZero() && next.Sub(now) < wait {
		wait = next.Sub(now)
	}
	return max(wait, time.Second)
}

func (o *HTTPOracle) stale(now time.Time) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, d := range []time.Time{now.AddDate(0, 0, -1), now, now.AddDate(0, 0, 1)} {
		if _, ok := o.days[d.Format(dateLayout)]; !ok {
			return true
		}
	}
	return !now.Before(o.fetchedAt.Add(o.cfg.RefreshInterval))
}

// fetch loads the sun times for yesterday, today and tomorrow.
func (o *HTTPOracle) fetch(ctx context.Context, now time.Time) error {
	days := make(map[string]sunDay, 3)
	for _, d := range []time.Time{now.AddDate(0, 0, -1), now, now.AddDate(0, 0, 1)} {
		date := d.Format(dateLayout)
		day, err := o.fetchDay(ctx, date)
		if err != nil {
			return fmt.Errorf("fetch sun times for %s: %w", date, err)
		}
		days[date] = day
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.days = days
	o.fetchedAt = now
	return nil
}

func (o *HTTPOracle) fetchDay(ctx context.Context, date string) (sunDay, error) {
	u, err := url.Parse(o.cfg.Endpoint)
	if err != nil {
		return sunDay{}, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(o.cfg.Latitude, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(o.cfg.Longitude, 'f', -1, 64))
	q.Set("date", date)
	q.Set("formatted", "0")
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return sunDay{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return sunDay{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sunDay{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return sunDay{}, fmt.Errorf("read response: %w", err)
	}

	var sr sunResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return sunDay{}, fmt.Errorf("decode response: %w", err)
	}
	if sr.Status != "OK" {
		return sunDay{}, fmt.Errorf("%w: status %s", ErrNoSunTimes, sr.Status)
	}

	sunrise, err := time.Parse(time.RFC3339, sr.Results.Sunrise)
	if err != nil {
		return sunDay{}, fmt.Errorf("%w: sunrise %q", ErrNoSunTimes, sr.Results.Sunrise)
	}
	sunset, err := time.Parse(time.RFC3339, sr.Results.Sunset)
	if err != nil {
		return sunDay{}, fmt.Errorf("%w: sunset %q", ErrNoSunTimes, sr.Results.Sunset)
	}
	return sunDay{sunrise: sunrise, sunset: sunset}, nil
}

// compute derives the state at now and the next sunrise or sunset crossing.
func (o *HTTPOracle) compute(now time.Time) (*State, time.Time, error) {
	o.mu.RLock()
	yesterday, okY := o.days[now.AddDate(0, 0, -1).Format(dateLayout)]
	today, okT := o.days[now.Format(dateLayout)]
	tomorrow, okN := o.days[now.AddDate(0, 0, 1).Format(dateLayout)]
	o.mu.RUnlock()

	if !okY || !okT || !okN {
		return nil, time.Time{}, ErrNoSunTimes
	}

	switch {
	case now.Before(today.sunrise):
		return &State{IsNight: true, Sunset: yesterday.sunset, Sunrise: today.sunrise}, today.sunrise, nil
	case now.Before(today.sunset):
		return &State{IsNight: false, Sunrise: today.sunrise, Sunset: today.sunset}, today.sunset, nil
	default:
		return &State{IsNight: true, Sunset: today.sunset, Sunrise: tomorrow.sunrise}, tomorrow.sunrise, nil
	}
}

// publish stores state and notifies listeners when it differs from the previous one.
// A nil state keeps the previous reading.
func (o *HTTPOracle) publish(state *State) {
	if state == nil {
		return
	}

	o.mu.Lock()
	if o.state != nil && o.state.Equal(state) {
		o.mu.Unlock()
		return
	}
	cp := *state
	o.state = &cp
	o.mu.Unlock()

	o.log.Info("day/night state changed", "isNight", state.IsNight,
		"sunrise", state.Sunrise, "sunset", state.Sunset)
	o.listeners.notify(o.CurrentState())
}

// leveledLogger adapts logr to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logr.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error(nil, msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.V(1).Info(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(2).Info(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

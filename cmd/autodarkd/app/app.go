/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ardikabs/autodark/internal/applier"
	"github.com/ardikabs/autodark/internal/config"
	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/session"
	"github.com/ardikabs/autodark/internal/timechange"
	"github.com/ardikabs/autodark/internal/version"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

// Run starts the autodark daemon and blocks until a termination signal.
func Run(opts Options) error {
	if err := opts.Validate(); err != nil {
		setupLog.Error(err, "invalid options")
		return err
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			setupLog.Error(err, "unable to load config file", "path", opts.ConfigFile)
			return err
		}
		cfg = loaded
	}
	defaults, err := cfg.SettingsDefaults()
	if err != nil {
		setupLog.Error(err, "invalid defaults in config file")
		return err
	}

	ctx := ctrl.SetupSignalHandler()
	log := ctrl.Log.WithName("autodark")
	clk := clock.RealClock{}

	times := timechange.New(timechange.Config{
		LocaltimePath: opts.LocaltimePath,
		CheckInterval: opts.ClockCheckInterval,
	}, clk, log)

	backend, err := newStoreBackend(ctx, opts, log)
	if err != nil {
		setupLog.Error(err, "unable to set up settings store", "store", opts.Store)
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			setupLog.Error(err, "failed to close settings store")
		}
	}()

	appliers, closeAppliers, err := newApplierFactory(opts, clk, log)
	if err != nil {
		setupLog.Error(err, "unable to set up theme applier")
		return err
	}
	defer closeAppliers()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return times.Run(gctx) })

	var dayNight oracle.Oracle
	if opts.Oracle == OracleHTTP {
		httpOracle := oracle.NewHTTP(oracleConfig(opts, cfg), clk, times.Location, log)
		g.Go(func() error { return httpOracle.Run(gctx) })
		dayNight = httpOracle
	}

	sessions := session.NewManager(newSessionFactory(sessionDeps{
		backend:  backend,
		defaults: defaults,
		clock:    clk,
		location: times.Location,
		oracle:   dayNight,
		times:    times,
		applier:  appliers,
	}), log)

	srv := NewServer(opts.MetricsAddr, sessions, log)
	g.Go(func() error { return srv.Start(gctx) })

	setupLog.Info("starting autodark",
		"version", version.GetVersion(), "store", opts.Store, "oracle", opts.Oracle, "user", opts.User)

	if err := sessions.StartUser(gctx, opts.User); err != nil {
		setupLog.Error(err, "unable to start session", "user", opts.User)
		sessions.Shutdown()
		return err
	}

	<-gctx.Done()
	sessions.Shutdown()

	if err := g.Wait(); err != nil {
		setupLog.Error(err, "problem running autodark")
		return err
	}
	setupLog.Info("autodark stopped")
	return nil
}

// oracleConfig merges the oracle flags with the config file. Coordinates from
// the file are used when neither --latitude nor --longitude is given.
func oracleConfig(opts Options, cfg *config.Config) oracle.HTTPConfig {
	hc := oracle.HTTPConfig{
		Endpoint:        opts.OracleEndpoint,
		Latitude:        opts.Latitude,
		Longitude:       opts.Longitude,
		RefreshInterval: opts.OracleRefreshInterval,
		RetryMax:        opts.OracleRetryMax,
	}
	if hc.Latitude == 0 && hc.Longitude == 0 {
		hc.Latitude, hc.Longitude = cfg.Oracle.Latitude, cfg.Oracle.Longitude
	}
	if (hc.Endpoint == "" || hc.Endpoint == oracle.DefaultEndpoint) && cfg.Oracle.Endpoint != "" {
		hc.Endpoint = cfg.Oracle.Endpoint
	}
	return hc
}

// newApplierFactory returns the per-user applier builder. Every user gets the
// log applier; an MQTT publisher is added when a broker is configured.
func newApplierFactory(opts Options, clk clock.PassiveClock, log logr.Logger) (func(user string) scheduler.Applier, func(), error) {
	if opts.MQTTBroker == "" {
		return func(string) scheduler.Applier { return applier.NewLog(log) }, func() {}, nil
	}

	client, err := applier.ConnectMQTT(applier.MQTTConfig{
		Broker:   opts.MQTTBroker,
		Username: opts.MQTTUsername,
		Password: opts.MQTTPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	factory := func(user string) scheduler.Applier {
		return applier.Multi{applier.NewLog(log), applier.NewMQTT(client, user, clk)}
	}
	closeFn := func() { client.Disconnect(250) }
	return factory, closeFn, nil
}

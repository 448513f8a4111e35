/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package common

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ardikabs/autodark/internal/config"
	"github.com/ardikabs/autodark/internal/settings"
)

// Scheme holds the core Kubernetes types used to read settings ConfigMaps.
var Scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(Scheme))
}

// NewLogger returns a development zap logger when verbose is set and a discarding one otherwise.
func NewLogger(opts *RootOptions) logr.Logger {
	if !opts.Verbose {
		return logr.Discard()
	}
	zapLog, err := zap.NewDevelopment()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog).WithName("autodarkctl")
}

// ResolveLocation returns the zone used to interpret and print times.
func ResolveLocation(opts *RootOptions) (*time.Location, error) {
	if opts.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
	}
	return loc, nil
}

// NewSettings opens the settings of the selected user on the selected backend.
// The returned close function releases the backend connection.
func NewSettings(opts *RootOptions) (*settings.Settings, func(), error) {
	loc, err := ResolveLocation(opts)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load config %q: %w", opts.ConfigFile, err)
		}
	}
	defaults, err := cfg.SettingsDefaults()
	if err != nil {
		return nil, nil, err
	}

	log := NewLogger(opts)
	var (
		store   settings.Store
		closeFn = func() {}
	)

	switch opts.Store {
	case StoreConfigMap:
		c, err := NewK8sClient(opts)
		if err != nil {
			return nil, nil, err
		}
		store = settings.NewConfigMapStore(c, ResolveNamespace(opts), opts.User, log)

	case StoreRedis:
		rc := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{opts.RedisAddr},
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		store = settings.NewRedisStore(rc, opts.User, log)
		closeFn = func() { _ = rc.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown store %q, expected %s or %s", opts.Store, StoreConfigMap, StoreRedis)
	}

	s := settings.New(store, clock.RealClock{}, func() *time.Location { return loc }, defaults)
	return s, closeFn, nil
}

// NewK8sClient creates a controller-runtime client from the global options.
func NewK8sClient(opts *RootOptions) (client.WithWatch, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		loadingRules.ExplicitPath = opts.Kubeconfig
	}

	configOverrides := &clientcmd.ConfigOverrides{}
	if opts.Namespace != "" {
		configOverrides.Context.Namespace = opts.Namespace
	}

	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	c, err := client.NewWithWatch(restConfig, client.Options{Scheme: Scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return c, nil
}

// ResolveNamespace determines the effective namespace from flags or kubeconfig context.
func ResolveNamespace(opts *RootOptions) string {
	if opts.Namespace != "" {
		return opts.Namespace
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		loadingRules.ExplicitPath = opts.Kubeconfig
	}

	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})
	ns, _, err := kubeConfig.Namespace()
	if err != nil || ns == "" {
		return "autodark-system"
	}

	return ns
}

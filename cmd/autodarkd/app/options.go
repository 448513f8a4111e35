/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"flag"
	"fmt"
	"os"
	"time"

	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/version"
	"github.com/ardikabs/autodark/internal/wellknown"
	"github.com/ardikabs/autodark/pkg/envutil"
)

// Settings store backends.
const (
	StoreMemory    = "memory"
	StoreConfigMap = "configmap"
	StoreRedis     = "redis"
)

// Oracle backends.
const (
	OracleHTTP = "http"
	OracleNone = "none"
)

// Options contains configuration for the autodark daemon.
type Options struct {
	MetricsAddr string
	ConfigFile  string
	User        string

	Store         string
	Namespace     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Oracle                string
	OracleEndpoint        string
	Latitude              float64
	Longitude             float64
	OracleRefreshInterval time.Duration
	OracleRetryMax        int

	MQTTBroker   string
	MQTTUsername string
	MQTTPassword string

	LocaltimePath      string
	ClockCheckInterval time.Duration
}

// ParseFlags parses command-line flags and environment variables.
func ParseFlags() Options {
	var opts Options
	var showVersion bool

	flag.BoolVar(&showVersion, "version", false, "Print version and exit.")
	flag.StringVar(&opts.MetricsAddr, "metrics-bind-address", envutil.GetString("METRICS_BIND_ADDRESS", ":8080"),
		"The address the metric, health and session endpoints bind to.")
	flag.StringVar(&opts.ConfigFile, "config", envutil.GetString("AUTODARK_CONFIG", ""),
		"Optional YAML file with default window, mode and oracle coordinates.")
	flag.StringVar(&opts.User, "user", envutil.GetString("AUTODARK_USER", wellknown.DefaultUser),
		"The user whose session is started at boot.")
	flag.StringVar(&opts.Store, "store", envutil.GetString("AUTODARK_STORE", StoreMemory),
		"Settings store backend: memory, configmap or redis.")
	flag.StringVar(&opts.Namespace, "namespace", envutil.GetString("AUTODARK_NAMESPACE", "autodark-system"),
		"The namespace holding the settings ConfigMaps when --store=configmap.")
	flag.StringVar(&opts.RedisAddr, "redis-address", envutil.GetString("AUTODARK_REDIS_ADDRESS", "localhost:6379"),
		"The Redis address when --store=redis.")
	flag.StringVar(&opts.RedisPassword, "redis-password", envutil.GetString("AUTODARK_REDIS_PASSWORD", ""),
		"The Redis password.")
	flag.IntVar(&opts.RedisDB, "redis-db", envutil.GetInt("AUTODARK_REDIS_DB", 0),
		"The Redis database number.")
	flag.StringVar(&opts.Oracle, "oracle", envutil.GetString("AUTODARK_ORACLE", OracleHTTP),
		"Day/night oracle backend: http or none.")
	flag.StringVar(&opts.OracleEndpoint, "oracle-endpoint", envutil.GetString("AUTODARK_ORACLE_ENDPOINT", oracle.DefaultEndpoint),
		"The sunrise/sunset API endpoint.")
	flag.Float64Var(&opts.Latitude, "latitude", envutil.GetFloat("AUTODARK_LATITUDE", 0),
		"Latitude used by the oracle.")
	flag.Float64Var(&opts.Longitude, "longitude", envutil.GetFloat("AUTODARK_LONGITUDE", 0),
		"Longitude used by the oracle.")
	flag.DurationVar(&opts.OracleRefreshInterval, "oracle-refresh-interval",
		envutil.GetDuration("AUTODARK_ORACLE_REFRESH_INTERVAL", wellknown.OracleRefreshInterval),
		"How often sunrise and sunset times are refetched.")
	flag.IntVar(&opts.OracleRetryMax, "oracle-retry-max", envutil.GetInt("AUTODARK_ORACLE_RETRY_MAX", wellknown.OracleRetryMax),
		"How many times a failed sunrise/sunset request is retried.")
	flag.StringVar(&opts.MQTTBroker, "mqtt-broker", envutil.GetString("AUTODARK_MQTT_BROKER", ""),
		"MQTT broker URL, e.g. tcp://localhost:1883. Empty disables publishing.")
	flag.StringVar(&opts.MQTTUsername, "mqtt-username", envutil.GetString("AUTODARK_MQTT_USERNAME", ""),
		"MQTT username.")
	flag.StringVar(&opts.MQTTPassword, "mqtt-password", envutil.GetString("AUTODARK_MQTT_PASSWORD", ""),
		"MQTT password.")
	flag.StringVar(&opts.LocaltimePath, "localtime-path", envutil.GetString("AUTODARK_LOCALTIME_PATH", wellknown.LocaltimePath),
		"The zoneinfo link watched for time zone changes. Empty disables zone watching.")
	flag.DurationVar(&opts.ClockCheckInterval, "clock-check-interval",
		envutil.GetDuration("AUTODARK_CLOCK_CHECK_INTERVAL", wellknown.ClockJumpCheckInterval),
		"How often the wall clock is checked for jumps.")

	zapOpts := zap.Options{
		Development: envutil.GetBool("AUTODARK_DEVELOPMENT", false),
	}
	zapOpts.BindFlags(flag.CommandLine)
	flag.Parse()

	if showVersion {
		fmt.Println("autodarkd", version.GetVersion())
		os.Exit(0)
	}

	logger := zap.New(zap.UseFlagOptions(&zapOpts))
	ctrl.SetLogger(logger)
	klog.SetLogger(logger)

	return opts
}

// Validate reports option combinations that cannot run.
func (o Options) Validate() error {
	switch o.Store {
	case StoreMemory, StoreConfigMap, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", o.Store)
	}
	switch o.Oracle {
	case OracleHTTP, OracleNone:
	default:
		return fmt.Errorf("unknown oracle %q", o.Oracle)
	}
	if o.OracleRetryMax < 0 {
		return fmt.Errorf("oracle retry max must not be negative")
	}
	if o.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	return nil
}

/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package common

// Settings store backends.
const (
	StoreConfigMap = "configmap"
	StoreRedis     = "redis"
)

// RootOptions holds global options shared across subcommands.
type RootOptions struct {
	Store      string
	User       string
	Timezone   string
	ConfigFile string
	JsonOutput bool
	Verbose    bool

	Kubeconfig string
	Namespace  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

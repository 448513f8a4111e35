/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ardikabs/autodark/internal/settings"
)

// watcher is implemented by stores that follow edits made by other processes.
type watcher interface {
	Watch(ctx context.Context) error
}

// storeBackend hands out the settings store of a user.
type storeBackend interface {
	Store(user string) settings.Store
	Close() error
}

func newStoreBackend(ctx context.Context, opts Options, log logr.Logger) (storeBackend, error) {
	switch opts.Store {
	case StoreConfigMap:
		restConfig, err := ctrl.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		c, err := client.NewWithWatch(restConfig, client.Options{Scheme: scheme})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
		}
		return &configMapBackend{client: c, namespace: opts.Namespace, log: log}, nil

	case StoreRedis:
		c := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{opts.RedisAddr},
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.RedisAddr, err)
		}
		return &redisBackend{client: c, log: log}, nil

	default:
		return &memoryBackend{stores: make(map[string]*settings.Memory)}, nil
	}
}

// memoryBackend keeps every user's store for the lifetime of the process so
// switching back to a user resumes its settings.
type memoryBackend struct {
	mu     sync.Mutex
	stores map[string]*settings.Memory
}

func (b *memoryBackend) Store(user string) settings.Store {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stores[user]
	if !ok {
		s = settings.NewMemory(nil)
		b.stores[user] = s
	}
	return s
}

func (b *memoryBackend) Close() error { return nil }

type configMapBackend struct {
	client    client.WithWatch
	namespace string
	log       logr.Logger
}

func (b *configMapBackend) Store(user string) settings.Store {
	return settings.NewConfigMapStore(b.client, b.namespace, user, b.log)
}

func (b *configMapBackend) Close() error { return nil }

type redisBackend struct {
	client redis.UniversalClient
	log    logr.Logger
}

func (b *redisBackend) Store(user string) settings.Store {
	return settings.NewRedisStore(b.client, user, b.log)
}

func (b *redisBackend) Close() error { return b.client.Close() }

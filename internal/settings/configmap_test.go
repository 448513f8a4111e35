/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/ardikabs/autodark/internal/wellknown"
)

func newFakeClient(t *testing.T) client.WithWatch {
	t.Helper()

	scheme := runtime.NewScheme()
	require.NoError(t, corev1.AddToScheme(scheme))
	return fake.NewClientBuilder().WithScheme(scheme).Build()
}

func TestConfigMapStore_SetAndGet(t *testing.T) {
	c := newFakeClient(t)
	store := NewConfigMapStore(c, "test-ns", "1000", logr.Discard())
	ctx := context.Background()

	_, ok, err := store.GetString(ctx, wellknown.KeyActivated)
	require.NoError(t, err)
	assert.False(t, ok, "missing configmap reads as unset")

	v := "1"
	require.NoError(t, store.SetString(ctx, wellknown.KeyActivated, &v))

	got, ok, err := store.GetString(ctx, wellknown.KeyActivated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", got)

	var cm corev1.ConfigMap
	require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "test-ns", Name: "autodark-settings-1000"}, &cm))
	assert.Equal(t, "1000", cm.Labels[wellknown.LabelUser])
	assert.Equal(t, wellknown.AppName, cm.Labels[wellknown.LabelManagedBy])

	require.NoError(t, store.SetString(ctx, wellknown.KeyActivated, nil))
	_, ok, err = store.GetString(ctx, wellknown.KeyActivated)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigMapName(t *testing.T) {
	assert.Equal(t, "autodark-settings-1000", ConfigMapName("1000"))
	assert.Equal(t, "autodark-settings-alice-example-com", ConfigMapName("Alice@example.com"))
	assert.LessOrEqual(t, len(ConfigMapName(strings.Repeat("user", 30))), 63)
}

func TestConfigMapStore_DeleteMissingDoesNotCreate(t *testing.T) {
	c := newFakeClient(t)
	store := NewConfigMapStore(c, "test-ns", "1000", logr.Discard())
	ctx := context.Background()

	require.NoError(t, store.SetString(ctx, wellknown.KeyLastActivatedTime, nil))

	var list corev1.ConfigMapList
	require.NoError(t, c.List(ctx, &list, client.InNamespace("test-ns")))
	assert.Empty(t, list.Items)
}

func TestConfigMapStore_LocalWritesNotifyOnChange(t *testing.T) {
	c := newFakeClient(t)
	store := NewConfigMapStore(c, "test-ns", "1000", logr.Discard())
	ctx := context.Background()

	var keys []string
	store.Subscribe(func(key string) { keys = append(keys, key) })

	v := "0"
	require.NoError(t, store.SetString(ctx, wellknown.KeyAutoMode, &v))
	require.NoError(t, store.SetString(ctx, wellknown.KeyAutoMode, &v))
	assert.Equal(t, []string{wellknown.KeyAutoMode}, keys)
}

func TestConfigMapStore_WatchReportsExternalEdits(t *testing.T) {
	c := newFakeClient(t)
	store := NewConfigMapStore(c, "test-ns", "1000", logr.Discard())
	other := NewConfigMapStore(c, "test-ns", "1000", logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		keys = map[string]bool{}
	)
	store.Subscribe(func(key string) {
		mu.Lock()
		defer mu.Unlock()
		keys[key] = true
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Watch(ctx)
	}()

	n := 0
	assert.Eventually(t, func() bool {
		n++
		v := strconv.Itoa(n * 60_000)
		_ = other.SetString(ctx, wellknown.KeyCustomStartTime, &v)

		mu.Lock()
		defer mu.Unlock()
		return keys[wellknown.KeyCustomStartTime]
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}

func TestChangedKeys(t *testing.T) {
	before := map[string]string{"a": "1", "b": "2", "c": "3"}
	after := map[string]string{"a": "1", "b": "20", "d": "4"}

	assert.Equal(t, []string{"b", "c", "d"}, changedKeys(before, after))
	assert.Empty(t, changedKeys(before, before))
	assert.Equal(t, []string{"a"}, changedKeys(nil, map[string]string{"a": ""}))
}

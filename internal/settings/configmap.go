/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ardikabs/autodark/internal/wellknown"
	"github.com/ardikabs/autodark/pkg/k8sutil"
)

// ConfigMapStore persists one user's settings in a ConfigMap.
// Every setting is a key of the ConfigMap data.
type ConfigMapStore struct {
	client    client.WithWatch
	namespace string
	user      string
	log       logr.Logger

	mu   sync.Mutex
	seen map[string]string
	subs subscribers
}

var _ Store = (*ConfigMapStore)(nil)

// ConfigMapName returns the name of the ConfigMap holding a user's settings.
// The user id is folded into a valid object name.
func ConfigMapName(user string) string {
	return k8sutil.SanitizeName(fmt.Sprintf("%s-settings-%s", wellknown.AppName, user), k8sutil.MaxLabelLength)
}

// NewConfigMapStore creates a store backed by the ConfigMap of user in namespace.
func NewConfigMapStore(c client.WithWatch, namespace, user string, log logr.Logger) *ConfigMapStore {
	return &ConfigMapStore{
		client:    c,
		namespace: namespace,
		user:      user,
		log:       log.WithName("configmap-store").WithValues("namespace", namespace, "user", user),
	}
}

func (s *ConfigMapStore) key() types.NamespacedName {
	return types.NamespacedName{Namespace: s.namespace, Name: ConfigMapName(s.user)}
}

// GetString implements Store.
func (s *ConfigMapStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var cm corev1.ConfigMap
	err := s.client.Get(ctx, s.key(), &cm)
	if errors.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get settings configmap: %w", err)
	}

	v, ok := cm.Data[key]
	return v, ok, nil
}

// SetString implements Store. The ConfigMap is created on first write.
func (s *ConfigMapStore) SetString(ctx context.Context, key string, value *string) error {
	changed := false

	err := retry.RetryOnConflict(retry.DefaultBackoff, func() error {
		var cm corev1.ConfigMap
		err := s.client.Get(ctx, s.key(), &cm)

		if errors.IsNotFound(err) {
			if value == nil {
				changed = false
				return nil
			}
			cm = corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      ConfigMapName(s.user),
					Namespace: s.namespace,
					Labels: map[string]string{
						wellknown.LabelUser:      k8sutil.SanitizeName(s.user, k8sutil.MaxLabelLength),
						wellknown.LabelManagedBy: wellknown.AppName,
					},
				},
				Data: make(map[string]string),
			}
		} else if err != nil {
			return fmt.Errorf("get settings configmap: %w", err)
		}

		old, existed := cm.Data[key]
		if value == nil && !existed || value != nil && existed && old == *value {
			changed = false
			return nil
		}

		if cm.Data == nil {
			cm.Data = make(map[string]string)
		}
		if value == nil {
			delete(cm.Data, key)
		} else {
			cm.Data[key] = *value
		}
		changed = true

		if cm.ResourceVersion == "" {
			return s.client.Create(ctx, &cm)
		}
		return s.client.Update(ctx, &cm)
	})
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}

	if changed {
		s.record(key, value)
		s.subs.notify(key)
	}
	return nil
}

// Subscribe implements Store.
func (s *ConfigMapStore) Subscribe(fn func(key string)) func() {
	return s.subs.add(fn)
}

// Watch reports changes made to the ConfigMap by other writers until ctx is cancelled.
// A closed watch is re-established, at most once per second.
func (s *ConfigMapStore) Watch(ctx context.Context) error {
	if err := s.prime(ctx); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(1), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		w, err := s.client.Watch(ctx, &corev1.ConfigMapList{}, client.InNamespace(s.namespace))
		if err != nil {
			s.log.Error(err, "failed to watch settings configmap")
			continue
		}
		s.drain(ctx, w)
		w.Stop()

		if ctx.Err() != nil {
			return nil
		}
		s.log.V(1).Info("settings watch closed, restarting")
	}
}

func (s *ConfigMapStore) drain(ctx context.Context, w watch.Interface) {
	name := ConfigMapName(s.user)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.ResultChan():
			if !ok {
				return
			}
			cm, isCM := ev.Object.(*corev1.ConfigMap)
			if !isCM || cm.Name != name {
				continue
			}

			switch ev.Type {
			case watch.Added, watch.Modified:
				s.observe(cm.Data)
			case watch.Deleted:
				s.observe(nil)
			}
		}
	}
}

// prime records the current data without notifying.
func (s *ConfigMapStore) prime(ctx context.Context) error {
	var cm corev1.ConfigMap
	err := s.client.Get(ctx, s.key(), &cm)
	if err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("get settings configmap: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = maps.Clone(cm.Data)
	return nil
}

// record applies a local write to the latest known state so its watch event is not reported again.
func (s *ConfigMapStore) record(key string, value *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen == nil {
		s.seen = make(map[string]string)
	}
	if value == nil {
		delete(s.seen, key)
		return
	}
	s.seen[key] = *value
}

// observe records data as the latest known state and notifies the keys that changed.
func (s *ConfigMapStore) observe(data map[string]string) {
	s.mu.Lock()
	changed := changedKeys(s.seen, data)
	s.seen = maps.Clone(data)
	s.mu.Unlock()

	if len(changed) > 0 {
		s.subs.notify(changed...)
	}
}

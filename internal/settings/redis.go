/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ardikabs/autodark/internal/wellknown"
)

// RedisStore persists one user's settings in a Redis hash and announces
// changes on a pub/sub channel so other daemons sharing the hash follow along.
type RedisStore struct {
	client  redis.UniversalClient
	hash    string
	channel string
	nodeID  string
	log     logr.Logger
	subs    subscribers
}

var _ Store = (*RedisStore)(nil)

type redisChange struct {
	NodeID string `json:"nodeId"`
	Key    string `json:"key"`
}

// RedisHashKey returns the hash holding a user's settings.
func RedisHashKey(user string) string {
	return fmt.Sprintf("%s:settings:%s", wellknown.AppName, user)
}

// RedisChannel returns the channel announcing changes to a user's settings.
func RedisChannel(user string) string {
	return RedisHashKey(user) + ":changed"
}

// NewRedisStore creates a store for user on an existing client.
func NewRedisStore(c redis.UniversalClient, user string, log logr.Logger) *RedisStore {
	return &RedisStore{
		client:  c,
		hash:    RedisHashKey(user),
		channel: RedisChannel(user),
		nodeID:  uuid.NewString(),
		log:     log.WithName("redis-store").WithValues("user", user),
	}
}

// GetString implements Store.
func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hget %s: %w", key, err)
	}
	return v, true, nil
}

// SetString implements Store.
func (s *RedisStore) SetString(ctx context.Context, key string, value *string) error {
	old, existed, err := s.GetString(ctx, key)
	if err != nil {
		return err
	}
	if value == nil && !existed || value != nil && existed && old == *value {
		return nil
	}

	if value == nil {
		err = s.client.HDel(ctx, s.hash, key).Err()
	} else {
		err = s.client.HSet(ctx, s.hash, key, *value).Err()
	}
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}

	s.subs.notify(key)
	s.publish(ctx, key)
	return nil
}

// Subscribe implements Store.
func (s *RedisStore) Subscribe(fn func(key string)) func() {
	return s.subs.add(fn)
}

// Watch delivers changes published by other writers until ctx is cancelled.
func (s *RedisStore) Watch(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}

	ch := pubsub.Channel()
	s.log.V(1).Info("watching settings channel", "channel", s.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("settings channel %s closed", s.channel)
			}

			var change redisChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.log.Error(err, "failed to decode settings change", "payload", msg.Payload)
				continue
			}
			if change.NodeID == s.nodeID {
				continue
			}
			s.subs.notify(change.Key)
		}
	}
}

func (s *RedisStore) publish(ctx context.Context, key string) {
	payload, err := json.Marshal(redisChange{NodeID: s.nodeID, Key: key})
	if err != nil {
		s.log.Error(err, "failed to encode settings change")
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.log.Error(err, "failed to publish settings change", "key", key)
	}
}

package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Redis is an in-memory stand-in for the redis repository. TTLs are honoured against Now.
type Redis struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
	Now     func() time.Time
}

func NewRedis() *Redis {
	return &Redis{
		values:  map[string]string{},
		expires: map[string]time.Time{},
		Now:     time.Now,
	}
}

func (r *Redis) alive(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}
	if deadline, ok := r.expires[key]; ok && !r.Now().Before(deadline) {
		delete(r.values, key)
		delete(r.expires, key)
		return false
	}
	return true
}

func (r *Redis) setLocked(key string, value interface{}, exp time.Duration) {
	r.values[key] = fmt.Sprint(value)
	if exp > 0 {
		r.expires[key] = r.Now().Add(exp)
	} else {
		delete(r.expires, key)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	delete(r.expires, key)
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(key, value, exp)
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.alive(key) {
		return "", nil
	}
	return r.values[key], nil
}

func (r *Redis) Expire(ctx context.Context, key string, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alive(key) {
		r.expires[key] = r.Now().Add(exp)
	}
	return nil
}

func (r *Redis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	if r.alive(key) {
		fmt.Sscan(r.values[key], &count)
	}
	count++
	r.setLocked(key, count, ttl)
	return count, nil
}

func (r *Redis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.alive(key) {
		return false, nil
	}
	r.setLocked(key, value, exp)
	return true, nil
}

package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	key := f.LockKey(name)
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = owner
	return true, nil
}

func (f *fakeLockStore) ReleaseLock(ctx context.Context, name string) error {
	delete(f.values, f.LockKey(name))
	return nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) LockKey(name string) string {
	return "zh:lock:" + name
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected to acquire free lock")
	}
	if _, held := store.values["zh:lock:cron"]; !held {
		t.Fatal("lock key missing after acquire")
	}

	second, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("construct second lock: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second holder should not acquire a held lock")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := store.values["zh:lock:cron"]; held {
		t.Fatal("lock key still present after release")
	}
}

func TestRedisLockReleaseIgnoresForeignOwner(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "cron", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}

	// Simulate TTL expiry and takeover by another replica.
	store.values["zh:lock:cron"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["zh:lock:cron"] != "someone-else" {
		t.Fatal("release stomped a lock held by another owner")
	}
}

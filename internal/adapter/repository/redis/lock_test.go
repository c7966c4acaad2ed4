package redis

import (
	"context"
	"testing"
	"time"
)

func TestLocker_AcquireRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	locker := NewLocker(client)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "period-end:t1:2024-02-01", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}

	ok, err = NewLocker(client).Acquire(ctx, "period-end:t1:2024-02-01", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}

	if ttl := mr.TTL(locker.prefix + "period-end:t1:2024-02-01"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	if err := locker.Release(ctx, "period-end:t1:2024-02-01"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	requireKeyGone(t, mr, locker.prefix+"period-end:t1:2024-02-01")

	ok, err = locker.Acquire(ctx, "period-end:t1:2024-02-01", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected reacquire to succeed, ok=%v err=%v", ok, err)
	}
}

func TestLocker_ReleaseKeepsForeignLock(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	first := NewLocker(client)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx, "posting:calculation:c1", time.Second); err != nil || !ok {
		t.Fatalf("acquire failed: ok=%v err=%v", ok, err)
	}

	// the lock expires and another instance takes it over
	mr.FastForward(2 * time.Second)
	second := NewLocker(client)
	if ok, err := second.Acquire(ctx, "posting:calculation:c1", time.Minute); err != nil || !ok {
		t.Fatalf("takeover failed: ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx, "posting:calculation:c1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if !mr.Exists(first.prefix + "posting:calculation:c1") {
		t.Fatalf("stale holder must not delete the new holder's lock")
	}
}

func TestLocker_ReleaseUnknownKey(t *testing.T) {
	client, _ := newTestRedisClient(t)
	defer client.Close()

	if err := NewLocker(client).Release(context.Background(), "never-acquired"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestLocker_AcquireBackendDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	if _, err := NewLocker(client).Acquire(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

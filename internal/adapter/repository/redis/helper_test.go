package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-memory Redis for one test. Both the server
// and the client are closed on cleanup.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:         mr.Addr(),
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func requireKeyGone(t *testing.T, mr *miniredis.Miniredis, key string) {
	t.Helper()
	if mr.Exists(key) {
		t.Fatalf("expected key %q to be removed", key)
	}
}

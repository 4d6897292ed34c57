package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestKeyLockerMutualExclusion(t *testing.T) {
	l := NewKeyLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Acquire(ctx, "car-1")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most 1 holder at a time, saw %d", maxSeen)
	}
}

func TestKeyLockerIndependentKeys(t *testing.T) {
	l := NewKeyLocker()
	ctx := context.Background()

	unlock1, err := l.Acquire(ctx, "car-1")
	if err != nil {
		t.Fatalf("Acquire car-1: %v", err)
	}
	defer unlock1()

	// 不同 key 不互斥。
	done := make(chan struct{})
	go func() {
		unlock2, err := l.Acquire(ctx, "car-2")
		if err != nil {
			t.Errorf("Acquire car-2: %v", err)
			return
		}
		unlock2()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("different keys must not block each other")
	}
}

func TestKeyLockerContextCancel(t *testing.T) {
	l := NewKeyLocker()

	unlock, err := l.Acquire(context.Background(), "car-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx, "car-1"); err == nil {
		t.Fatalf("expected context error while lock is held")
	}

	// 重复调用释放函数必须无害。
	unlock()
	unlock()
	unlock2, err := l.Acquire(context.Background(), "car-1")
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	unlock2()
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLocker(client, time.Second)
	ctx := context.Background()

	unlock, err := l.Acquire(ctx, "car-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// 持锁期间第二个获取方必须等到超时。
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, "car-1"); err == nil {
		t.Fatalf("expected context error while lock is held")
	}

	unlock()

	// 释放后可以立即重新获取。
	unlock2, err := l.Acquire(ctx, "car-1")
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	unlock2()

	// 释放函数只删除自己的锁。
	if mr.Exists("lock:car:car-1") {
		t.Fatalf("lock key must be released")
	}
}

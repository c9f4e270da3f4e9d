package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("voice-a", 1.0, "Hello")
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64", len(a))
	}
	if a != Key("voice-a", 1.0, "Hello") {
		t.Error("key is not deterministic")
	}
	for _, other := range []string{
		Key("voice-b", 1.0, "Hello"),
		Key("voice-a", 1.5, "Hello"),
		Key("voice-a", 1.0, "hello"),
	} {
		if other == a {
			t.Error("distinct inputs produced the same key")
		}
	}
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	d, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	key := Key("v", 1, "text")
	if _, ok, err := d.Get(ctx, key); ok || err != nil {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}

	if err := d.Put(ctx, key, []byte("mp3-data")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data, ok, err := d.Get(ctx, key)
	if err != nil || !ok || string(data) != "mp3-data" {
		t.Fatalf("Get = %q, %v, %v", data, ok, err)
	}

	files, size, err := d.Stats()
	if err != nil || files != 1 || size != int64(len("mp3-data")) {
		t.Errorf("Stats = %d, %d, %v", files, size, err)
	}

	if err := d.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := d.Get(ctx, key); ok {
		t.Error("entry survived Clear")
	}
}

func TestNewDiskStore_NoDir(t *testing.T) {
	if _, err := NewDiskStore(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	if err := s.Put(context.Background(), "k", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("Nop returned data")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	if s, err := New(ctx, Config{Type: TypeNone}); err != nil || s == nil {
		t.Errorf("none: %v", err)
	}
	if _, err := New(ctx, Config{Type: TypeDisk, Dir: t.TempDir()}); err != nil {
		t.Errorf("disk: %v", err)
	}
	if _, err := New(ctx, Config{Type: "s3"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

// Runs only against a real server: NARRATE_TEST_REDIS=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("NARRATE_TEST_REDIS")
	if addr == "" {
		t.Skip("NARRATE_TEST_REDIS not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer s.Close()

	key := Key("v", 1, time.Now().String())
	if _, ok, err := s.Get(ctx, key); ok || err != nil {
		t.Fatalf("Get missing = %v, %v", ok, err)
	}
	if err := s.Put(ctx, key, []byte("mp3")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok || string(data) != "mp3" {
		t.Errorf("Get = %q, %v, %v", data, ok, err)
	}
}

package cache

import (
	"errors"
	"fmt"
	"testing"

	"narrate/internal/speech/audio"
)

func clipOf(n int) *audio.Clip {
	return audio.NewClip(make([]byte, n), "audio/mpeg")
}

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU(0, 0)

	clip := clipOf(10)
	if err := c.Put("Hello world", clip); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get("Hello world")
	if !ok || got != clip {
		t.Fatal("Get did not return the stored clip")
	}

	// Keys are exact text, no trimming or case folding.
	if _, ok := c.Get("hello world"); ok {
		t.Error("lookup should be case sensitive")
	}
	if _, ok := c.Get("Hello world "); ok {
		t.Error("lookup should not trim whitespace")
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Bytes != 10 {
		t.Errorf("stats = %+v, want 1 entry of 10 bytes", stats)
	}
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1/2", stats.Hits, stats.Misses)
	}

	if !c.DeleteClip("Hello world", clip) {
		t.Fatal("DeleteClip removed nothing")
	}
	if c.Contains("Hello world") {
		t.Error("entry still present after DeleteClip")
	}
	if !clip.Released() {
		t.Error("deleted clip was not released")
	}
}

func TestLRU_EntryLimitEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(3, 0)

	clips := make([]*audio.Clip, 4)
	for i := 0; i < 3; i++ {
		clips[i] = clipOf(5)
		if err := c.Put(fmt.Sprintf("text-%d", i), clips[i]); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// Touch text-0 so text-1 becomes the oldest.
	c.Get("text-0")

	clips[3] = clipOf(5)
	c.Put("text-3", clips[3])

	if c.Contains("text-1") {
		t.Error("text-1 should have been evicted")
	}
	if !clips[1].Released() {
		t.Error("evicted clip was not released")
	}
	for _, key := range []string{"text-0", "text-2", "text-3"} {
		if !c.Contains(key) {
			t.Errorf("%s should still be cached", key)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestLRU_ByteLimit(t *testing.T) {
	c := NewLRU(0, 100)

	c.Put("a", clipOf(40))
	c.Put("b", clipOf(40))
	c.Put("c", clipOf(40))

	if c.Contains("a") {
		t.Error("a should have been evicted to stay under the byte limit")
	}
	if got := c.Stats().Bytes; got != 80 {
		t.Errorf("bytes = %d, want 80", got)
	}

	if err := c.Put("huge", clipOf(101)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Put(huge) = %v, want ErrTooLarge", err)
	}
}

func TestLRU_ReplaceReleasesPrevious(t *testing.T) {
	c := NewLRU(0, 0)

	old := clipOf(10)
	c.Put("same", old)
	fresh := clipOf(20)
	c.Put("same", fresh)

	if !old.Released() {
		t.Error("replaced clip was not released")
	}
	if c.Len() != 1 || c.Stats().Bytes != 20 {
		t.Errorf("len=%d bytes=%d, want 1/20", c.Len(), c.Stats().Bytes)
	}

	// Re-putting the same clip must not release it.
	c.Put("same", fresh)
	if fresh.Released() {
		t.Error("re-put clip was released")
	}
}

func TestLRU_DeleteClipKeepsReplacement(t *testing.T) {
	c := NewLRU(0, 0)

	stale := clipOf(10)
	c.Put("text", stale)
	fresh := clipOf(12)
	c.Put("text", fresh)

	if c.DeleteClip("text", stale) {
		t.Error("DeleteClip removed an entry holding a different clip")
	}
	if !c.Contains("text") || fresh.Released() {
		t.Error("replacement clip was dropped")
	}
	if c.DeleteClip("missing", fresh) {
		t.Error("DeleteClip reported removal of a missing key")
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU(0, 0)
	a, b := clipOf(1), clipOf(2)
	c.Put("a", a)
	c.Put("b", b)

	c.Clear()
	if c.Len() != 0 || c.Stats().Bytes != 0 {
		t.Error("cache not empty after Clear")
	}
	if !a.Released() || !b.Released() {
		t.Error("Clear did not release clips")
	}
}

func TestKey(t *testing.T) {
	if Key("x") == Key("x ") {
		t.Error("keys for different text must differ")
	}
	if len(Key("")) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(Key("")))
	}
}

func TestStats_HitRate(t *testing.T) {
	if (Stats{}).HitRate() != 0 {
		t.Error("empty hit rate should be zero")
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Errorf("HitRate = %v, want 0.75", got)
	}
}

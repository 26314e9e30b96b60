package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLLMCache_SaveGet(t *testing.T) {
	tmp := t.TempDir()
	c := &LLMCache{Dir: tmp}
	key := KeyFrom("model", "prompt")
	data := []byte(`{"text":"<p>x</p>"}`)
	if err := c.Save(context.Background(), key, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if string(got) != string(data) {
		t.Fatalf("mismatch")
	}
}

func TestLLMCache_TextRoundTripIsKeyedByModel(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	ctx := context.Background()
	if err := c.SaveText(ctx, "m1", "prompt", "answer"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, ok := c.GetText(ctx, "m1", "prompt"); !ok || got != "answer" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := c.GetText(ctx, "m2", "prompt"); ok {
		t.Fatalf("different model must miss")
	}
}

func TestLLMCache_Unconfigured(t *testing.T) {
	var c *LLMCache
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error for nil cache")
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &LLMCache{Dir: dir}
	ctx := context.Background()
	_ = c.SaveText(ctx, "m", "old", "1")
	_ = c.SaveText(ctx, "m", "new", "2")
	old := filepath.Join(dir, KeyFrom("m", "old")+".json")
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("removed=%d err=%v", removed, err)
	}
	if _, ok := c.GetText(ctx, "m", "new"); !ok {
		t.Fatalf("fresh entry must survive")
	}
	if n, _ := PurgeByAge(filepath.Join(dir, "missing"), time.Hour); n != 0 {
		t.Fatalf("missing dir purges nothing")
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := &LLMCache{Dir: dir}
	_ = c.SaveText(context.Background(), "m", "p", "x")
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(entries), err)
	}
	if err := ClearDir(" "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}

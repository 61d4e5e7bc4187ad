package driver

import (
	"crypto/sha256"
	"testing"
)

func testCache(t *testing.T) *DiskCache {
	t.Helper()
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	return c
}

func TestDiskCachePutGet(t *testing.T) {
	c := testCache(t)
	key := sha256.Sum256([]byte("function f() {}\n"))
	in := CachePayload{
		Schema:  cacheSchemaVersion,
		Path:    "src/f.rf",
		Output:  "function f() {\n}\n",
		Lowered: 1,
	}
	if err := c.Put(key, &in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out CachePayload
	hit, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("stored key missed")
	}
	if out != in {
		t.Errorf("payload round-trip: got %+v, want %+v", out, in)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	c := testCache(t)
	var out CachePayload
	hit, err := c.Get(sha256.Sum256([]byte("absent")), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("hit for a key never stored")
	}
}

func TestDiskCacheSchemaMismatchIsMiss(t *testing.T) {
	c := testCache(t)
	key := sha256.Sum256([]byte("stale"))
	in := CachePayload{Schema: cacheSchemaVersion + 1, Output: "old format"}
	if err := c.Put(key, &in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out CachePayload
	hit, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("payload with foreign schema version treated as a hit")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	c := testCache(t)
	key := sha256.Sum256([]byte("doomed"))
	if err := c.Put(key, &CachePayload{Schema: cacheSchemaVersion, Output: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	var out CachePayload
	hit, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("Get after DropAll: %v", err)
	}
	if hit {
		t.Error("entry survived DropAll")
	}
}

func TestDiskCacheNilReceiver(t *testing.T) {
	var c *DiskCache
	key := sha256.Sum256([]byte("whatever"))
	if err := c.Put(key, &CachePayload{}); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	var out CachePayload
	hit, err := c.Get(key, &out)
	if err != nil || hit {
		t.Errorf("nil Get = (%v, %v), want miss", hit, err)
	}
	if err := c.DropAll(); err != nil {
		t.Errorf("nil DropAll: %v", err)
	}
}

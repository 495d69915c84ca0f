package cache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKeyIsStableAndDistinguishesInputs(t *testing.T) {
	a := Key("y = x", "512x512")
	b := Key("y = x", "512x512")
	if a != b {
		t.Fatalf("Key is not deterministic: %q != %q", a, b)
	}
	if Key("y = x", "256x256") == a {
		t.Errorf("different config fingerprints produced the same key")
	}
	if Key("y = -x", "512x512") == a {
		t.Errorf("different relation text produced the same key")
	}
}

func TestProgramRoundTrip(t *testing.T) {
	c := openTestCache(t)
	key := Key("y = x", "512x512")

	if _, ok, err := c.GetProgramDisassembly(key); err != nil || ok {
		t.Fatalf("expected a miss before any Put, got ok=%v err=%v", ok, err)
	}
	if err := c.PutProgram(key, "y = x", "mode=cartesian\n0: input_x -> s0\n"); err != nil {
		t.Fatalf("PutProgram: %v", err)
	}
	got, ok, err := c.GetProgramDisassembly(key)
	if err != nil || !ok {
		t.Fatalf("GetProgramDisassembly: ok=%v err=%v", ok, err)
	}
	if got != "mode=cartesian\n0: input_x -> s0\n" {
		t.Errorf("GetProgramDisassembly = %q", got)
	}

	// a second Put with the same key overwrites rather than erroring.
	if err := c.PutProgram(key, "y = x", "mode=cartesian\n0: input_x -> s1\n"); err != nil {
		t.Fatalf("PutProgram (overwrite): %v", err)
	}
	got, _, _ = c.GetProgramDisassembly(key)
	if got != "mode=cartesian\n0: input_x -> s1\n" {
		t.Errorf("GetProgramDisassembly after overwrite = %q", got)
	}
}

func TestIncompleteImageIsNeverReturnedAsAHit(t *testing.T) {
	c := openTestCache(t)
	key := Key("y = x", "512x512")

	if err := c.PutImage(key, []byte("partial-png-bytes"), false); err != nil {
		t.Fatalf("PutImage: %v", err)
	}
	if _, ok, err := c.GetImage(key); err != nil || ok {
		t.Fatalf("expected an incomplete snapshot to miss, got ok=%v err=%v", ok, err)
	}

	if err := c.PutImage(key, []byte("final-png-bytes"), true); err != nil {
		t.Fatalf("PutImage (complete): %v", err)
	}
	png, ok, err := c.GetImage(key)
	if err != nil || !ok {
		t.Fatalf("GetImage: ok=%v err=%v", ok, err)
	}
	if string(png) != "final-png-bytes" {
		t.Errorf("GetImage = %q", png)
	}
}

func TestGetImageMissForUnknownKey(t *testing.T) {
	c := openTestCache(t)
	if _, ok, err := c.GetImage("nonexistent"); err != nil || ok {
		t.Fatalf("expected a miss for an unknown key, got ok=%v err=%v", ok, err)
	}
}

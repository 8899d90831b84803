package store

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// kvFactories lets every contract test run against both implementations.
func kvFactories(t *testing.T) map[string]func(t *testing.T) KV {
	t.Helper()
	return map[string]func(t *testing.T) KV{
		"mem": func(t *testing.T) KV {
			t.Helper()
			return NewMem()
		},
		"file": func(t *testing.T) KV {
			t.Helper()
			kv, err := NewFile(t.TempDir())
			if err != nil {
				t.Fatalf("NewFile: %v", err)
			}
			return kv
		},
	}
}

func TestKVRoundTrip(t *testing.T) {
	for name, factory := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := factory(t)

			if _, ok, err := kv.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
			}

			if err := kv.Set("lastSessionId", "1700000000000"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := kv.Get("lastSessionId")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !ok || v != "1700000000000" {
				t.Errorf("Get = %q ok=%v, want %q", v, ok, "1700000000000")
			}

			// Overwrite replaces the prior value.
			if err := kv.Set("lastSessionId", "1700000000001"); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			v, _, _ = kv.Get("lastSessionId")
			if v != "1700000000001" {
				t.Errorf("Get after overwrite = %q, want %q", v, "1700000000001")
			}
		})
	}
}

func TestKVRemove(t *testing.T) {
	for name, factory := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := factory(t)

			if err := kv.Set("messages_1", `[]`); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Remove("messages_1"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, ok, _ := kv.Get("messages_1"); ok {
				t.Error("key still present after Remove")
			}

			// Removing an absent key is not an error.
			if err := kv.Remove("messages_1"); err != nil {
				t.Errorf("Remove(absent) = %v, want nil", err)
			}
		})
	}
}

func TestKVClear(t *testing.T) {
	for name, factory := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := factory(t)

			keys := []string{"lastSessionId", "messages_1", "messages_2"}
			for _, k := range keys {
				if err := kv.Set(k, "x"); err != nil {
					t.Fatalf("Set(%q): %v", k, err)
				}
			}
			if err := kv.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			for _, k := range keys {
				if _, ok, _ := kv.Get(k); ok {
					t.Errorf("key %q survived Clear", k)
				}
			}
		})
	}
}

func TestKVInvalidKey(t *testing.T) {
	for name, factory := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := factory(t)

			for _, key := range []string{"", "a/b", "..", "a b", "híd"} {
				if err := kv.Set(key, "x"); err == nil {
					t.Errorf("Set(%q) accepted invalid key", key)
				}
				if _, _, err := kv.Get(key); err == nil {
					t.Errorf("Get(%q) accepted invalid key", key)
				}
			}
		})
	}
}

func TestFileAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if err := kv.Set("messages_9", `[{"sender":"u","text":"hi"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "messages_9" && e.Name() != lockFile {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestFileClearKeepsLock(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := kv.Set("lastSessionId", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, lockFile)); err != nil {
		t.Errorf("lock file removed by Clear: %v", err)
	}
	// The store remains usable after Clear.
	if err := kv.Set("lastSessionId", "2"); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := kv.Set("lastSessionId", "42"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile reopen: %v", err)
	}
	v, ok, err := reopened.Get("lastSessionId")
	if err != nil || !ok || v != "42" {
		t.Errorf("Get after reopen = %q ok=%v err=%v, want 42", v, ok, err)
	}
}

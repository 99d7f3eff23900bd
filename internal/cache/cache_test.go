package cache

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Error("Get() reported a hit on an empty store")
	}

	if err := store.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}

	value, ok := store.Get(ctx, "key")
	if !ok {
		t.Fatal("Get() missed a stored key")
	}
	if value != "value" {
		t.Errorf("Get() = %q, expected %q", value, "value")
	}

	// Overwrites replace the stored value.
	if err := store.Set(ctx, "key", "updated"); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if value, _ := store.Get(ctx, "key"); value != "updated" {
		t.Errorf("Get() after overwrite = %q, expected %q", value, "updated")
	}
}

func TestKey(t *testing.T) {
	type request struct {
		Principal  float64
		TermMonths int
	}

	first, err := Key("schedule", request{Principal: 1500000, TermMonths: 18})
	if err != nil {
		t.Fatalf("Key() returned error: %v", err)
	}
	second, err := Key("schedule", request{Principal: 1500000, TermMonths: 18})
	if err != nil {
		t.Fatalf("Key() returned error: %v", err)
	}
	if first != second {
		t.Errorf("identical requests produced different keys: %q vs %q", first, second)
	}

	different, err := Key("schedule", request{Principal: 1500000, TermMonths: 19})
	if err != nil {
		t.Fatalf("Key() returned error: %v", err)
	}
	if first == different {
		t.Error("different requests produced the same key")
	}

	otherPrefix, err := Key("optimize", request{Principal: 1500000, TermMonths: 18})
	if err != nil {
		t.Fatalf("Key() returned error: %v", err)
	}
	if first == otherPrefix {
		t.Error("different prefixes produced the same key")
	}

	if _, err := Key("schedule", func() {}); err == nil {
		t.Error("Key() accepted an unmarshalable request")
	}
}

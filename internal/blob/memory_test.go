package blob

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestMemoryStoreSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.Put(ctx, "a.npy", bytes.NewReader([]byte("one")), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := m.Put(ctx, "a.npy", bytes.NewReader([]byte("two")), PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := m.Get(ctx, "a.npy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "two" {
		t.Fatalf("content %q", b)
	}
	if _, _, err := m.Get(ctx, "nope"); err == nil {
		t.Fatal("missing key succeeded")
	}

	if _, err := m.Put(ctx, "b.npy", bytes.NewReader(nil), PutOptions{}); err != nil {
		t.Fatal(err)
	}
	infos, err := m.List(ctx, "")
	if err != nil || len(infos) != 2 {
		t.Fatalf("list: %v %v", infos, err)
	}
	if infos[0].Key != "a.npy" || infos[1].Key != "b.npy" {
		t.Fatalf("list not ordered: %+v", infos)
	}

	existed, _ := m.Delete(ctx, "a.npy")
	if !existed {
		t.Fatal("delete reported missing")
	}
	if _, err := m.Head(ctx, "a.npy"); err == nil {
		t.Fatal("head after delete succeeded")
	}
}

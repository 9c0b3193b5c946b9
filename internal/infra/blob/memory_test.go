package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

var _ Store = (*MemoryStore)(nil)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	info, err := store.Put(ctx, "runs/demo/report.json", strings.NewReader("payload"), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"run": "demo"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "runs/demo/report.json", strings.NewReader("other"), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}

	got, rc, err := store.Get(ctx, "runs/demo/report.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "payload" {
		t.Fatalf("payload = %q", data)
	}
	if got.Metadata["run"] != "demo" {
		t.Fatalf("metadata = %+v", got.Metadata)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected head of missing key to fail")
	}
}

func TestMemoryGetReturnsCopies(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("abc"), PutOptions{Metadata: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, _, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	info.Metadata["a"] = "mutated"
	again, err := store.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if again.Metadata["a"] != "1" {
		t.Fatalf("stored metadata was mutated through a returned copy")
	}
}

func TestMemoryDeleteAndList(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for _, key := range []string{"runs/b", "runs/a", "other"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "runs/a" || infos[1].Key != "runs/b" {
		t.Fatalf("list = %+v", infos)
	}

	ok, err := store.Delete(ctx, "runs/a")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, err = store.Delete(ctx, "runs/a")
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v; want false, nil", ok, err)
	}
}

func TestMemoryPresignUnsupported(t *testing.T) {
	store := NewMemory()
	if _, err := store.PresignURL(context.Background(), "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("presign error = %v, want ErrUnsupported", err)
	}
}

package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var _ Store = (*FilesystemStore)(nil)

func newFSStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return store
}

func TestFilesystemRoundTrip(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	payload := []byte(`{"run_id":"demo","final_population":12}`)
	info, err := store.Put(ctx, "runs/demo/report.json", bytes.NewReader(payload), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"phenotype": "Ki67 Basic"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "runs/demo/report.json" || info.Size != int64(len(payload)) {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ETag == "" {
		t.Fatalf("expected a content etag")
	}

	got, rc, err := store.Get(ctx, "runs/demo/report.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("payload mismatch: %q", data)
	}
	if got.ETag != info.ETag || got.Metadata["phenotype"] != "Ki67 Basic" {
		t.Fatalf("metadata mismatch: %+v", got)
	}

	head, err := store.Head(ctx, "runs/demo/report.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != info.Size || head.ContentType != "application/json" {
		t.Fatalf("head mismatch: %+v", head)
	}
}

func TestFilesystemPutIsCreateOnly(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "report.json", strings.NewReader("one"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "report.json", strings.NewReader("two"), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}
}

func TestFilesystemRejectsUnsafeKeys(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/abs/path", "../escape", "runs/../../etc/passwd"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected put %q to fail", key)
		}
	}
}

func TestFilesystemDelete(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "runs/a", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.Delete(ctx, "runs/a")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v; want true, nil", ok, err)
	}
	ok, err = store.Delete(ctx, "runs/a")
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v; want false, nil", ok, err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "runs", "a.meta")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("sidecar survived delete")
	}
}

func TestFilesystemListSortedWithPrefix(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	for _, key := range []string{"runs/b/report.json", "runs/a/report.json", "other/series.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("list returned %d infos, want 2", len(infos))
	}
	if infos[0].Key != "runs/a/report.json" || infos[1].Key != "runs/b/report.json" {
		t.Fatalf("list not sorted: %+v", infos)
	}
}

func TestFilesystemPresignURL(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()
	url, err := store.PresignURL(ctx, "runs/a/report.json", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url != "http://local.blob/runs/a/report.json" {
		t.Fatalf("url = %q", url)
	}
	if _, err := store.PresignURL(ctx, "runs/a/report.json", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("PUT presign error = %v, want ErrUnsupported", err)
	}
}

func TestNewFilesystemDefaultsRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := NewFilesystem("")
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	if store.Root() != defaultFSRoot {
		t.Fatalf("root = %q, want %q", store.Root(), defaultFSRoot)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %q", store.Driver())
	}
}

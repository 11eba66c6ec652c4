package blob

import (
	"bytes"
	"os"
	"testing"

	cryptoutil "peopleops/internal/platform/crypto"
)

func newTestStore(t *testing.T, key string) *Store {
	t.Helper()
	crypto, err := cryptoutil.New(key)
	if err != nil {
		t.Fatalf("crypto init failed: %v", err)
	}
	store, err := NewStore(t.TempDir(), crypto)
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t, "")

	data := []byte("offer letter contents")
	fileID, err := store.Put(data, Metadata{FileName: "offer.pdf", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if fileID == "" {
		t.Fatal("expected non-empty file id")
	}

	got, meta, err := store.Get(fileID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("payload mismatch: got %q", got)
	}
	if meta.FileName != "offer.pdf" || meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), meta.Size)
	}
}

func TestEncryptedAtRest(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	store := newTestStore(t, key)

	data := []byte("sensitive contract")
	fileID, err := store.Put(data, Metadata{FileName: "contract.pdf", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	raw, err := os.ReadFile(store.dataPath(fileID))
	if err != nil {
		t.Fatalf("raw read failed: %v", err)
	}
	if bytes.Contains(raw, data) {
		t.Fatal("payload stored in plaintext despite encryption key")
	}

	got, meta, err := store.Get(fileID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !meta.Encrypted {
		t.Fatal("expected encrypted metadata flag")
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("decrypt mismatch: got %q", got)
	}
}

func TestDeleteThenGet(t *testing.T) {
	store := newTestStore(t, "")

	fileID, err := store.Put([]byte("x"), Metadata{FileName: "x.txt", ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Delete(fileID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := store.Get(fileID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Deleting again is a no-op.
	if err := store.Delete(fileID); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

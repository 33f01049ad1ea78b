package securestore

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// storeContract exercises the behavior every Store must share
func storeContract(t *testing.T, db Store) {
	t.Helper()
	ctx := context.Background()

	if err := db.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close(ctx)

	if _, err := db.Get(ctx, []byte("missing")); err == nil {
		t.Error("Get of a missing key succeeded")
	}
	if err := db.Delete(ctx, []byte("missing")); err != nil {
		t.Errorf("Delete of a missing key failed: %v", err)
	}

	if err := db.Put(ctx, []byte{0x00, 0xff}, []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := db.Get(ctx, []byte{0x00, 0xff})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	if err := db.Put(ctx, []byte{0x00, 0xff}, []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = db.Get(ctx, []byte{0x00, 0xff})
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("Get after overwrite = %q, want %q", got, "v2")
	}

	err = db.Batch(ctx, []BatchOp{
		{Type: OpPut, Key: []byte("a"), Value: []byte("1")},
		{Type: OpPut, Key: []byte("b"), Value: []byte("2")},
		{Type: OpDelete, Key: []byte{0x00, 0xff}},
		{Type: OpPut, Key: []byte("a"), Value: []byte("3")},
	})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}

	got, _ = db.Get(ctx, []byte("a"))
	if !bytes.Equal(got, []byte("3")) {
		t.Errorf("Get(a) = %q, want the later batch write", got)
	}
	if _, err := db.Get(ctx, []byte{0x00, 0xff}); err == nil {
		t.Error("record deleted in batch is still present")
	}
}

func TestMemStore_Contract(t *testing.T) {
	storeContract(t, NewMemStore())
}

func TestMemStore_NotFound(t *testing.T) {
	m := NewMemStore()
	if _, err := m.Get(context.Background(), []byte("k")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	v := []byte("value")
	m.Put(ctx, []byte("k"), v)
	v[0] = 'X'

	got, _ := m.Get(ctx, []byte("k"))
	if string(got) != "value" {
		t.Errorf("stored value changed with the caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := m.Get(ctx, []byte("k"))
	if string(again) != "value" {
		t.Errorf("stored value changed with the returned slice: %q", again)
	}
}

func TestMemStore_BatchRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	err := m.Batch(ctx, []BatchOp{
		{Type: OpPut, Key: []byte("a"), Value: []byte("1")},
		{Type: OpType(0), Key: []byte("b")},
	})
	if !errors.Is(err, ErrUnsupportedOpType) {
		t.Errorf("Batch error = %v, want ErrUnsupportedOpType", err)
	}
	if m.Len() != 0 {
		t.Errorf("MemStore applied a partial batch: %d records", m.Len())
	}
}

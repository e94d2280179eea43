package storage

import (
	"bytes"
	"testing"
)

func TestMemDBGetAbsentKey(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	value, err := db.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != nil {
		t.Fatalf("absent key returned %x", value)
	}
}

func TestMemDBWriteAppliesWholeBatch(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	batch := new(Batch)
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Put([]byte("a"), []byte("3"))
	if batch.Len() != 3 {
		t.Fatalf("batch len %d, want 3", batch.Len())
	}

	if err := db.Write(batch); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := db.Get([]byte("a"))
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	// Later entries win within one batch.
	if !bytes.Equal(got, []byte("3")) {
		t.Fatalf("a = %q, want 3", got)
	}
	got, err = db.Get([]byte("b"))
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if !bytes.Equal(got, []byte("2")) {
		t.Fatalf("b = %q, want 2", got)
	}
}

func TestBatchCopiesInputs(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	key := []byte("key")
	value := []byte("value")
	batch := new(Batch)
	batch.Put(key, value)
	key[0] = 'X'
	value[0] = 'X'

	if err := db.Write(batch); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Fatalf("batch aliased caller slices: %q", got)
	}
}

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type receiptDoc struct {
	StoreName   string  `json:"store_name"`
	TotalAmount float64 `json:"total_amount"`
}

func TestWriteReadOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "receipts/09419754", receiptDoc{"Ocean Basket", 524}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Last writer wins.
	if err := s.Write(ctx, "/receipts/09419754/", receiptDoc{"Ocean Basket", 530}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got receiptDoc
	if err := s.Read(ctx, "receipts/09419754", &got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.TotalAmount != 530 {
		t.Errorf("got %+v", got)
	}

	if err := s.Read(ctx, "receipts/missing", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"guests/27821234567/receipts/B", "guests/27821234567/receipts/A", "guests/2782123456/receipts/C", "receipts/A"} {
		if err := s.Write(ctx, p, true); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	docs, err := s.List(ctx, "guests/27821234567/receipts")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.Name())
		var present bool
		if err := d.Decode(&present); err != nil || !present {
			t.Errorf("%s: value %s", d.Path, d.Value)
		}
	}
	if !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("names = %v", names)
	}

	empty, err := s.List(ctx, "guests/none/receipts")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty list = (%v, %v)", empty, err)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "receipts/A", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Delete(ctx, "receipts/A"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "receipts/A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestInvalidPaths(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"", "/", "receipts//A", "receipts/../secrets", "receipts/50%", "receipts/a_b"} {
		if err := s.Write(ctx, p, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Write(%q) err = %v, want ErrInvalidPath", p, err)
		}
	}
	if err := s.Write(ctx, "receipts/A", json.RawMessage(`{broken`)); err == nil {
		t.Error("invalid raw json accepted")
	}
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/receipt"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/utils"
)

// ErrReceiptNotFound is returned by Get for an unknown key.
var ErrReceiptNotFound = errors.New("receipt not found")

const (
	receiptsRoot = "receipts"
	guestsRoot   = "guests"
)

// ReceiptRepo persists accepted receipts as documents:
//
//	receipts/{key}                    the receipt
//	guests/{phone}/receipts/{key}     true, the guest index entry
type ReceiptRepo interface {
	Save(ctx context.Context, r *receipt.AcceptedReceipt) error
	Get(ctx context.Context, key string) (*receipt.AcceptedReceipt, error)
	ListByGuest(ctx context.Context, phone string) ([]*receipt.AcceptedReceipt, error)
}

type receiptRepo struct {
	store docstore.Store
}

func NewReceiptRepo(store docstore.Store) ReceiptRepo {
	return &receiptRepo{store: store}
}

// Save writes the receipt then the guest index entry. Writing the same key
// twice replaces the earlier receipt.
func (r *receiptRepo) Save(ctx context.Context, rec *receipt.AcceptedReceipt) error {
	key := SanitizeKey(rec.ReceiptKey)
	if key == "" {
		return fmt.Errorf("receipt key is empty")
	}

	if err := r.store.Write(ctx, docstore.Join(receiptsRoot, key), rec); err != nil {
		return fmt.Errorf("write receipt %s: %w", key, err)
	}

	if err := r.store.Write(ctx, guestIndexPath(rec.GuestPhoneNumber, key), true); err != nil {
		return fmt.Errorf("write guest index %s: %w", key, err)
	}
	return nil
}

func (r *receiptRepo) Get(ctx context.Context, key string) (*receipt.AcceptedReceipt, error) {
	key = SanitizeKey(key)
	if key == "" {
		return nil, ErrReceiptNotFound
	}

	var rec receipt.AcceptedReceipt
	if err := r.store.Read(ctx, docstore.Join(receiptsRoot, key), &rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListByGuest resolves the guest index. Index entries whose receipt is gone
// are skipped. So are entries whose key was since taken over by another
// guest; those stale entries are dropped from the index.
func (r *receiptRepo) ListByGuest(ctx context.Context, phone string) ([]*receipt.AcceptedReceipt, error) {
	guest := utils.PhoneKey(phone)
	docs, err := r.store.List(ctx, docstore.Join(guestsRoot, guest, receiptsRoot))
	if err != nil {
		return nil, err
	}

	receipts := make([]*receipt.AcceptedReceipt, 0, len(docs))
	for _, d := range docs {
		rec, err := r.Get(ctx, d.Name())
		if errors.Is(err, ErrReceiptNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if utils.PhoneKey(rec.GuestPhoneNumber) != guest {
			if err := r.store.Delete(ctx, guestIndexPath(phone, d.Name())); err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return nil, fmt.Errorf("drop stale guest index %s: %w", d.Name(), err)
			}
			continue
		}
		receipts = append(receipts, rec)
	}
	return receipts, nil
}

func guestIndexPath(phone, key string) string {
	return docstore.Join(guestsRoot, utils.PhoneKey(phone), receiptsRoot, key)
}

// SanitizeKey maps a receipt key onto the characters a document path
// segment allows: letters, digits and '-'. Runs of anything else become one '-'.
func SanitizeKey(key string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestPriceAtResolvesLatestEffectiveEntry(t *testing.T) {
	db := newTestDB(t)
	product := seedProductWithPrices(t, db, "P-100", map[string]string{
		"2023-01-01": "10.00",
		"2023-06-01": "12.50",
		"2024-01-01": "15.00",
	})
	store := NewProductStore(db, nil)
	ctx := context.Background()

	ref := date(t, "2023-08-15")
	price, err := store.PriceAt(ctx, product.ID, &ref)
	if err != nil {
		t.Fatalf("PriceAt failed: %v", err)
	}
	assertDecimal(t, price, "12.50")

	// On an effective date the new price applies.
	onBoundary := date(t, "2023-06-01")
	price, err = store.PriceAt(ctx, product.ID, &onBoundary)
	if err != nil {
		t.Fatalf("PriceAt failed: %v", err)
	}
	assertDecimal(t, price, "12.50")
}

func TestPriceAtWithoutReferenceUsesLatestEntry(t *testing.T) {
	db := newTestDB(t)
	product := seedProductWithPrices(t, db, "P-100", map[string]string{
		"2023-01-01": "10.00",
		"2024-01-01": "15.00",
	})
	store := NewProductStore(db, nil)

	price, err := store.PriceAt(context.Background(), product.ID, nil)
	if err != nil {
		t.Fatalf("PriceAt failed: %v", err)
	}
	assertDecimal(t, price, "15.00")
}

func TestPriceAtBeforeFirstEntry(t *testing.T) {
	db := newTestDB(t)
	product := seedProductWithPrices(t, db, "P-100", map[string]string{
		"2023-01-01": "10.00",
	})
	store := NewProductStore(db, nil)

	ref := date(t, "2022-12-31")
	_, err := store.PriceAt(context.Background(), product.ID, &ref)
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice, got %v", err)
	}
}

func TestOriginalPrice(t *testing.T) {
	db := newTestDB(t)
	product := seedProductWithPrices(t, db, "P-100", map[string]string{
		"2023-01-01": "10.00",
		"2023-06-01": "12.50",
	})
	store := NewProductStore(db, nil)

	price, err := store.OriginalPrice(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("OriginalPrice failed: %v", err)
	}
	assertDecimal(t, price, "10.00")
}

func TestHistoryIsOrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	product := seedProductWithPrices(t, db, "P-100", map[string]string{
		"2023-06-01": "12.50",
		"2023-01-01": "10.00",
		"2024-01-01": "15.00",
	})
	store := NewProductStore(db, nil)

	history, err := store.History(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].EffectiveDate.Before(history[i-1].EffectiveDate) {
			t.Fatalf("history not ordered: %v before %v", history[i].EffectiveDate, history[i-1].EffectiveDate)
		}
	}
	assertDecimal(t, history[0].UnitPrice, "10.00")
	assertDecimal(t, history[2].UnitPrice, "15.00")
}

func TestAppendPriceRejectsUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	store := NewProductStore(db, nil)

	_, err := store.AppendPrice(context.Background(), 999, date(t, "2023-01-01"), decimal.NewFromInt(10))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPriceAtProductWithoutHistory(t *testing.T) {
	db := newTestDB(t)
	store := NewProductStore(db, nil)

	_, err := store.PriceAt(context.Background(), 42, nil)
	if !errors.Is(err, ErrNoPrice) {
		t.Fatalf("expected ErrNoPrice for product without history, got %v", err)
	}
}

package stock

import (
	"errors"
	"testing"

	"maintdesk/domain/shared"
)

var storekeeper = shared.Actor{ID: "lead-1", Role: shared.RoleTechnicianLead}

func accessoryWithStock(t *testing.T, quantity int) *Accessory {
	t.Helper()
	a, err := NewAccessory("pipe section", "piece", *shared.NewMoney(10, shared.DefaultCurrency))
	if err != nil {
		t.Fatalf("NewAccessory: %v", err)
	}
	if quantity > 0 {
		if _, err := a.Import(quantity, *shared.NewMoney(10, shared.DefaultCurrency), storekeeper, ""); err != nil {
			t.Fatalf("seed import: %v", err)
		}
	}
	return a
}

func TestImportThenExportRunningSum(t *testing.T) {
	a := accessoryWithStock(t, 5)
	if a.Quantity() != 5 {
		t.Fatalf("quantity = %d, want 5", a.Quantity())
	}

	tx, err := a.Export(3, storekeeper, "invoice-1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Quantity() != 2 {
		t.Errorf("quantity = %d, want 2", a.Quantity())
	}
	if tx.Direction() != DirectionExport || tx.Status() != TransactionStatusApproved {
		t.Errorf("ledger row = %s/%s, want export/approved", tx.Direction(), tx.Status())
	}
	if tx.InvoiceID() != "invoice-1" {
		t.Errorf("invoice link = %q, want invoice-1", tx.InvoiceID())
	}
	if tx.Total().Amount() != 30 {
		t.Errorf("ledger total = %d, want 30", tx.Total().Amount())
	}
}

func TestExportBeyondStockFails(t *testing.T) {
	a := accessoryWithStock(t, 2)

	_, err := a.Export(5, storekeeper, "invoice-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if a.Quantity() != 2 {
		t.Errorf("failed export must not change quantity, got %d", a.Quantity())
	}
}

func TestExactDepletionIsAllowed(t *testing.T) {
	a := accessoryWithStock(t, 3)
	if _, err := a.Export(3, storekeeper, ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Quantity() != 0 {
		t.Errorf("quantity = %d, want 0", a.Quantity())
	}
	if _, err := a.Export(1, storekeeper, ""); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("export from empty: err = %v, want ErrInsufficientStock", err)
	}
}

func TestNonPositiveQuantitiesRejected(t *testing.T) {
	a := accessoryWithStock(t, 5)
	if _, err := a.Export(0, storekeeper, ""); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("zero export: err = %v, want ErrInvalidInput", err)
	}
	if _, err := a.Import(-1, *shared.NewMoney(10, shared.DefaultCurrency), storekeeper, ""); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("negative import: err = %v, want ErrInvalidInput", err)
	}
}

func TestRebuildPreservesQuantityAndVersion(t *testing.T) {
	a := RebuildAccessory(AccessoryReconstructionDTO{
		ID:        "acc-1",
		Name:      "valve",
		Unit:      "piece",
		UnitPrice: *shared.NewMoney(50, shared.DefaultCurrency),
		Quantity:  7,
		Version:   4,
	})
	if a.IsNew() {
		t.Error("rebuilt accessory must not be new")
	}
	if a.Quantity() != 7 || a.Version() != 4 {
		t.Errorf("quantity/version = %d/%d, want 7/4", a.Quantity(), a.Version())
	}
	if _, err := a.Export(7, storekeeper, ""); err != nil {
		t.Errorf("export rebuilt stock: %v", err)
	}
}

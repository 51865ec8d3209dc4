package stock

import (
	"context"
	"errors"
	"testing"

	"maintdesk/domain/stock"
	"maintdesk/infrastructure/persistence/mocks"
)

type testEnv struct {
	service       *ApplicationService
	accessoryRepo *mocks.MockAccessoryRepository
	stockTxRepo   *mocks.MockStockTransactionRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	accessoryRepo := mocks.NewMockAccessoryRepository()
	stockTxRepo := mocks.NewMockStockTransactionRepository()
	service := NewApplicationService(accessoryRepo, stockTxRepo, mocks.NewMockUnitOfWorkFactory())

	return &testEnv{
		service:       service,
		accessoryRepo: accessoryRepo,
		stockTxRepo:   stockTxRepo,
	}
}

var managerClaims = ActorClaims{ActorID: "mgr-1", ActorRole: "MANAGER"}

func TestCreateAccessoryStartsEmpty(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.service.CreateAccessory(context.Background(), CreateAccessoryCommand{
		Name:      "PVC elbow",
		Unit:      "piece",
		UnitPrice: 12,
		Currency:  "VND",
	})
	if err != nil {
		t.Fatalf("CreateAccessory() error = %v", err)
	}
	if resp.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", resp.Quantity)
	}
	if resp.UnitPrice.Amount != 12 {
		t.Errorf("unit price = %d, want 12", resp.UnitPrice.Amount)
	}
}

func TestAdjustImportThenExportConservesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.service.CreateAccessory(ctx, CreateAccessoryCommand{
		Name: "PVC elbow", Unit: "piece", UnitPrice: 12, Currency: "VND",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	imported, err := env.service.AdjustStock(ctx, AdjustStockCommand{
		AccessoryID: created.ID,
		Direction:   "IMPORT",
		Quantity:    10,
		ActorClaims: managerClaims,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Quantity != 10 {
		t.Errorf("quantity after import = %d, want 10", imported.Quantity)
	}

	exported, err := env.service.AdjustStock(ctx, AdjustStockCommand{
		AccessoryID: created.ID,
		Direction:   "EXPORT",
		Quantity:    4,
		ActorClaims: managerClaims,
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Quantity != 6 {
		t.Errorf("quantity after export = %d, want 6", exported.Quantity)
	}

	movements, err := env.service.GetMovements(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMovements() error = %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(movements))
	}
	if movements[0].Direction != string(stock.DirectionImport) || movements[1].Direction != string(stock.DirectionExport) {
		t.Errorf("movement order = %s, %s; want IMPORT then EXPORT", movements[0].Direction, movements[1].Direction)
	}

	// Balance of approved movements must equal the on-hand quantity.
	balance := 0
	for _, m := range movements {
		switch stock.Direction(m.Direction) {
		case stock.DirectionImport:
			balance += m.Quantity
		case stock.DirectionExport:
			balance -= m.Quantity
		}
	}
	if balance != exported.Quantity {
		t.Errorf("ledger balance = %d, on-hand = %d", balance, exported.Quantity)
	}
}

func TestAdjustExportRejectsShortfall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.accessoryRepo.Seed("PVC elbow", "piece", 12, 3)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = env.service.AdjustStock(ctx, AdjustStockCommand{
		AccessoryID: id,
		Direction:   "EXPORT",
		Quantity:    5,
		ActorClaims: managerClaims,
	})
	if !errors.Is(err, stock.ErrInsufficientStock) {
		t.Errorf("error = %v, want ErrInsufficientStock", err)
	}
	if got := env.accessoryRepo.Quantity(id); got != 3 {
		t.Errorf("quantity = %d, want 3 untouched", got)
	}
}

func TestAdjustImportAtNewPriceRepricesMovementOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.accessoryRepo.Seed("PVC elbow", "piece", 12, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	price := int64(15)
	if _, err := env.service.AdjustStock(ctx, AdjustStockCommand{
		AccessoryID: id,
		Direction:   "IMPORT",
		Quantity:    2,
		UnitPrice:   &price,
		Currency:    "VND",
		ActorClaims: managerClaims,
	}); err != nil {
		t.Fatalf("import: %v", err)
	}

	movements, err := env.service.GetMovements(ctx, id)
	if err != nil || len(movements) != 1 {
		t.Fatalf("movements = %v (err %v), want one", movements, err)
	}
	if movements[0].UnitPrice.Amount != 15 || movements[0].Total.Amount != 30 {
		t.Errorf("movement priced %d/%d, want 15/30", movements[0].UnitPrice.Amount, movements[0].Total.Amount)
	}

	// The catalogue price is a separate fact; imports do not reprice it.
	acc, err := env.service.GetAccessory(ctx, id)
	if err != nil {
		t.Fatalf("get accessory: %v", err)
	}
	if acc.UnitPrice.Amount != 12 {
		t.Errorf("catalogue price = %d, want 12", acc.UnitPrice.Amount)
	}
}

func TestUpdateAccessoryReprices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.accessoryRepo.Seed("PVC elbow", "piece", 12, 0)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	price := int64(20)
	resp, err := env.service.UpdateAccessory(ctx, UpdateAccessoryCommand{
		AccessoryID: id,
		Name:        "PVC elbow 90deg",
		Unit:        "piece",
		UnitPrice:   &price,
		Currency:    "VND",
	})
	if err != nil {
		t.Fatalf("UpdateAccessory() error = %v", err)
	}
	if resp.Name != "PVC elbow 90deg" || resp.UnitPrice.Amount != 20 {
		t.Errorf("accessory = %+v, want renamed and repriced", resp)
	}
}

func TestListAccessoriesSortedByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Washer", "Elbow", "Tap"} {
		if _, err := env.accessoryRepo.Seed(name, "piece", 5, 1); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	listed, err := env.service.ListAccessories(ctx)
	if err != nil {
		t.Fatalf("ListAccessories() error = %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed = %d, want 3", len(listed))
	}
	for i, want := range []string{"Elbow", "Tap", "Washer"} {
		if listed[i].Name != want {
			t.Errorf("listed[%d] = %s, want %s", i, listed[i].Name, want)
		}
	}
}

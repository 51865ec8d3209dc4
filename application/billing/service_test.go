package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"maintdesk/domain/billing"
	"maintdesk/domain/report"
	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
	"maintdesk/infrastructure/persistence/mocks"
	"maintdesk/infrastructure/persistence/retry"
)

type stubReconciler struct {
	calls []string
	err   error
}

func (r *stubReconciler) ReconcileRequest(ctx context.Context, requestID string) (bool, error) {
	r.calls = append(r.calls, requestID)
	if r.err != nil {
		return false, r.err
	}
	return true, nil
}

type testEnv struct {
	service         *ApplicationService
	invoiceRepo     *mocks.MockInvoiceRepository
	transactionRepo *mocks.MockTransactionRepository
	reportRepo      *mocks.MockReportRepository
	accessoryRepo   *mocks.MockAccessoryRepository
	stockTxRepo     *mocks.MockStockTransactionRepository
	reconciler      *stubReconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	invoiceRepo := mocks.NewMockInvoiceRepository()
	transactionRepo := mocks.NewMockTransactionRepository()
	reportRepo := mocks.NewMockReportRepository()
	requestRepo := mocks.NewMockRequestRepository()
	accessoryRepo := mocks.NewMockAccessoryRepository()
	stockTxRepo := mocks.NewMockStockTransactionRepository()
	reconciler := &stubReconciler{}

	service := NewApplicationService(invoiceRepo, transactionRepo, reportRepo, requestRepo,
		accessoryRepo, stockTxRepo, reconciler, mocks.NewMockUnitOfWorkFactory())

	return &testEnv{
		service:         service,
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		reportRepo:      reportRepo,
		accessoryRepo:   accessoryRepo,
		stockTxRepo:     stockTxRepo,
		reconciler:      reconciler,
	}
}

var leadClaims = ActorClaims{ActorID: "lead-1", ActorRole: "TECHNICIAN_LEAD"}

// seedDraft plants a draft invoice against a non-resident-facing repair
// report. finalized controls whether the report's approval chain has
// already run to completion.
func seedDraft(t *testing.T, env *testEnv, chargeable, finalized bool) *billing.Invoice {
	t.Helper()
	ctx := context.Background()

	rep, err := report.SubmitRepair("appt-1", "req-1", "tech-1", "work done", false)
	if err != nil {
		t.Fatalf("submit report: %v", err)
	}
	if finalized {
		approvers := []shared.Actor{
			{ID: "lead-1", Role: shared.RoleTechnicianLead},
			{ID: "mgr-1", Role: shared.RoleManager},
		}
		for _, approver := range approvers {
			if err := rep.RecordApproval(approver, report.DecisionApproved, ""); err != nil {
				t.Fatalf("approve report: %v", err)
			}
		}
	}
	if err := env.reportRepo.Save(ctx, rep); err != nil {
		t.Fatalf("save report: %v", err)
	}

	inv, err := billing.NewDraft("req-1", rep.ID(), chargeable, billing.InvoiceTypeInternalRepair)
	if err != nil {
		t.Fatalf("draft invoice: %v", err)
	}
	if err := env.invoiceRepo.Save(ctx, inv); err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	return inv
}

func TestAddAccessoryLinePricesFromCatalogue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 6)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}

	resp, err := env.service.AddAccessoryLine(ctx, AddAccessoryLineCommand{
		InvoiceID:   inv.ID(),
		AccessoryID: valve,
		Name:        "ignored free-form name",
		Quantity:    3,
		UnitPrice:   999,
		Currency:    "VND",
		Source:      "FROM_STOCK",
	})
	if err != nil {
		t.Fatalf("AddAccessoryLine() error = %v", err)
	}

	if len(resp.AccessoryLines) != 1 {
		t.Fatalf("lines = %d, want 1", len(resp.AccessoryLines))
	}
	line := resp.AccessoryLines[0]
	if line.Name != "Shutoff valve" || line.UnitPrice.Amount != 45 {
		t.Errorf("line = %+v, want catalogue name and price", line)
	}
	if resp.Total.Amount != 3*45 {
		t.Errorf("total = %d, want 135", resp.Total.Amount)
	}
}

func TestRemoveLineRecomputesTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	resp, err := env.service.AddServiceLine(ctx, AddServiceLineCommand{
		InvoiceID: inv.ID(), Name: "labor", Price: 100, Currency: "VND",
	})
	if err != nil {
		t.Fatalf("add service line: %v", err)
	}
	if _, err := env.service.AddServiceLine(ctx, AddServiceLineCommand{
		InvoiceID: inv.ID(), Name: "callout", Price: 50, Currency: "VND",
	}); err != nil {
		t.Fatalf("add second line: %v", err)
	}

	removed, err := env.service.RemoveServiceLine(ctx, inv.ID(), resp.ServiceLines[0].ID)
	if err != nil {
		t.Fatalf("RemoveServiceLine() error = %v", err)
	}
	if removed.Total.Amount != 50 {
		t.Errorf("total = %d, want 50", removed.Total.Amount)
	}
}

func TestFinalizeRequiresFinalizedReport(t *testing.T) {
	env := newTestEnv(t)
	inv := seedDraft(t, env, false, false)

	_, err := env.service.FinalizeInvoice(context.Background(), FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	})
	if !errors.Is(err, billing.ErrReportNotApproved) {
		t.Errorf("error = %v, want ErrReportNotApproved", err)
	}
}

func TestFinalizeAbortsOnShortStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 2)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}
	if _, err := env.service.AddAccessoryLine(ctx, AddAccessoryLineCommand{
		InvoiceID:   inv.ID(),
		AccessoryID: valve,
		Quantity:    5,
		Source:      "FROM_STOCK",
	}); err != nil {
		t.Fatalf("add accessory line: %v", err)
	}

	_, err = env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	})
	if !errors.Is(err, stock.ErrInsufficientStock) {
		t.Errorf("error = %v, want ErrInsufficientStock", err)
	}
	if got := env.accessoryRepo.Quantity(valve); got != 2 {
		t.Errorf("stock after aborted settlement = %d, want 2 untouched", got)
	}
	stored, err := env.service.GetInvoice(ctx, inv.ID())
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if stored.Status != string(billing.InvoiceStatusDraft) {
		t.Errorf("invoice status after aborted settlement = %s, want DRAFT", stored.Status)
	}
}

func TestConcurrentFinalizesNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 3)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}

	// Two settlements that each want 2 of the 3 on hand. Together they
	// oversell; only one may go through.
	invoices := []*billing.Invoice{
		seedDraft(t, env, false, true),
		seedDraft(t, env, false, true),
	}
	for _, inv := range invoices {
		if _, err := env.service.AddAccessoryLine(ctx, AddAccessoryLineCommand{
			InvoiceID:   inv.ID(),
			AccessoryID: valve,
			Quantity:    2,
			Source:      "FROM_STOCK",
		}); err != nil {
			t.Fatalf("add accessory line: %v", err)
		}
	}

	// Optimistic lock conflicts are transient and get retried, the same
	// way the unit of work does against the database; the loser then
	// re-reads the drained stock and fails the availability check.
	retryCfg := retry.DefaultConfig
	retryCfg.InitialDelay = time.Millisecond
	retryCfg.JitterEnabled = false

	errs := make([]error, len(invoices))
	var wg sync.WaitGroup
	for i, inv := range invoices {
		wg.Add(1)
		go func(i int, invoiceID string) {
			defer wg.Done()
			errs[i] = retry.ExecuteWithRetry(ctx, retryCfg, func(ctx context.Context) error {
				_, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
					InvoiceID:   invoiceID,
					ActorClaims: leadClaims,
				})
				return err
			})
		}(i, inv.ID())
	}
	wg.Wait()

	var successes, shortfalls int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, stock.ErrInsufficientStock):
			shortfalls++
		default:
			t.Fatalf("unexpected finalize error: %v", err)
		}
	}
	if successes != 1 || shortfalls != 1 {
		t.Errorf("outcomes = %d success / %d shortfall, want exactly 1 / 1", successes, shortfalls)
	}
	if got := env.accessoryRepo.Quantity(valve); got != 1 {
		t.Errorf("stock after contention = %d, want 1", got)
	}
}

func TestFinalizeNonChargeableSettlesAsExpense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 6)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}
	if _, err := env.service.AddAccessoryLine(ctx, AddAccessoryLineCommand{
		InvoiceID:   inv.ID(),
		AccessoryID: valve,
		Quantity:    2,
		Source:      "FROM_STOCK",
	}); err != nil {
		t.Fatalf("add accessory line: %v", err)
	}

	settlement, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	})
	if err != nil {
		t.Fatalf("FinalizeInvoice() error = %v", err)
	}

	if settlement.Invoice.Status != string(billing.InvoiceStatusPaid) {
		t.Errorf("invoice status = %s, want PAID", settlement.Invoice.Status)
	}
	tx := settlement.Transaction
	if tx.Direction != string(billing.DirectionExpense) {
		t.Errorf("direction = %s, want EXPENSE", tx.Direction)
	}
	if tx.Status != string(billing.TransactionStatusSuccess) {
		t.Errorf("transaction status = %s, want SUCCESS", tx.Status)
	}
	if got := env.accessoryRepo.Quantity(valve); got != 4 {
		t.Errorf("stock after export = %d, want 4", got)
	}

	movements, err := env.stockTxRepo.FindByInvoiceID(ctx, inv.ID())
	if err != nil || len(movements) != 1 {
		t.Fatalf("movements = %v (err %v), want one ledger row", movements, err)
	}
	if movements[0].TransactionID() != tx.ID {
		t.Error("ledger row not linked to the payment transaction")
	}
}

func TestFinalizeImportsPurchasedLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 1)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}
	if _, err := env.service.AddAccessoryLine(ctx, AddAccessoryLineCommand{
		InvoiceID:   inv.ID(),
		AccessoryID: valve,
		Quantity:    3,
		Source:      "TO_BE_PURCHASED",
	}); err != nil {
		t.Fatalf("add purchase line: %v", err)
	}

	if _, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	}); err != nil {
		t.Fatalf("FinalizeInvoice() error = %v", err)
	}

	if got := env.accessoryRepo.Quantity(valve); got != 4 {
		t.Errorf("stock after purchase import = %d, want 4", got)
	}
}

func TestLinesFrozenAfterFinalize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	if _, err := env.service.AddServiceLine(ctx, AddServiceLineCommand{
		InvoiceID: inv.ID(), Name: "labor", Price: 100, Currency: "VND",
	}); err != nil {
		t.Fatalf("add service line: %v", err)
	}
	if _, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := env.service.AddServiceLine(ctx, AddServiceLineCommand{
		InvoiceID: inv.ID(), Name: "late charge", Price: 10, Currency: "VND",
	})
	if !errors.Is(err, billing.ErrLinesFrozen) {
		t.Errorf("error = %v, want ErrLinesFrozen", err)
	}
}

func TestDuplicateAccessoryLineRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	valve, err := env.accessoryRepo.Seed("Shutoff valve", "piece", 45, 6)
	if err != nil {
		t.Fatalf("seed accessory: %v", err)
	}
	add := AddAccessoryLineCommand{
		InvoiceID:   inv.ID(),
		AccessoryID: valve,
		Quantity:    1,
		Source:      "FROM_STOCK",
	}
	if _, err := env.service.AddAccessoryLine(ctx, add); err != nil {
		t.Fatalf("first line: %v", err)
	}
	if _, err := env.service.AddAccessoryLine(ctx, add); !errors.Is(err, billing.ErrDuplicateLine) {
		t.Errorf("error = %v, want ErrDuplicateLine", err)
	}
}

func TestCancelOnlyFromDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	if _, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := env.service.CancelInvoice(ctx, inv.ID(), "duplicate"); err == nil {
		t.Error("cancel succeeded on a settled invoice")
	}
}

func TestRecordPaymentNudgesReconciler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Invoice already through settlement and awaiting the payer.
	inv := seedDraft(t, env, true, true)
	if err := inv.AddServiceLine("labor", *shared.NewMoney(100, "VND")); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := inv.Approve(); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := inv.MarkAwaitingPayment(); err != nil {
		t.Fatalf("mark awaiting payment: %v", err)
	}
	if err := env.invoiceRepo.Save(ctx, inv); err != nil {
		t.Fatalf("save invoice: %v", err)
	}

	pending, err := billing.NewPendingIncome("resident-1", inv.ID(), "gateway", inv.Total())
	if err != nil {
		t.Fatalf("pending income: %v", err)
	}
	if err := env.transactionRepo.Save(ctx, pending); err != nil {
		t.Fatalf("save transaction: %v", err)
	}

	resp, err := env.service.RecordPayment(ctx, RecordPaymentCommand{
		TransactionID:     pending.ID(),
		ExternalReference: "gw-ref-9",
		PaidAt:            time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if resp.Status != string(billing.TransactionStatusSuccess) {
		t.Errorf("transaction status = %s, want SUCCESS", resp.Status)
	}

	paid, err := env.service.GetInvoice(ctx, inv.ID())
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if paid.Status != string(billing.InvoiceStatusPaid) {
		t.Errorf("invoice status = %s, want PAID", paid.Status)
	}

	if len(env.reconciler.calls) != 1 || env.reconciler.calls[0] != inv.RequestID() {
		t.Errorf("reconciler calls = %v, want one for %s", env.reconciler.calls, inv.RequestID())
	}
}

func TestRecordPaymentSurvivesReconcileFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.reconciler.err = errors.New("coordinator unavailable")

	inv := seedDraft(t, env, true, true)
	if err := inv.AddServiceLine("labor", *shared.NewMoney(100, "VND")); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := inv.Approve(); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := inv.MarkAwaitingPayment(); err != nil {
		t.Fatalf("mark awaiting payment: %v", err)
	}
	if err := env.invoiceRepo.Save(ctx, inv); err != nil {
		t.Fatalf("save invoice: %v", err)
	}

	pending, err := billing.NewPendingIncome("resident-1", inv.ID(), "gateway", inv.Total())
	if err != nil {
		t.Fatalf("pending income: %v", err)
	}
	if err := env.transactionRepo.Save(ctx, pending); err != nil {
		t.Fatalf("save transaction: %v", err)
	}

	// The payment committed; a failing nudge must not hide that from
	// the caller. The periodic sweep picks the request up later.
	resp, err := env.service.RecordPayment(ctx, RecordPaymentCommand{
		TransactionID:     pending.ID(),
		ExternalReference: "gw-ref-9",
		PaidAt:            time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v, want recorded payment", err)
	}
	if resp.Status != string(billing.TransactionStatusSuccess) {
		t.Errorf("transaction status = %s, want SUCCESS", resp.Status)
	}
	if len(env.reconciler.calls) != 1 {
		t.Errorf("reconciler calls = %d, want 1", len(env.reconciler.calls))
	}
}

func TestRecordPaymentRejectsSettledTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inv := seedDraft(t, env, false, true)

	settlement, err := env.service.FinalizeInvoice(ctx, FinalizeCommand{
		InvoiceID:   inv.ID(),
		ActorClaims: leadClaims,
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err = env.service.RecordPayment(ctx, RecordPaymentCommand{
		TransactionID:     settlement.Transaction.ID,
		ExternalReference: "gw-ref-9",
		PaidAt:            time.Now(),
	})
	if !errors.Is(err, billing.ErrPaymentNotExpected) {
		t.Errorf("error = %v, want ErrPaymentNotExpected", err)
	}
}

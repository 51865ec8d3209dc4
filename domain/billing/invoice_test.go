package billing

import (
	"errors"
	"testing"
	"time"

	"maintdesk/domain/shared"
)

func draftInvoice(t *testing.T, chargeable bool) *Invoice {
	t.Helper()
	inv, err := NewDraft("request-1", "report-1", chargeable, InvoiceTypeInternalRepair)
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	return inv
}

func money(t *testing.T, amount int64) shared.Money {
	t.Helper()
	return *shared.NewMoney(amount, shared.DefaultCurrency)
}

func TestTotalTracksLineSum(t *testing.T) {
	inv := draftInvoice(t, true)

	// Two stock lines (3 @ 10, 1 @ 50) and one service line (100).
	if err := inv.AddAccessoryLine("acc-1", "pipe section", 3, money(t, 10), SourceFromStock); err != nil {
		t.Fatalf("AddAccessoryLine: %v", err)
	}
	if err := inv.AddAccessoryLine("acc-2", "valve", 1, money(t, 50), SourceFromStock); err != nil {
		t.Fatalf("AddAccessoryLine: %v", err)
	}
	if err := inv.AddServiceLine("labor", money(t, 100)); err != nil {
		t.Fatalf("AddServiceLine: %v", err)
	}

	if got := inv.Total().Amount(); got != 180 {
		t.Errorf("total = %d, want 180", got)
	}
	if got := len(inv.FromStockLines()); got != 2 {
		t.Errorf("stock-sourced lines = %d, want 2", got)
	}
}

func TestRemoveLineRecomputesTotal(t *testing.T) {
	inv := draftInvoice(t, true)
	inv.AddAccessoryLine("acc-1", "pipe section", 3, money(t, 10), SourceFromStock)
	inv.AddServiceLine("labor", money(t, 100))

	line := inv.AccessoryLines()[0]
	if err := inv.RemoveAccessoryLine(line.ID()); err != nil {
		t.Fatalf("RemoveAccessoryLine: %v", err)
	}
	if got := inv.Total().Amount(); got != 100 {
		t.Errorf("total = %d, want 100", got)
	}

	if err := inv.RemoveAccessoryLine("missing"); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("err = %v, want ErrLineNotFound", err)
	}
}

func TestDuplicateAccessoryPerSourceRejected(t *testing.T) {
	inv := draftInvoice(t, true)
	inv.AddAccessoryLine("acc-1", "pipe section", 3, money(t, 10), SourceFromStock)

	err := inv.AddAccessoryLine("acc-1", "pipe section", 2, money(t, 10), SourceFromStock)
	if !errors.Is(err, ErrDuplicateLine) {
		t.Errorf("err = %v, want ErrDuplicateLine", err)
	}
	// Same accessory under a different source is a distinct line.
	if err := inv.AddAccessoryLine("acc-1", "pipe section", 2, money(t, 10), SourceToBePurchased); err != nil {
		t.Errorf("different source: %v", err)
	}
}

func TestStockLineRequiresAccessoryReference(t *testing.T) {
	inv := draftInvoice(t, true)

	err := inv.AddAccessoryLine("", "mystery part", 1, money(t, 10), SourceFromStock)
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput for stock line without accessory", err)
	}
	if got := len(inv.AccessoryLines()); got != 0 {
		t.Errorf("lines = %d, want rejected line not recorded", got)
	}

	// Contractor-supplied purchases may stay off-catalogue.
	if err := inv.AddAccessoryLine("", "contractor-quoted part", 1, money(t, 10), SourceToBePurchased); err != nil {
		t.Errorf("free-form purchase line: %v", err)
	}
}

func TestLinesFrozenAfterApprove(t *testing.T) {
	inv := draftInvoice(t, true)
	inv.AddServiceLine("labor", money(t, 100))
	if err := inv.Approve(); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if err := inv.AddServiceLine("extra", money(t, 10)); !errors.Is(err, ErrLinesFrozen) {
		t.Errorf("add after approve: err = %v, want ErrLinesFrozen", err)
	}
	if err := inv.RemoveServiceLine(inv.ServiceLines()[0].ID()); !errors.Is(err, ErrLinesFrozen) {
		t.Errorf("remove after approve: err = %v, want ErrLinesFrozen", err)
	}
	if got := inv.Total().Amount(); got != 100 {
		t.Errorf("total after approve = %d, want 100", got)
	}
}

func TestApproveDetectsAmountMismatch(t *testing.T) {
	inv := draftInvoice(t, true)
	inv.AddServiceLine("labor", money(t, 100))

	// A corrupt stored total must be rejected, never corrected.
	corrupted := RebuildInvoice(InvoiceReconstructionDTO{
		ID:         inv.ID(),
		RequestID:  inv.RequestID(),
		ReportID:   inv.ReportID(),
		Chargeable: true,
		Type:       inv.Type(),
		Status:     InvoiceStatusDraft,
		Total:      money(t, 9999),
		Services:   inv.ServiceLines(),
	})
	err := corrupted.Approve()
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("err = %v, want ErrAmountMismatch", err)
	}
	if corrupted.Status() != InvoiceStatusDraft {
		t.Errorf("status = %s, want %s", corrupted.Status(), InvoiceStatusDraft)
	}
	if corrupted.Total().Amount() != 9999 {
		t.Error("stored total must not be silently corrected")
	}
}

func TestChargeableSettlementPath(t *testing.T) {
	inv := draftInvoice(t, true)
	inv.AddServiceLine("labor", money(t, 100))
	if err := inv.Approve(); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := inv.MarkAwaitingPayment(); err != nil {
		t.Fatalf("MarkAwaitingPayment: %v", err)
	}
	if err := inv.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !inv.Status().IsTerminal() {
		t.Error("Paid should be terminal")
	}
	if err := inv.Cancel("refund"); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("cancel paid invoice: err = %v, want ErrInvalidTransition", err)
	}
}

func TestNonChargeableSettlesDirectly(t *testing.T) {
	inv := draftInvoice(t, false)
	inv.AddServiceLine("labor", money(t, 100))
	inv.Approve()
	if err := inv.MarkPaid(); err != nil {
		t.Errorf("direct settle: %v", err)
	}
}

func TestCancelOnlyFromDraft(t *testing.T) {
	inv := draftInvoice(t, true)
	if err := inv.Cancel("report rejected"); err != nil {
		t.Fatalf("cancel draft: %v", err)
	}
	if inv.Status() != InvoiceStatusCancelled {
		t.Errorf("status = %s, want %s", inv.Status(), InvoiceStatusCancelled)
	}

	inv2 := draftInvoice(t, true)
	inv2.AddServiceLine("labor", money(t, 100))
	inv2.Approve()
	if err := inv2.Cancel("too late"); !errors.Is(err, shared.ErrInvalidTransition) {
		t.Errorf("cancel approved invoice: err = %v, want ErrInvalidTransition", err)
	}
}

func TestPendingIncomePaidAtOnlyOnSuccess(t *testing.T) {
	tx, err := NewPendingIncome("resident-1", "invoice-1", "gateway", money(t, 180))
	if err != nil {
		t.Fatalf("NewPendingIncome: %v", err)
	}
	if tx.PaidAt() != nil {
		t.Error("pending transaction must not carry PaidAt")
	}

	paidAt := time.Now()
	if err := tx.RecordPayment("ext-123", paidAt); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if tx.Status() != TransactionStatusSuccess {
		t.Errorf("status = %s, want %s", tx.Status(), TransactionStatusSuccess)
	}
	if tx.PaidAt() == nil || !tx.PaidAt().Equal(paidAt) {
		t.Errorf("PaidAt = %v, want %v", tx.PaidAt(), paidAt)
	}

	if err := tx.RecordPayment("ext-456", time.Now()); !errors.Is(err, ErrPaymentNotExpected) {
		t.Errorf("double payment: err = %v, want ErrPaymentNotExpected", err)
	}
}

func TestSettledExpenseIsImmediatelySuccessful(t *testing.T) {
	tx, err := NewSettledExpense("operator", "invoice-1", money(t, 100))
	if err != nil {
		t.Fatalf("NewSettledExpense: %v", err)
	}
	if tx.Status() != TransactionStatusSuccess {
		t.Errorf("status = %s, want %s", tx.Status(), TransactionStatusSuccess)
	}
	if tx.Direction() != DirectionExpense {
		t.Errorf("direction = %s, want %s", tx.Direction(), DirectionExpense)
	}
	if tx.PaidAt() == nil {
		t.Error("settled expense must carry PaidAt")
	}
}

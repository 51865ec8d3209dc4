/*
Package billing Application Layer - invoice settlement orchestration.

Finalize is the one operation that spans three subdomains in a single
transaction: it locks the invoice total, moves stock for every
from-stock line with an all-or-nothing availability check, and opens the
payment leg. Everything commits or nothing does.
*/
package billing

import (
	"context"

	"go.uber.org/zap"

	"maintdesk/domain/billing"
	"maintdesk/domain/report"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
	"maintdesk/pkg/logger"
)

// Reconciler advances a request whose settlement has completed. Wired
// to the request application service; kept as an interface so billing
// does not depend on it directly.
type Reconciler interface {
	ReconcileRequest(ctx context.Context, requestID string) (bool, error)
}

// ApplicationService Billing application service - invoice line
// editing, settlement and payment recording
type ApplicationService struct {
	invoiceRepo     billing.InvoiceRepository
	transactionRepo billing.TransactionRepository
	reportRepo      report.Repository
	requestRepo     request.Repository
	accessoryRepo   stock.AccessoryRepository
	stockTxRepo     stock.StockTransactionRepository
	reconciler      Reconciler
	uowFactory      shared.UnitOfWorkFactory
}

// NewApplicationService Create billing application service
func NewApplicationService(
	invoiceRepo billing.InvoiceRepository,
	transactionRepo billing.TransactionRepository,
	reportRepo report.Repository,
	requestRepo request.Repository,
	accessoryRepo stock.AccessoryRepository,
	stockTxRepo stock.StockTransactionRepository,
	reconciler Reconciler,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		reportRepo:      reportRepo,
		requestRepo:     requestRepo,
		accessoryRepo:   accessoryRepo,
		stockTxRepo:     stockTxRepo,
		reconciler:      reconciler,
		uowFactory:      uowFactory,
	}
}

// AddAccessoryLine Add one accessory line to a Draft invoice. Lines
// referencing a catalogue accessory take their name and unit price from
// the catalogue; free-form lines (external contractor quotes) carry
// their own.
func (s *ApplicationService) AddAccessoryLine(ctx context.Context, cmd AddAccessoryLineCommand) (*InvoiceResponse, error) {
	source, ok := billing.ParseSourceType(cmd.Source)
	if !ok {
		return nil, shared.NewValidationError("invoice", "source", "unknown source type")
	}

	var inv *billing.Invoice
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, cmd.InvoiceID)
		if err != nil {
			return err
		}

		name := cmd.Name
		unitPrice := shared.NewMoney(cmd.UnitPrice, cmd.Currency)
		if cmd.AccessoryID != "" {
			accessory, err := s.accessoryRepo.FindByID(ctx, cmd.AccessoryID)
			if err != nil {
				return err
			}
			name = accessory.Name()
			price := accessory.UnitPrice()
			unitPrice = &price
		}

		if err := inv.AddAccessoryLine(cmd.AccessoryID, name, cmd.Quantity, *unitPrice, source); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		uow.Register(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(inv), nil
}

// AddServiceLine Add one labor/service line to a Draft invoice
func (s *ApplicationService) AddServiceLine(ctx context.Context, cmd AddServiceLineCommand) (*InvoiceResponse, error) {
	return s.mutateInvoice(ctx, cmd.InvoiceID, func(inv *billing.Invoice) error {
		return inv.AddServiceLine(cmd.Name, *shared.NewMoney(cmd.Price, cmd.Currency))
	})
}

// RemoveAccessoryLine Remove one accessory line from a Draft invoice
func (s *ApplicationService) RemoveAccessoryLine(ctx context.Context, invoiceID, lineID string) (*InvoiceResponse, error) {
	return s.mutateInvoice(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.RemoveAccessoryLine(lineID)
	})
}

// RemoveServiceLine Remove one service line from a Draft invoice
func (s *ApplicationService) RemoveServiceLine(ctx context.Context, invoiceID, lineID string) (*InvoiceResponse, error) {
	return s.mutateInvoice(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.RemoveServiceLine(lineID)
	})
}

// CancelInvoice Void a Draft invoice
func (s *ApplicationService) CancelInvoice(ctx context.Context, invoiceID, reason string) (*InvoiceResponse, error) {
	return s.mutateInvoice(ctx, invoiceID, func(inv *billing.Invoice) error {
		return inv.Cancel(reason)
	})
}

func (s *ApplicationService) mutateInvoice(ctx context.Context, invoiceID string, op func(*billing.Invoice) error) (*InvoiceResponse, error) {
	var inv *billing.Invoice
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := op(inv); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		uow.Register(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(inv), nil
}

// FinalizeInvoice Settle a Draft invoice: lock the total, move stock
// and open the payment leg, atomically
func (s *ApplicationService) FinalizeInvoice(ctx context.Context, cmd FinalizeCommand) (*SettlementResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}

	var inv *billing.Invoice
	var paymentTx *billing.Transaction
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		inv, err = s.invoiceRepo.FindByID(ctx, cmd.InvoiceID)
		if err != nil {
			return err
		}

		rep, err := s.reportRepo.FindByID(ctx, inv.ReportID())
		if err != nil {
			return err
		}
		if !rep.IsFinalized() {
			return billing.ErrReportNotApproved
		}

		// Locks the line set and re-verifies the stored total.
		if err := inv.Approve(); err != nil {
			return err
		}

		stockTxs, err := s.moveStock(ctx, uow, inv, actor)
		if err != nil {
			return err
		}

		paymentTx, err = s.openPaymentLeg(ctx, inv, actor)
		if err != nil {
			return err
		}

		for _, stockTx := range stockTxs {
			stockTx.LinkPayment(paymentTx.ID())
			if err := s.stockTxRepo.Insert(ctx, stockTx); err != nil {
				return err
			}
		}

		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		if err := s.transactionRepo.Save(ctx, paymentTx); err != nil {
			return err
		}
		uow.Register(inv)
		uow.Register(paymentTx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SettlementResponse{
		Invoice:     toInvoiceResponse(inv),
		Transaction: toTransactionResponse(paymentTx),
	}, nil
}

// moveStock exports stock for every from-stock line and imports the
// purchases for to-be-purchased lines. Availability is checked against
// a fresh read of each accessory inside the settlement transaction; the
// first shortfall aborts the whole settlement.
func (s *ApplicationService) moveStock(ctx context.Context, uow shared.UnitOfWork, inv *billing.Invoice, actor shared.Actor) ([]*stock.StockTransaction, error) {
	var stockTxs []*stock.StockTransaction

	for _, line := range inv.FromStockLines() {
		accessory, err := s.accessoryRepo.FindByID(ctx, line.AccessoryID())
		if err != nil {
			return nil, err
		}
		stockTx, err := accessory.Export(line.Quantity(), actor, inv.ID())
		if err != nil {
			return nil, err
		}
		if err := s.accessoryRepo.Save(ctx, accessory); err != nil {
			return nil, err
		}
		uow.Register(accessory)
		stockTxs = append(stockTxs, stockTx)
	}

	for _, line := range inv.ToBePurchasedLines() {
		if line.AccessoryID() == "" {
			continue
		}
		accessory, err := s.accessoryRepo.FindByID(ctx, line.AccessoryID())
		if err != nil {
			return nil, err
		}
		stockTx, err := accessory.Import(line.Quantity(), line.UnitPrice(), actor, inv.ID())
		if err != nil {
			return nil, err
		}
		if err := s.accessoryRepo.Save(ctx, accessory); err != nil {
			return nil, err
		}
		uow.Register(accessory)
		stockTxs = append(stockTxs, stockTx)
	}

	return stockTxs, nil
}

// openPaymentLeg creates the payment transaction that settles the
// invoice: a pending income awaiting the payer for chargeable work, an
// immediately settled internal expense otherwise.
func (s *ApplicationService) openPaymentLeg(ctx context.Context, inv *billing.Invoice, actor shared.Actor) (*billing.Transaction, error) {
	if inv.Chargeable() {
		req, err := s.requestRepo.FindByID(ctx, inv.RequestID())
		if err != nil {
			return nil, err
		}
		paymentTx, err := billing.NewPendingIncome(req.RequesterID(), inv.ID(), "gateway", inv.Total())
		if err != nil {
			return nil, err
		}
		if err := inv.MarkAwaitingPayment(); err != nil {
			return nil, err
		}
		return paymentTx, nil
	}

	paymentTx, err := billing.NewSettledExpense(actor.ID, inv.ID(), inv.Total())
	if err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(); err != nil {
		return nil, err
	}
	return paymentTx, nil
}

// RecordPayment Record the payer's successful payment and propagate it
// to the invoice. The request coordinator is nudged afterwards; a
// request that is not yet ready is simply left alone.
func (s *ApplicationService) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*TransactionResponse, error) {
	var paymentTx *billing.Transaction
	var requestID string
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		paymentTx, err = s.transactionRepo.FindByID(ctx, cmd.TransactionID)
		if err != nil {
			return err
		}
		if err := paymentTx.RecordPayment(cmd.ExternalReference, cmd.PaidAt); err != nil {
			return err
		}

		inv, err := s.invoiceRepo.FindByID(ctx, paymentTx.InvoiceID())
		if err != nil {
			return err
		}
		if err := inv.MarkPaid(); err != nil {
			return err
		}
		requestID = inv.RequestID()

		if err := s.transactionRepo.Save(ctx, paymentTx); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
		uow.Register(paymentTx)
		uow.Register(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Separate transaction: payment success must not be lost to a
	// reconciliation hiccup. The periodic sweep retries the nudge.
	if s.reconciler != nil {
		if _, err := s.reconciler.ReconcileRequest(ctx, requestID); err != nil {
			logger.Error("Failed to reconcile request after payment",
				zap.String("request_id", requestID),
				zap.String("transaction_id", paymentTx.ID()),
				zap.Error(err))
		}
	}

	return toTransactionResponse(paymentTx), nil
}

// GetInvoice Get one invoice with its lines
func (s *ApplicationService) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetRequestInvoices List invoices raised against a request
func (s *ApplicationService) GetRequestInvoices(ctx context.Context, requestID string) ([]*InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	responses := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = toInvoiceResponse(inv)
	}
	return responses, nil
}

// GetInvoiceTransactions List the payment attempts against an invoice
func (s *ApplicationService) GetInvoiceTransactions(ctx context.Context, invoiceID string) ([]*TransactionResponse, error) {
	transactions, err := s.transactionRepo.FindByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = toTransactionResponse(t)
	}
	return responses, nil
}

// Package stock Application Layer - accessory catalogue maintenance and
// manual stock adjustments outside invoice settlement.
package stock

import (
	"context"

	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
)

// ApplicationService Stock application service
type ApplicationService struct {
	accessoryRepo stock.AccessoryRepository
	stockTxRepo   stock.StockTransactionRepository
	uowFactory    shared.UnitOfWorkFactory
}

// NewApplicationService Create stock application service
func NewApplicationService(
	accessoryRepo stock.AccessoryRepository,
	stockTxRepo stock.StockTransactionRepository,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		accessoryRepo: accessoryRepo,
		stockTxRepo:   stockTxRepo,
		uowFactory:    uowFactory,
	}
}

// CreateAccessory Add an accessory to the catalogue
func (s *ApplicationService) CreateAccessory(ctx context.Context, cmd CreateAccessoryCommand) (*AccessoryResponse, error) {
	var accessory *stock.Accessory
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		accessory, err = stock.NewAccessory(cmd.Name, cmd.Unit, *shared.NewMoney(cmd.UnitPrice, cmd.Currency))
		if err != nil {
			return err
		}
		if err := s.accessoryRepo.Save(ctx, accessory); err != nil {
			return err
		}
		uow.Register(accessory)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAccessoryResponse(accessory), nil
}

// UpdateAccessory Rename or reprice a catalogue accessory
func (s *ApplicationService) UpdateAccessory(ctx context.Context, cmd UpdateAccessoryCommand) (*AccessoryResponse, error) {
	var accessory *stock.Accessory
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		accessory, err = s.accessoryRepo.FindByID(ctx, cmd.AccessoryID)
		if err != nil {
			return err
		}
		if cmd.Name != "" {
			if err := accessory.Rename(cmd.Name, cmd.Unit); err != nil {
				return err
			}
		}
		if cmd.UnitPrice != nil {
			if err := accessory.RepriceUnit(*shared.NewMoney(*cmd.UnitPrice, cmd.Currency)); err != nil {
				return err
			}
		}
		if err := s.accessoryRepo.Save(ctx, accessory); err != nil {
			return err
		}
		uow.Register(accessory)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAccessoryResponse(accessory), nil
}

// AdjustStock Record a manual import or export outside invoice
// settlement. Manager action; the movement lands in the same ledger as
// settlement movements so conservation stays auditable.
func (s *ApplicationService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*AccessoryResponse, error) {
	actor, err := cmd.actor()
	if err != nil {
		return nil, err
	}
	direction, ok := stock.ParseDirection(cmd.Direction)
	if !ok {
		return nil, shared.NewValidationError("stock", "direction", "unknown direction")
	}

	var accessory *stock.Accessory
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		accessory, err = s.accessoryRepo.FindByID(ctx, cmd.AccessoryID)
		if err != nil {
			return err
		}

		var stockTx *stock.StockTransaction
		switch direction {
		case stock.DirectionImport:
			unitPrice := accessory.UnitPrice()
			if cmd.UnitPrice != nil {
				unitPrice = *shared.NewMoney(*cmd.UnitPrice, cmd.Currency)
			}
			stockTx, err = accessory.Import(cmd.Quantity, unitPrice, actor, "")
		case stock.DirectionExport:
			stockTx, err = accessory.Export(cmd.Quantity, actor, "")
		}
		if err != nil {
			return err
		}

		if err := s.accessoryRepo.Save(ctx, accessory); err != nil {
			return err
		}
		if err := s.stockTxRepo.Insert(ctx, stockTx); err != nil {
			return err
		}
		uow.Register(accessory)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toAccessoryResponse(accessory), nil
}

// GetAccessory Get one catalogue accessory
func (s *ApplicationService) GetAccessory(ctx context.Context, accessoryID string) (*AccessoryResponse, error) {
	accessory, err := s.accessoryRepo.FindByID(ctx, accessoryID)
	if err != nil {
		return nil, err
	}
	return toAccessoryResponse(accessory), nil
}

// ListAccessories List the catalogue
func (s *ApplicationService) ListAccessories(ctx context.Context) ([]*AccessoryResponse, error) {
	accessories, err := s.accessoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*AccessoryResponse, len(accessories))
	for i, a := range accessories {
		responses[i] = toAccessoryResponse(a)
	}
	return responses, nil
}

// GetMovements List an accessory's ledger history, oldest first
func (s *ApplicationService) GetMovements(ctx context.Context, accessoryID string) ([]*StockTransactionResponse, error) {
	movements, err := s.stockTxRepo.FindByAccessoryID(ctx, accessoryID)
	if err != nil {
		return nil, err
	}

	responses := make([]*StockTransactionResponse, len(movements))
	for i, m := range movements {
		responses[i] = toStockTransactionResponse(m)
	}
	return responses, nil
}

package stock

import (
	"context"

	"kamesan/internal/core/apperror"
	appctx "kamesan/internal/core/context"
	"kamesan/internal/core/id"
	"kamesan/internal/core/tx"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/numbering"
	"kamesan/pkg/logger"
)

// Service implements stock count and transfer use cases.
type Service struct {
	counts    CountRepository
	transfers TransferRepository
	numerator numbering.Generator
	txManager tx.Manager
}

// NewService creates a stock service.
func NewService(
	counts CountRepository,
	transfers TransferRepository,
	numerator numbering.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		counts:    counts,
		transfers: transfers,
		numerator: numerator,
		txManager: txManager,
	}
}

// CreateCount validates, numbers and persists a stock count.
func (s *Service) CreateCount(ctx context.Context, count *StockCount) error {
	if err := count.Validate(ctx); err != nil {
		return err
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		count.CreatedBy = userID
		count.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if count.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypeStockCount)
			if err != nil {
				return err
			}
			count.Number = number
		}
		if err := s.counts.Create(ctx, count); err != nil {
			return err
		}
		logger.Info(ctx, "stock count created",
			"count_id", count.ID.String(),
			"number", count.Number,
			"items", len(count.Items))
		return nil
	})
}

// GetCount loads a stock count with items.
func (s *Service) GetCount(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.counts.GetByID(ctx, countID)
}

// StartCount moves a draft count to in progress.
func (s *Service) StartCount(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.setCountStatus(ctx, countID, CountInProgress)
}

// RecordCountedQuantity stores a counted quantity for one product line.
func (s *Service) RecordCountedQuantity(ctx context.Context, countID, lineID id.ID, counted types.Quantity) (*StockCount, error) {
	count, err := s.counts.GetByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	if count.Status != CountInProgress {
		return nil, apperror.NewBusinessRule("COUNT_NOT_IN_PROGRESS",
			"quantities can only be recorded while the count is in progress").
			WithDetail("status", string(count.Status))
	}
	if counted.IsNegative() {
		return nil, apperror.NewValidation("counted quantity cannot be negative").
			WithDetail("field", "countedQty")
	}

	found := false
	for i := range count.Items {
		if count.Items[i].LineID == lineID {
			count.Items[i].CountedQty = counted
			count.Items[i].Counted = true
			found = true
			break
		}
	}
	if !found {
		return nil, apperror.NewNotFound("stock count line", lineID)
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		count.UpdatedBy = userID
	}
	count.Touch()
	if err := s.counts.Update(ctx, count); err != nil {
		return nil, err
	}
	return count, nil
}

// CompleteCount closes an in-progress count. All lines must be counted.
func (s *Service) CompleteCount(ctx context.Context, countID id.ID) (*StockCount, error) {
	count, err := s.counts.GetByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	for _, item := range count.Items {
		if !item.Counted {
			return nil, apperror.NewBusinessRule("COUNT_INCOMPLETE",
				"all lines must be counted before completion").
				WithDetail("lineId", item.LineID.String())
		}
	}
	if err := count.TransitionTo(CountCompleted); err != nil {
		return nil, err
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		count.UpdatedBy = userID
	}
	if err := s.counts.Update(ctx, count); err != nil {
		return nil, err
	}
	logger.Info(ctx, "stock count completed",
		"number", count.Number,
		"items", len(count.Items))
	return count, nil
}

// CancelCount cancels a draft or in-progress count.
func (s *Service) CancelCount(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.setCountStatus(ctx, countID, CountCancelled)
}

func (s *Service) setCountStatus(ctx context.Context, countID id.ID, target CountStatus) (*StockCount, error) {
	count, err := s.counts.GetByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	if err := count.TransitionTo(target); err != nil {
		return nil, err
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		count.UpdatedBy = userID
	}
	if err := s.counts.Update(ctx, count); err != nil {
		return nil, err
	}
	return count, nil
}

// ListCounts returns counts for a warehouse.
func (s *Service) ListCounts(ctx context.Context, warehouseID id.ID) ([]StockCount, error) {
	return s.counts.ListByWarehouse(ctx, warehouseID)
}

// CreateTransfer validates, numbers and persists a stock transfer.
func (s *Service) CreateTransfer(ctx context.Context, transfer *StockTransfer) error {
	if err := transfer.Validate(ctx); err != nil {
		return err
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		transfer.CreatedBy = userID
		transfer.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if transfer.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypeStockTransfer)
			if err != nil {
				return err
			}
			transfer.Number = number
		}
		if err := s.transfers.Create(ctx, transfer); err != nil {
			return err
		}
		logger.Info(ctx, "stock transfer created",
			"transfer_id", transfer.ID.String(),
			"number", transfer.Number)
		return nil
	})
}

// GetTransfer loads a transfer with items.
func (s *Service) GetTransfer(ctx context.Context, transferID id.ID) (*StockTransfer, error) {
	return s.transfers.GetByID(ctx, transferID)
}

// SetTransferStatus moves a transfer through its lifecycle.
func (s *Service) SetTransferStatus(ctx context.Context, transferID id.ID, target TransferStatus) (*StockTransfer, error) {
	transfer, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if err := transfer.TransitionTo(target); err != nil {
		return nil, err
	}
	if target == TransferInTransit {
		if err := s.checkSourceStock(ctx, transfer); err != nil {
			return nil, err
		}
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		transfer.UpdatedBy = userID
	}
	if err := s.transfers.UpdateStatus(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// checkSourceStock verifies shipped quantities against the latest completed
// count of the source warehouse. Without a completed count there is no
// snapshot to check and the transfer ships unverified; products missing
// from the snapshot are likewise skipped.
func (s *Service) checkSourceStock(ctx context.Context, transfer *StockTransfer) error {
	snapshot, err := s.counts.LatestCompleted(ctx, transfer.FromWarehouseID)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	onHand := make(map[id.ID]types.Quantity, len(snapshot.Items))
	for _, item := range snapshot.Items {
		onHand[item.ProductID] = item.CountedQty
	}

	for _, item := range transfer.Items {
		available, counted := onHand[item.ProductID]
		if !counted {
			continue
		}
		if item.Quantity > available {
			return apperror.NewInsufficientStock(
				item.ProductID.String(), item.Quantity.Float64(), available.Float64())
		}
	}
	return nil
}

// ListTransfers returns transfers touching a warehouse.
func (s *Service) ListTransfers(ctx context.Context, warehouseID id.ID) ([]StockTransfer, error) {
	return s.transfers.ListByWarehouse(ctx, warehouseID)
}

package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// PurchaseOrders is the part of the order service the purchase activities use.
type PurchaseOrders interface {
	BuildPurchaseOrder(ctx context.Context, orderID int64) (*domain.PurchaseOrder, error)
	SavePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, id int64) error
	MarkDone(ctx context.Context, orderID int64, actor string) (*domain.InstallmentOrder, error)
}

// PurchaseActivities holds the activity implementations for the purchase workflow.
type PurchaseActivities struct {
	Orders PurchaseOrders
}

// CreatePurchaseOrder builds and stores the purchase order of an approved
// installment order.
func (a *PurchaseActivities) CreatePurchaseOrder(ctx context.Context, orderID int64) (PurchaseRef, error) {
	po, err := a.Orders.BuildPurchaseOrder(ctx, orderID)
	if err != nil {
		return PurchaseRef{}, classify(fmt.Errorf("build purchase order for %d: %w", orderID, err))
	}
	if err := a.Orders.SavePurchaseOrder(ctx, po); err != nil {
		return PurchaseRef{}, err
	}
	slog.Info("purchase order created", "order_id", orderID, "purchase_order", po.Name)
	return PurchaseRef{ID: po.ID, Name: po.Name}, nil
}

// MarkOrderDone closes the installment order.
func (a *PurchaseActivities) MarkOrderDone(ctx context.Context, orderID int64, actor string) error {
	if _, err := a.Orders.MarkDone(ctx, orderID, actor); err != nil {
		return classify(fmt.Errorf("mark order %d done: %w", orderID, err))
	}
	return nil
}

// DeletePurchaseOrder removes a purchase order (saga compensation).
func (a *PurchaseActivities) DeletePurchaseOrder(ctx context.Context, id int64) error {
	if err := a.Orders.DeletePurchaseOrder(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete purchase order %d: %w", id, err)
	}
	slog.Info("purchase order deleted (saga compensation)", "purchase_order_id", id)
	return nil
}

// classify stops retries for errors that another attempt cannot fix.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), "invalid_order", err)
	}
	return err
}

package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// PurchaseInput is the input for the purchase workflow.
type PurchaseInput struct {
	OrderID int64
	Actor   string
}

// PurchaseRef identifies the purchase order the workflow created.
type PurchaseRef struct {
	ID   int64
	Name string
}

// PurchaseWorkflow creates the purchase order of an approved installment
// order and then marks the order done. If the order cannot be marked done the
// purchase order is deleted again (saga compensation).
func PurchaseWorkflow(ctx workflow.Context, input PurchaseInput) (PurchaseRef, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting purchase workflow", "orderID", input.OrderID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var a *PurchaseActivities

	var ref PurchaseRef
	if err := workflow.ExecuteActivity(ctx, a.CreatePurchaseOrder, input.OrderID).Get(ctx, &ref); err != nil {
		return PurchaseRef{}, err
	}

	err := workflow.ExecuteActivity(ctx, a.MarkOrderDone, input.OrderID, input.Actor).Get(ctx, nil)
	if err != nil {
		logger.Warn("marking order done failed, compensating", "error", err)
		if cerr := workflow.ExecuteActivity(ctx, a.DeletePurchaseOrder, ref.ID).Get(ctx, nil); cerr != nil {
			logger.Error("compensation failed", "purchaseOrderID", ref.ID, "error", cerr)
		}
		return PurchaseRef{}, err
	}

	logger.Info("Purchase order created", "name", ref.Name)
	return ref, nil
}

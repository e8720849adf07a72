package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// Starter launches purchase workflows on a Temporal task queue.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// PurchaseWorkflowID is the workflow ID used for an order.
func PurchaseWorkflowID(orderID int64) string {
	return fmt.Sprintf("purchase-order-%d", orderID)
}

// StartPurchase starts PurchaseWorkflow for an order. The workflow ID is
// derived from the order so a second start while one runs is rejected.
func (s *Starter) StartPurchase(ctx context.Context, orderID int64, actor string) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        PurchaseWorkflowID(orderID),
		TaskQueue: s.taskQueue,
	}, PurchaseWorkflow, PurchaseInput{OrderID: orderID, Actor: actor})
	if err != nil {
		return "", fmt.Errorf("start purchase workflow: %w", err)
	}
	return run.GetRunID(), nil
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/samirrijal/fieldops/internal/workflows"
)

var (
	purchaseActor string
	purchaseWait  bool
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase <order-id>",
	Short: "Start the purchase workflow of an approved installment order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		c, err := dialTemporal()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := cmd.Context()
		runID, err := workflows.NewStarter(c, cfg.Temporal.TaskQueue).StartPurchase(ctx, orderID, purchaseActor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "started purchase workflow for order %d (run %s)\n", orderID, runID)
		if !purchaseWait {
			return nil
		}

		var ref workflows.PurchaseRef
		if err := c.GetWorkflow(ctx, workflows.PurchaseWorkflowID(orderID), runID).Get(ctx, &ref); err != nil {
			return fmt.Errorf("purchase workflow: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created purchase order %s (id %d)\n", ref.Name, ref.ID)
		return nil
	},
}

var purchaseStatusCmd = &cobra.Command{
	Use:   "status <order-id>",
	Short: "Describe the purchase workflow of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		c, err := dialTemporal()
		if err != nil {
			return err
		}
		defer c.Close()

		resp, err := c.DescribeWorkflowExecution(cmd.Context(), workflows.PurchaseWorkflowID(orderID), "")
		if err != nil {
			return fmt.Errorf("describe purchase workflow: %w", err)
		}
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp.GetWorkflowExecutionInfo())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func parseOrderID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", arg)
	}
	return id, nil
}

func dialTemporal() (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	return c, nil
}

func init() {
	purchaseCmd.AddCommand(purchaseStatusCmd)
	purchaseCmd.Flags().StringVar(&purchaseActor, "actor", "fieldctl", "Name recorded on the status change")
	purchaseCmd.Flags().BoolVar(&purchaseWait, "wait", false, "Wait for the workflow to finish")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/fieldops/internal/adapters/nats"
	"github.com/samirrijal/fieldops/internal/core/domain"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print location and order status events as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "fieldctl")
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var mu sync.Mutex
		enc := json.NewEncoder(cmd.OutOrStdout())
		emit := func(v any) error {
			mu.Lock()
			defer mu.Unlock()
			return enc.Encode(v)
		}
		err = sub.SubscribeLocationEvents(ctx, func(_ context.Context, e *domain.LocationEvent) error {
			return emit(e)
		})
		if err != nil {
			return fmt.Errorf("subscribe locations: %w", err)
		}
		err = sub.SubscribeOrderStatus(ctx, func(_ context.Context, e *domain.OrderStatusEvent) error {
			return emit(e)
		})
		if err != nil {
			return fmt.Errorf("subscribe orders: %w", err)
		}

		<-ctx.Done()
		return nil
	},
}

package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductAddedEvent(ctx context.Context, ev ProductAddedEvent) error {
	s.logger.InfoContext(ctx, "product added",
		slog.Int64("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.String("category", ev.Category),
		slog.Int("quantity", ev.Quantity),
	)
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", ev.ProductID))
	return nil
}

func (s *Service) handleInventoryImportedEvent(ctx context.Context, ev InventoryImportedEvent) error {
	s.logger.InfoContext(ctx, "inventory imported",
		slog.String("batch_id", ev.BatchID),
		slog.Any("files", ev.Files),
		slog.Int64("rows", ev.Rows),
	)
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/inventory/internal/apperr"
	"github.com/tuanvumaihuynh/inventory/internal/repository"
	"github.com/tuanvumaihuynh/inventory/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory/pkg/outbox"
	"github.com/tuanvumaihuynh/inventory/pkg/validator"
)

var tracer = otel.Tracer("internal/service")

// validationError converts validator failures into apperr.ValidationErr and
// passes any other error through unchanged.
func validationError(err error) error {
	var verrs govalidator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.ValidationErr.WrapParent(err).WithMsg("%s", validator.Describe(verrs))
	}
	return err
}

// publishEvent records ev in the outbox using tx. It is a no-op when outboxRepo is nil.
func publishEvent(ctx context.Context, outboxRepo repository.OutboxMsgRepository, tx db.DB, topic string, key *string, ev any) error {
	if outboxRepo == nil {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := outboxRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: key,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

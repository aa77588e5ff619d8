// Package event applies catalog change events to the search index.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalogsearch/internal/domain"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
	pkgkafka "github.com/utafrali/catalogsearch/pkg/kafka"
)

// Kafka topics consumed by the search service. Created and updated events
// carry the full record; deleted events carry only its id.
var (
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
	TopicCategoryCreated = pkgkafka.Topic("category", "created")
	TopicCategoryUpdated = pkgkafka.Topic("category", "updated")
	TopicCategoryDeleted = pkgkafka.Topic("category", "deleted")
)

// Topics lists every topic Handle understands.
func Topics() []string {
	return []string{
		TopicProductCreated, TopicProductUpdated, TopicProductDeleted,
		TopicCategoryCreated, TopicCategoryUpdated, TopicCategoryDeleted,
	}
}

// Syncer is the incremental write path of the index.
type Syncer interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertCategory(ctx context.Context, c *domain.Category) error
	Remove(ctx context.Context, id string) error
}

// DeletedData is the payload of *.deleted events.
type DeletedData struct {
	ID string `json:"id"`
}

// Consumer maps catalog events onto index mutations.
type Consumer struct {
	sync   Syncer
	logger *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(sync Syncer, logger *slog.Logger) *Consumer {
	return &Consumer{sync: sync, logger: logger}
}

// Handle processes a Kafka event based on its type. Records the index
// rejects as invalid are logged and dropped rather than retried.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	var err error
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		var p domain.Product
		if err = event.UnmarshalData(&p); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
		err = c.sync.UpsertProduct(ctx, &p)
	case TopicCategoryCreated, TopicCategoryUpdated:
		var cat domain.Category
		if err = event.UnmarshalData(&cat); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
		err = c.sync.UpsertCategory(ctx, &cat)
	case TopicProductDeleted, TopicCategoryDeleted:
		var data DeletedData
		if err = event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
		err = c.sync.Remove(ctx, data.ID)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if errors.Is(err, apperrors.ErrInvalidInput) {
		c.logger.WarnContext(ctx, "dropping invalid catalog event",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", event.EventType, err)
	}

	c.logger.DebugContext(ctx, "applied catalog event",
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

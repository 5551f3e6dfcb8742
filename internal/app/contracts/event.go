package contracts

import (
	"context"
	"hospital-service/internal/app/models"
)

type EventPublisher interface {
	Publish(ctx context.Context, event *models.Event) error
}

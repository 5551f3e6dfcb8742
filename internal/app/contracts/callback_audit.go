package contracts

import (
	"context"
	"hospital-service/internal/app/models"
)

type CallbackAuditRepository interface {
	Insert(ctx context.Context, audit *models.CallbackAudit) error
}

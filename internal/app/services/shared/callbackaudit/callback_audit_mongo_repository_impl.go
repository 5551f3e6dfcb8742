package callbackaudit

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/mongo"
)

type callbackAuditMongoRepository struct {
	Collection *mongo.Collection
}

// NewCallbackAuditMongoRepository stores every raw M-Pesa callback so disputes can be replayed.
func NewCallbackAuditMongoRepository(db *mongo.Database, collectionName string) contracts.CallbackAuditRepository {
	return &callbackAuditMongoRepository{
		Collection: db.Collection(collectionName),
	}
}

func (r *callbackAuditMongoRepository) Insert(ctx context.Context, audit *models.CallbackAudit) error {
	_, err := r.Collection.InsertOne(ctx, audit)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

package contracts

import (
	"context"
	"time"
)

type Storage interface {
	UploadJSON(ctx context.Context, bucketName, objectName string, payload interface{}) error
	ObjectExists(ctx context.Context, bucketName, objectName string) (bool, error)
	GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error)
}

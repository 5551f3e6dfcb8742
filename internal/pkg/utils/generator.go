package utils

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IsUUID reports whether value can be bound to a UUID column.
func IsUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

// GenerateTransactionReference returns HMS-<unix millis>-<8 hex chars>.
func GenerateTransactionReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", constvars.TransactionReferencePrefix, now.UnixMilli(), suffix)
}

func GenerateReceiptObjectName(reference string) string {
	return fmt.Sprintf("receipts/%s.json", reference)
}

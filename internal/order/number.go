package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a customer-facing reference such as
// ORD-20261018-9F3A1C2B.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}

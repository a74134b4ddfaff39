package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCustomRequestID builds the human-readable request identifier shown on
// receipts and tracking screens: prefix, creation date and time, a short
// random component, and the requester id truncated to four digits. It is
// assigned exactly once at request creation.
func NewCustomRequestID(createdAt time.Time, requesterID int32) string {
	rand := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BRGY-%s-%s-%04d",
		createdAt.UTC().Format("060102-1504"),
		rand,
		requesterID%10000,
	)
}

// NewReceiptNumber builds an official receipt number, assigned exactly once
// when a request is paid.
func NewReceiptNumber(paidAt time.Time) string {
	rand := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("OR-%s-%s", paidAt.UTC().Format("20060102"), rand)
}

// NewReservationToken identifies one stock reservation for later release.
func NewReservationToken() string {
	return uuid.NewString()
}

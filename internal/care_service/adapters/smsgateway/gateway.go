// Package smsgateway talks to the HTTP modem gateway that owns the physical
// SIM lines. The gateway submits parts to the network and posts sent,
// delivery and incoming callbacks back to this service.
package smsgateway

import (
	"context"

	"github.com/boostgo/customercare/internal/care_service/domain"
)

// Line is one SIM slot exposed by the gateway.
type Line struct {
	ID        string `json:"id"`
	SlotIndex int    `json:"slot_index"`
	Number    string `json:"number"`  // subscriber number, empty when the SIM does not report one
	Carrier   string `json:"carrier"` // operator name as reported by the gateway, may be empty
}

// SendPartRequest submits one SMS part on a specific line. Ref is echoed
// back verbatim in the sent callback.
type SendPartRequest struct {
	LineID                string         `json:"line_id"`
	Destination           string         `json:"destination"`
	Body                  string         `json:"body"`
	Ref                   domain.PartRef `json:"ref"`
	RequestDeliveryReport bool           `json:"request_delivery_report"`
}

type Gateway interface {
	// Lines lists the SIM slots currently available for sending.
	Lines(ctx context.Context) ([]Line, error)
	// SendAuthorized reports whether the gateway currently permits sending.
	SendAuthorized(ctx context.Context) (bool, error)
	SendPart(ctx context.Context, req SendPartRequest) error
	// RunUSSD executes a USSD code on the given line and returns the raw
	// network response text.
	RunUSSD(ctx context.Context, lineID, code string) (string, error)
}

package domain

// PartRef is the opaque reference attached to each submitted SMS part. The
// gateway echoes it back verbatim in sent callbacks so results can be keyed
// to the originating message.
type PartRef struct {
	MessageID string `json:"message_id"`
	PartNo    int    `json:"part_no"`
	LastPart  bool   `json:"last_part"`
}

// Gateway result codes reported in sent callbacks.
const (
	SentResultOK = 0 // part accepted by the network
)

// Delivery report status buckets. Values below FirstFailed that are not
// Complete indicate a still-pending report and are ignored.
const (
	DeliveryStatusComplete    = 0
	DeliveryStatusFirstFailed = 64
)

// SentEvent reports the network acceptance outcome of a single submitted
// part. Only the event carrying the last part of a message advances the
// message lifecycle.
type SentEvent struct {
	LineID     string  `json:"line_id"`
	Ref        PartRef `json:"ref"`
	ResultCode int     `json:"result_code"`
}

// DeliveryEvent is a handset delivery report for a message. Reports are
// requested on the final part only, so one event settles the whole message.
type DeliveryEvent struct {
	LineID    string `json:"line_id"`
	MessageID string `json:"message_id"`
	Status    int    `json:"status"`
}

// IncomingSMS is a mobile-originated message received on one of the
// gateway's lines.
type IncomingSMS struct {
	LineID string `json:"line_id"`
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Source identifies which backing table a notification came from. It decides
// which read-status mechanism applies when the notification is marked read.
type Source string

const (
	// SourceAuto asks read-marking to detect the source by trial.
	SourceAuto        Source = ""
	SourceGlobal      Source = "global"
	SourceTransaction Source = "transaction"
)

// String returns the wire value, using "auto" for the unspecified source.
func (s Source) String() string {
	if s == SourceAuto {
		return "auto"
	}
	return string(s)
}

// ParseSource converts a wire value back into a Source. "auto" and the empty
// string both map to SourceAuto.
func ParseSource(v string) (Source, error) {
	switch v {
	case "", "auto":
		return SourceAuto, nil
	case string(SourceGlobal):
		return SourceGlobal, nil
	case string(SourceTransaction):
		return SourceTransaction, nil
	default:
		return SourceAuto, fmt.Errorf("unknown notification source %q", v)
	}
}

// Notification is the unified, normalized shape of a notification from
// either source, as seen by one member.
type Notification struct {
	// ID is unique within its source table only.
	ID string `json:"id"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// Category is the type tag; it routes listing and drives display.
	Category Category `json:"category"`

	// Payload is the category-specific attachment, nil when absent.
	Payload Payload `json:"payload,omitempty"`

	// IsRead is the member's read state. For global notifications it comes
	// from the read-status side table and defaults to false.
	IsRead bool `json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source Source `json:"source"`

	// TransactionRef is set only for SourceTransaction.
	TransactionRef string `json:"transaction_ref,omitempty"`

	// GlobalRef is set only for SourceGlobal.
	GlobalRef string `json:"global_ref,omitempty"`

	// MemberID is the requesting member; it is never stored on the record.
	MemberID string `json:"member_id"`
}

// UnmarshalJSON decodes a Notification, choosing the payload variant from
// the category.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var aux struct {
		plain
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	payload, err := DecodePayload(aux.Category, aux.Payload)
	if err != nil {
		return fmt.Errorf("decoding payload of notification %s: %w", aux.ID, err)
	}

	*n = Notification(aux.plain)
	n.Payload = payload
	return nil
}

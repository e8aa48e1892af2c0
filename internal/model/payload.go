package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Payload is the structured attachment of a notification. The concrete type
// depends on the category: TransactionPayload, BroadcastPayload, or
// GenericPayload for categories without a known schema.
type Payload interface {
	payloadKind() string
}

// TransactionPayload is attached to transactional notifications.
type TransactionPayload struct {
	TransactionID string   `json:"transaction_id,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// BroadcastPayload is attached to global notifications.
type BroadcastPayload struct {
	Link      string `json:"link,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// GenericPayload carries arbitrary key-value data for unknown categories.
type GenericPayload map[string]any

func (TransactionPayload) payloadKind() string { return "transaction" }
func (BroadcastPayload) payloadKind() string   { return "broadcast" }
func (GenericPayload) payloadKind() string     { return "generic" }

// DecodePayload parses raw into the payload variant registered for
// category. An empty or null raw value yields a nil Payload.
func DecodePayload(category Category, raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch category {
	case CategoryDueDate, CategoryPayment, CategoryTransactionUpdate, CategoryReminder:
		var p TransactionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", category, err)
		}
		return p, nil
	case CategoryAnnouncement, CategorySystem, CategoryMaintenance, CategoryPromotion:
		var p BroadcastPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", category, err)
		}
		return p, nil
	default:
		var p GenericPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", category, err)
		}
		return p, nil
	}
}

// EncodePayload serializes p into its storage form.
func EncodePayload(p Payload) (RawPayload, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return RawPayload(b), nil
}

// RawPayload is the undecoded JSON payload as stored in the backend. It
// scans from SQLite TEXT columns and passes through JSON untouched.
type RawPayload []byte

// Scan implements sql.Scanner.
func (p *RawPayload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case string:
		*p = RawPayload(v)
	case []byte:
		*p = append(RawPayload(nil), v...)
	default:
		return fmt.Errorf("scanning payload: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (p RawPayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

// MarshalJSON implements json.Marshaler.
func (p RawPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *RawPayload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	*p = append((*p)[:0], data...)
	return nil
}

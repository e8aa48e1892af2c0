package model

// The record types below mirror backend rows. Timestamps stay as the strings
// the backend returns; normalization parses them (see ParseTimestamp).

// Transaction is a member's financial transaction. Transaction
// notifications belong to a member through it.
type Transaction struct {
	ID        string  `json:"id" db:"id"`
	MemberID  string  `json:"member_id" db:"member_id"`
	Title     string  `json:"title" db:"title"`
	Amount    float64 `json:"amount" db:"amount"`
	DueDate   *string `json:"due_date,omitempty" db:"due_date"`
	Status    string  `json:"status" db:"status"`
	CreatedAt string  `json:"created_at" db:"created_at"`
}

// TransactionNotification is scoped to exactly one transaction and carries
// its own read flag.
type TransactionNotification struct {
	ID            string     `json:"id" db:"id"`
	TransactionID string     `json:"transaction_id" db:"transaction_id"`
	Category      Category   `json:"category" db:"category"`
	Title         string     `json:"title" db:"title"`
	Body          string     `json:"body" db:"body"`
	Payload       RawPayload `json:"payload" db:"payload"`
	IsRead        *bool      `json:"is_read" db:"is_read"`
	CreatedAt     string     `json:"created_at" db:"created_at"`
	UpdatedAt     *string    `json:"updated_at" db:"updated_at"`
}

// GlobalNotification is a broadcast record with no owning member. Its
// category may be empty and is never defaulted.
type GlobalNotification struct {
	ID        string     `json:"id" db:"id"`
	Category  Category   `json:"category" db:"category"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	Payload   RawPayload `json:"payload" db:"payload"`
	CreatedAt string     `json:"created_at" db:"created_at"`
	UpdatedAt *string    `json:"updated_at" db:"updated_at"`
}

// GlobalNotificationView is a global notification pre-joined with one
// member's read flag. IsRead is nil when the member has no read-status row.
type GlobalNotificationView struct {
	GlobalNotification
	IsRead *bool `json:"is_read" db:"is_read"`
}

// GlobalReadStatus is the join row holding one member's read state for one
// global notification. At most one row exists per pair.
type GlobalReadStatus struct {
	ID                   string  `json:"id" db:"id"`
	GlobalNotificationID string  `json:"global_notification_id" db:"global_notification_id"`
	MemberID             string  `json:"member_id" db:"member_id"`
	IsRead               bool    `json:"is_read" db:"is_read"`
	CreatedAt            string  `json:"created_at" db:"created_at"`
	UpdatedAt            *string `json:"updated_at" db:"updated_at"`
}

// PrivilegedResult is the structured reply of the privileged mark-as-read
// procedure.
type PrivilegedResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

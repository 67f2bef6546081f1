package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry owned by a user.
type Transaction struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	UserID    uuid.UUID         `db:"user_id" json:"user_id"`
	Type      TransactionType   `db:"type" json:"type"`
	Amount    decimal.Decimal   `db:"amount" json:"amount"`
	Category  string            `db:"category" json:"category"`
	Date      time.Time         `db:"txn_date" json:"date"`
	Notes     string            `db:"notes" json:"notes"`
	Source    TransactionSource `db:"source" json:"source"`
	ReceiptID *uuid.UUID        `db:"receipt_id" json:"receipt_id,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// Receipt is the persisted result of one receipt upload.
type Receipt struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	UserID        uuid.UUID           `db:"user_id" json:"user_id"`
	OriginalName  string              `db:"original_name" json:"original_name"`
	ContentType   string              `db:"content_type" json:"content_type"`
	FileSize      int64               `db:"file_size" json:"file_size"`
	S3Bucket      string              `db:"s3_bucket" json:"-"`
	S3Key         string              `db:"s3_key" json:"-"`
	Provider      string              `db:"provider" json:"provider"`
	Amount        decimal.NullDecimal `db:"amount" json:"amount"`
	ReceiptDate   *time.Time          `db:"receipt_date" json:"date"`
	DateDefaulted bool                `db:"date_defaulted" json:"date_defaulted"`
	Merchant      *string             `db:"merchant" json:"merchant"`
	Category      string              `db:"category" json:"category"`
	LineItems     StringList          `db:"line_items" json:"line_items"`
	MissingFields StringList          `db:"missing_fields" json:"missing_fields"`
	Confidence    float64             `db:"confidence" json:"confidence"`
	IsValid       bool                `db:"is_valid" json:"is_valid"`
	TransactionID *uuid.UUID          `db:"transaction_id" json:"transaction_id,omitempty"`
	UploadedAt    time.Time           `db:"uploaded_at" json:"uploaded_at"`
}

// StringList is a string slice stored as a JSONB array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("StringList.Scan: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// TransactionFilter narrows transaction listings. Zero values mean no bound.
type TransactionFilter struct {
	Type     TransactionType
	Category string
	From     *time.Time
	To       *time.Time
}

// TypeTotal is the sum of all transactions of one type.
type TypeTotal struct {
	Type  TransactionType `db:"type" json:"type"`
	Total decimal.Decimal `db:"total" json:"total"`
}

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string          `db:"category" json:"category"`
	Total    decimal.Decimal `db:"total" json:"total"`
}

// MonthlyTotal is the summed expense amount for one calendar month (YYYY-MM).
type MonthlyTotal struct {
	Month string          `db:"month" json:"month"`
	Total decimal.Decimal `db:"total" json:"total"`
}

// StatsSummary aggregates a user's transactions.
type StatsSummary struct {
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetBalance     decimal.Decimal `json:"net_balance"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	MonthlyTotals  []MonthlyTotal  `json:"monthly_totals"`
	// MonthOverMonthChange is the percent change between the last two
	// months with expenses, rounded to two places.
	MonthOverMonthChange decimal.Decimal `json:"month_over_month_change"`
}

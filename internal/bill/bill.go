package bill

import "time"

// Status is the review state of an expense bill.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// ExpenseTypes is the fixed category list offered by the new-bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// ValidExpenseType reports whether t is one of the known categories.
func ValidExpenseType(t string) bool {
	for _, known := range ExpenseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Bill represents one expense claim as the store holds it.
//
// Amount and VAT are pointers: an empty form field stays absent rather
// than being coerced to 0, and the display layer must tolerate that.
type Bill struct {
	ID         string     `json:"id,omitempty"`
	Email      string     `json:"email"`
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	Amount     *float64   `json:"amount,omitempty"`
	VAT        *float64   `json:"vat,omitempty"`
	Pct        int        `json:"pct"`
	Commentary string     `json:"commentary"`
	FileName   string     `json:"fileName"`
	FileURL    string     `json:"fileUrl"`
	Status     Status     `json:"status"`
	Date       string     `json:"date"` // ISO 8601 submission date
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// FormattedBill is the list-display projection of a Bill: the date
// rewritten into the localized short form and the status into its
// display label. When date formatting fails the raw date is kept.
type FormattedBill struct {
	Bill
	Date   string `json:"date"`
	Status string `json:"status"`
}

// UploadResult is what the store hands back after a receipt file is
// uploaded: the record key the later update is selected by, and where
// the stored file can be fetched from.
type UploadResult struct {
	Key      string `json:"key"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"-"`
}

// Session is the logged-in user's identity as persisted by the session
// store under the "user" record.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

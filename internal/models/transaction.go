package models

import "time"

// Category is one value from the fixed internal taxonomy.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryMarket        Category = "Market"
	CategoryTransport     Category = "Transport"
	CategoryHealth        Category = "Health"
	CategoryLeisure       Category = "Leisure"
	CategorySubscriptions Category = "Subscriptions"
	CategoryOther         Category = "Other"
)

// ParsedTransaction is the pipeline's atomic output unit. Amount is always a
// positive magnitude: sign resolution (debit vs. credit) happens inside the
// parsers, and only debits survive.
type ParsedTransaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Installment string    `json:"installment,omitempty"` // "k/n" when detected
	Raw         *RawData  `json:"rawData,omitempty"`
}

// RawData captures what the parser saw before normalization. Diagnostic only;
// nothing downstream interprets it.
type RawData struct {
	LineNumber       int     `json:"lineNumber,omitempty"`
	OriginalCategory string  `json:"originalCategory,omitempty"`
	OriginalAmount   float64 `json:"originalAmount,omitempty"`
}

// ParseMetadata is derived from the retained transactions, never authoritative.
type ParseMetadata struct {
	BankName        string  `json:"bankName,omitempty"`
	TotalAmount     float64 `json:"totalAmount,omitempty"`
	StatementPeriod string  `json:"statementPeriod,omitempty"` // e.g. "Jan 2024 - Mar 2024"
}

// ParseResult is the pipeline's terminal output. Errors carries warnings when
// Success is true and fatal reasons when it is false. Success with non-empty
// Errors is the expected outcome for files with some malformed lines.
type ParseResult struct {
	Success      bool                `json:"success"`
	Transactions []ParsedTransaction `json:"transactions"`
	Errors       []string            `json:"errors"`
	Metadata     *ParseMetadata      `json:"metadata,omitempty"`
}

// Failed builds a fatal ParseResult from the given reasons.
func Failed(reasons ...string) *ParseResult {
	return &ParseResult{
		Success:      false,
		Transactions: []ParsedTransaction{},
		Errors:       reasons,
	}
}

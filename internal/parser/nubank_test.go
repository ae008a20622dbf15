package parser

import (
	"strings"
	"testing"

	"github.com/insightdelivered/statement-importer/internal/models"
)

func nubankFile(lines ...string) *models.RawFile {
	content := []byte(strings.Join(append([]string{"date,category,title,amount"}, lines...), "\n"))
	return &models.RawFile{Name: "nubank-2024-01.csv", Size: int64(len(content)), Content: content}
}

func TestNubankCanParse(t *testing.T) {
	tests := []struct {
		name     string
		file     *models.RawFile
		expected bool
	}{
		{"valid export", nubankFile(`2024-01-15,lazer,"Cinema",-30.00`), true},
		{"header only", nubankFile(), true},
		{"wrong extension", &models.RawFile{Name: "x.ofx", Size: 10, Content: []byte("date,category,title,amount")}, false},
		{"wrong header", &models.RawFile{Name: "x.csv", Size: 30, Content: []byte("Data Lançamento;Descrição;Valor")}, false},
		{"empty", &models.RawFile{Name: "x.csv"}, false},
	}

	p := &NubankParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.CanParse(tt.file); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNubankParse(t *testing.T) {
	p := &NubankParser{}
	file := nubankFile(
		`2024-01-15,outros,"Market X",-45.90`,
		`2024-01-16,lazer,"Cinema",-30.00`,
		`2024-01-20,outros,"Estorno compra",120.00`,
	)

	res, err := p.Parse(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(res.Transactions))
	}

	txn := res.Transactions[0]
	if txn.Amount != 45.90 {
		t.Errorf("txn[0].Amount: got %f, want 45.90", txn.Amount)
	}
	if txn.Description != "Market X" {
		t.Errorf("txn[0].Description: got %q", txn.Description)
	}
	if txn.Category != models.CategoryMarket {
		t.Errorf("txn[0].Category: got %q, want Market", txn.Category)
	}
	if txn.Date.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("txn[0].Date: got %s", txn.Date.Format("2006-01-02"))
	}
	if txn.Raw == nil || txn.Raw.OriginalAmount != -45.90 || txn.Raw.LineNumber != 2 {
		t.Errorf("txn[0].Raw: got %+v", txn.Raw)
	}

	txn = res.Transactions[1]
	if txn.Amount != 30.00 {
		t.Errorf("txn[1].Amount: got %f, want 30.00", txn.Amount)
	}
	if txn.Category != models.CategoryLeisure {
		t.Errorf("txn[1].Category: got %q, want Leisure", txn.Category)
	}

	// The credit is excluded but only reported as one aggregate notice,
	// not a per-line error.
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "credit") {
		t.Errorf("errors: got %v, want a single credit notice", res.Errors)
	}
}

// A file with N data lines of which M are malformed yields N-M transactions
// and at least M warnings, still successfully.
func TestNubankParsePartialSuccess(t *testing.T) {
	p := &NubankParser{}
	file := nubankFile(
		`2024-01-15,outros,"Market X",-45.90`,
		`not-a-date,outros,"Broken",-1.00`,
		`2024-01-16,lazer,"Cinema",-30.00`,
		`2024-01-17,outros,"No amount",abc`,
		`2024-01-18,outros`,
	)

	res, err := p.Parse(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected partial success, errors: %v", res.Errors)
	}
	if len(res.Transactions) != 2 {
		t.Errorf("transactions: got %d, want 2", len(res.Transactions))
	}
	if len(res.Errors) < 3 {
		t.Errorf("warnings: got %d (%v), want at least 3", len(res.Errors), res.Errors)
	}
	for _, e := range res.Errors {
		if !strings.Contains(e, "line") {
			t.Errorf("warning without line number: %q", e)
		}
	}
}

func TestNubankParseInstallment(t *testing.T) {
	p := &NubankParser{}
	file := nubankFile(`2024-01-15,outros,"Magazine Luiza 2/10 SP",-99.90`)

	res, err := p.Parse(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(res.Transactions))
	}
	txn := res.Transactions[0]
	if txn.Installment != "2/10" {
		t.Errorf("installment: got %q, want %q", txn.Installment, "2/10")
	}
	// The pattern stays in the description.
	if txn.Description != "Magazine Luiza 2/10 SP" {
		t.Errorf("description altered: %q", txn.Description)
	}
}

func TestNubankParseAllCredits(t *testing.T) {
	p := &NubankParser{}
	file := nubankFile(`2024-01-20,outros,"Pagamento recebido",500.00`)

	res, err := p.Parse(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("expected failure when no debits remain")
	}
	if len(res.Errors) == 0 {
		t.Error("expected a 'no transactions' error")
	}
}

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/parser"
)

func nubankCSV(lines ...string) *models.RawFile {
	content := []byte(strings.Join(append([]string{"date,category,title,amount"}, lines...), "\n"))
	return &models.RawFile{Name: "fatura.csv", Size: int64(len(content)), Content: content}
}

func TestImportStatementValidation(t *testing.T) {
	imp := NewImporter()
	ctx := context.Background()

	tests := []struct {
		name    string
		file    *models.RawFile
		wantMsg string
	}{
		{"nil file", nil, "no file"},
		{"empty file", &models.RawFile{Name: "x.csv"}, "empty"},
		{"zero declared size", &models.RawFile{Name: "x.csv", Content: []byte("data")}, "empty"},
		{"oversized", &models.RawFile{Name: "x.csv", Size: DefaultMaxFileSize + 1, Content: []byte("data")}, "maximum size"},
		{"unknown extension", &models.RawFile{Name: "x.xlsx", Size: 4, Content: []byte("data")}, "unsupported file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := imp.ImportStatement(ctx, tt.file)
			if res.Success {
				t.Fatal("expected failure")
			}
			if len(res.Errors) == 0 {
				t.Fatal("expected a non-empty error list")
			}
			if !strings.Contains(strings.Join(res.Errors, " "), tt.wantMsg) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.wantMsg)
			}
		})
	}
}

func TestImportStatementEndToEnd(t *testing.T) {
	imp := NewImporter()
	file := nubankCSV(
		`2024-01-15,outros,"Market X",-45.90`,
		`2024-01-16,lazer,"Cinema",-30.00`,
		`2024-03-10,transporte,"Uber",-12.50`,
		`2024-01-15,outros,"Market X",-45.90`, // structural duplicate
	)

	res := imp.ImportStatement(context.Background(), file)
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("transactions after dedup: got %d, want 3", len(res.Transactions))
	}
	for _, txn := range res.Transactions {
		if txn.Amount <= 0 {
			t.Errorf("retained transaction with non-positive amount: %+v", txn)
		}
	}

	if res.Metadata == nil {
		t.Fatal("expected metadata")
	}
	if res.Metadata.BankName != "Nubank" {
		t.Errorf("bank: got %q", res.Metadata.BankName)
	}
	if want := 45.90 + 30.00 + 12.50; res.Metadata.TotalAmount != want {
		t.Errorf("total: got %f, want %f", res.Metadata.TotalAmount, want)
	}
	if res.Metadata.StatementPeriod != "Jan 2024 - Mar 2024" {
		t.Errorf("period: got %q, want %q", res.Metadata.StatementPeriod, "Jan 2024 - Mar 2024")
	}
}

func TestImportStatementSingleMonthPeriod(t *testing.T) {
	imp := NewImporter()
	file := nubankCSV(`2024-01-15,outros,"Market X",-45.90`)

	res := imp.ImportStatement(context.Background(), file)
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if res.Metadata.StatementPeriod != "Jan 2024" {
		t.Errorf("period: got %q, want %q", res.Metadata.StatementPeriod, "Jan 2024")
	}
}

type panickingParser struct{}

func (panickingParser) Name() string { return "panicking" }

func (panickingParser) CanParse(*models.RawFile) bool { return true }

func (panickingParser) Parse(*models.RawFile) (*models.ParseResult, error) {
	panic("unexpected internal failure")
}

// The orchestrator is the failure boundary: a crashing parser becomes a
// fatal result, not a panic in the caller.
func TestImportStatementRecoversPanic(t *testing.T) {
	reg := parser.NewRegistry(parser.Registration{
		Parser:     panickingParser{},
		Extensions: []string{".csv"},
		Priority:   100,
	})
	imp := NewImporter(WithRegistry(reg))

	res := imp.ImportStatement(context.Background(), &models.RawFile{
		Name: "x.csv", Size: 4, Content: []byte("data"),
	})
	if res.Success {
		t.Error("expected failure")
	}
	if !strings.Contains(strings.Join(res.Errors, " "), "internal error") {
		t.Errorf("errors: %v", res.Errors)
	}
}

func TestImportStatementCustomSizeLimit(t *testing.T) {
	imp := NewImporter(WithMaxFileSize(10))
	res := imp.ImportStatement(context.Background(), &models.RawFile{
		Name: "x.csv", Size: 11, Content: []byte("12345678901"),
	})
	if res.Success {
		t.Error("expected failure above the custom limit")
	}
}

package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-importer/internal/category"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/normalize"
)

// NubankParser handles Nubank credit-card CSV exports.
//
// Layout (comma-separated, one header line):
//
//	date,category,title,amount
//
// Date format: YYYY-MM-DD. Amounts use a dot decimal. Charges are exported as
// negative numbers; payments and refunds are positive and are not statement
// expenses, so they are dropped.
type NubankParser struct{}

func (p *NubankParser) Name() string {
	return "Nubank"
}

// nubankHeader is the exact signature line of a Nubank export.
const nubankHeader = "date,category,title,amount"

func (p *NubankParser) CanParse(file *models.RawFile) bool {
	if file.Ext() != ".csv" {
		return false
	}
	if file.Size > delimitedSizeLimit || int64(len(file.Content)) > delimitedSizeLimit {
		return false
	}
	head := normalize.DecodeText(file.Prefix(probePrefixSize))
	first, _, _ := strings.Cut(head, "\n")
	return strings.EqualFold(strings.TrimSpace(first), nubankHeader)
}

func (p *NubankParser) Parse(file *models.RawFile) (*models.ParseResult, error) {
	text := normalize.DecodeText(file.Content)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	result := &models.ParseResult{Transactions: []models.ParsedTransaction{}}
	credits := 0

	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header or blank
		}
		lineNum := i + 1

		fields := splitQuoted(line, ',')
		if len(fields) < 4 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: expected 4 fields, got %d", lineNum, len(fields)))
			continue
		}

		date, err := normalize.ParseDate(fields[0])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad date %q", lineNum, strings.TrimSpace(fields[0])))
			continue
		}

		amount, err := normalize.ParseAmount(fields[3])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad amount %q", lineNum, strings.TrimSpace(fields[3])))
			continue
		}
		if amount >= 0 {
			// Payment or refund, not an expense.
			credits++
			continue
		}

		label := strings.TrimSpace(fields[1])
		desc := strings.TrimSpace(fields[2])

		result.Transactions = append(result.Transactions, models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      -amount,
			Category:    category.Resolve(label, desc),
			Installment: detectInstallment(desc),
			Raw: &models.RawData{
				LineNumber:       lineNum,
				OriginalCategory: label,
				OriginalAmount:   amount,
			},
		})
	}

	if credits > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("ignored %d credit/refund entries", credits))
	}

	if len(result.Transactions) == 0 {
		result.Success = false
		result.Errors = append(result.Errors, "no transactions found in Nubank statement")
		return result, nil
	}

	result.Success = true
	result.Metadata = &models.ParseMetadata{BankName: p.Name()}
	return result, nil
}

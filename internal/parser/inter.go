package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-importer/internal/category"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/normalize"
)

// InterParser handles Banco Inter account statement CSV exports.
//
// Layout (semicolon-separated, one header line):
//
//	Data Lançamento;Descrição;Valor;Saldo
//
// Date format: DD/MM/YYYY. Amounts use Brazilian formatting ("1.234,56").
// Debits are negative and retained; credits are positive and dropped. There
// is no category column, so classification runs on the description.
type InterParser struct{}

func (p *InterParser) Name() string {
	return "Banco Inter"
}

// The export sometimes arrives as Latin-1, so the signature check runs after
// encoding normalization and tolerates the accent being present or not.
var interHeaderTokens = []string{"data lançamento", "data lancamento"}

func (p *InterParser) CanParse(file *models.RawFile) bool {
	if file.Ext() != ".csv" {
		return false
	}
	if file.Size > delimitedSizeLimit || int64(len(file.Content)) > delimitedSizeLimit {
		return false
	}
	head := normalize.DecodeText(file.Prefix(probePrefixSize))
	first, _, _ := strings.Cut(head, "\n")
	first = strings.ToLower(strings.TrimSpace(first))
	if !strings.Contains(first, ";") {
		return false
	}
	return containsAnyFold(first, interHeaderTokens)
}

func (p *InterParser) Parse(file *models.RawFile) (*models.ParseResult, error) {
	text := normalize.DecodeText(file.Content)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	result := &models.ParseResult{Transactions: []models.ParsedTransaction{}}
	credits := 0

	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		lineNum := i + 1

		fields := splitQuoted(line, ';')
		if len(fields) < 3 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: expected at least 3 fields, got %d", lineNum, len(fields)))
			continue
		}

		date, err := normalize.ParseDate(fields[0])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad date %q", lineNum, strings.TrimSpace(fields[0])))
			continue
		}

		amount, err := normalize.ParseAmount(fields[2])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: bad amount %q", lineNum, strings.TrimSpace(fields[2])))
			continue
		}
		if amount >= 0 {
			credits++
			continue
		}

		desc := strings.TrimSpace(fields[1])

		result.Transactions = append(result.Transactions, models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      -amount,
			Category:    category.FromDescription(desc),
			Installment: detectInstallment(desc),
			Raw: &models.RawData{
				LineNumber:     lineNum,
				OriginalAmount: amount,
			},
		})
	}

	if credits > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("ignored %d credit/refund entries", credits))
	}

	if len(result.Transactions) == 0 {
		result.Success = false
		result.Errors = append(result.Errors, "no transactions found in Banco Inter statement")
		return result, nil
	}

	result.Success = true
	result.Metadata = &models.ParseMetadata{BankName: p.Name()}
	return result, nil
}

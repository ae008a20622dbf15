package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-importer/internal/category"
	"github.com/insightdelivered/statement-importer/internal/extractor"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/normalize"
)

// ManualReviewWarning always accompanies a successful unstructured-text
// parse. Callers must not silently treat this path as trustworthy.
const ManualReviewWarning = "statement was parsed from unstructured text; manual review of the extracted transactions is recommended"

// maxDescriptionLen caps descriptions recovered from unstructured text.
const maxDescriptionLen = 200

// minDescriptionLen: anything shorter is extraction noise, not a merchant.
const minDescriptionLen = 4

// TextStatementParser is the best-effort fallback for scanned or exported
// statements with no structured format: PDFs and plain text dumps. It scans
// each line for a date token followed by an amount token and treats the text
// between them as the description. Every successful parse carries
// ManualReviewWarning.
type TextStatementParser struct {
	// extract is swappable so tests can feed text without building PDFs.
	extract func(data []byte) ([]string, error)
}

// NewTextStatementParser wires the production PDF extractor.
func NewTextStatementParser() *TextStatementParser {
	return &TextStatementParser{extract: extractor.ExtractPages}
}

// knownBanks maps detection variants to the canonical issuer name. Kept as
// data so adding an issuer does not touch the scan logic.
var knownBanks = []struct {
	Name     string
	Variants []string
}{
	{"Nubank", []string{"nubank", "nu pagamentos"}},
	{"Itaú", []string{"itaú", "itau", "itaucard"}},
	{"Bradesco", []string{"bradesco"}},
	{"Santander", []string{"santander"}},
	{"Banco Inter", []string{"banco inter", "inter s.a"}},
	{"Caixa", []string{"caixa econômica", "caixa economica"}},
	{"Banco do Brasil", []string{"banco do brasil"}},
	{"C6 Bank", []string{"c6 bank"}},
}

const unknownBank = "Unknown Bank"

func (p *TextStatementParser) Name() string {
	return "Text statement"
}

var pdfMagic = []byte("%PDF-")

func (p *TextStatementParser) CanParse(file *models.RawFile) bool {
	switch file.Ext() {
	case ".pdf":
		return bytes.HasPrefix(file.Prefix(len(pdfMagic)), pdfMagic)
	case ".txt":
		head := normalize.DecodeText(file.Prefix(probePrefixSize))
		_, _, _, ok := findDateToken(head)
		return ok
	default:
		return false
	}
}

func (p *TextStatementParser) Parse(file *models.RawFile) (*models.ParseResult, error) {
	text, err := p.extractText(file)
	if err != nil {
		return models.Failed(fmt.Sprintf("could not extract text: %v", err)), nil
	}
	text = normalize.StripControl(text)

	result := &models.ParseResult{Transactions: []models.ParsedTransaction{}}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		dateToken, _, dateEnd, ok := findDateToken(line)
		if !ok {
			continue
		}
		amountToken, amountStart, ok := findAmountToken(line, dateEnd)
		if !ok {
			continue
		}

		// A date plus an amount makes this line a candidate record; from
		// here on, failures are reported rather than silently dropped.
		date, err := normalize.ParseDate(dateToken)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: unresolvable date %q", i+1, dateToken))
			continue
		}
		amount, err := normalize.ParseAmount(amountToken)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: unresolvable amount %q", i+1, amountToken))
			continue
		}
		if amount < 0 {
			amount = -amount
		}
		if amount == 0 {
			continue
		}

		desc := strings.TrimSpace(line[dateEnd:amountStart])
		desc = truncate(desc, maxDescriptionLen)
		if len([]rune(desc)) < minDescriptionLen {
			continue // noise
		}

		result.Transactions = append(result.Transactions, models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    category.FromDescription(desc),
			Installment: detectInstallment(desc),
			Raw: &models.RawData{
				LineNumber: i + 1,
			},
		})
	}

	if len(result.Transactions) == 0 {
		result.Success = false
		result.Errors = append(result.Errors, "no transactions found in statement text")
		return result, nil
	}

	result.Success = true
	result.Errors = append(result.Errors, ManualReviewWarning)
	result.Metadata = &models.ParseMetadata{BankName: detectBank(text)}
	return result, nil
}

func (p *TextStatementParser) extractText(file *models.RawFile) (string, error) {
	if file.Ext() == ".pdf" {
		pages, err := p.extract(file.Content)
		if err != nil {
			return "", err
		}
		return strings.Join(pages, "\n"), nil
	}
	return normalize.DecodeText(file.Content), nil
}

// detectBank finds the issuing bank by case-insensitive substring search
// over the known variants.
func detectBank(text string) string {
	lower := strings.ToLower(text)
	for _, bank := range knownBanks {
		for _, v := range bank.Variants {
			if strings.Contains(lower, v) {
				return bank.Name
			}
		}
	}
	return unknownBank
}

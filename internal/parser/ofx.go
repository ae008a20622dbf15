package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/insightdelivered/statement-importer/internal/category"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/normalize"
)

// OFXParser handles Open Financial Exchange files (.ofx/.qfx), the
// self-describing interchange format most banks can export. Decoding is
// delegated to ofxgo, which reads both the OFX 1.x SGML dialect and the
// 2.x XML one, including entity references like &amp; in descriptions.
//
// The detection signature ("OFXHEADER" or an OFX root element) is broad, so
// this parser registers below the institution-specific ones.
type OFXParser struct{}

func (p *OFXParser) Name() string {
	return "OFX"
}

var ofxSignatures = []string{"OFXHEADER", "<?OFX", "<OFX>"}

func (p *OFXParser) CanParse(file *models.RawFile) bool {
	ext := file.Ext()
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}
	head := normalize.DecodeText(file.Prefix(probePrefixSize))
	return containsAnyFold(head, ofxSignatures)
}

func (p *OFXParser) Parse(file *models.RawFile) (*models.ParseResult, error) {
	result := &models.ParseResult{Transactions: []models.ParsedTransaction{}}

	// Legacy exports arrive in Windows-1252 regardless of what the OFX
	// header declares, so the bytes are normalized to UTF-8 up front.
	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize.DecodeText(file.Content)))
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("malformed OFX document: %v", err))
		return result, nil
	}

	credits := 0
	record := 0
	for _, list := range ofxTranLists(resp, result) {
		for _, txn := range list.Transactions {
			record++
			p.convert(txn, record, result, &credits)
		}
	}

	if record == 0 {
		result.Success = false
		result.Errors = append(result.Errors, "no transaction records found in OFX document")
		return result, nil
	}

	if credits > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("ignored %d credit/refund entries", credits))
	}

	if len(result.Transactions) == 0 {
		result.Success = false
		result.Errors = append(result.Errors, "no debit transactions found in OFX document")
		return result, nil
	}

	result.Success = true
	result.Metadata = &models.ParseMetadata{BankName: p.bankName(resp)}
	return result, nil
}

// ofxTranLists collects the statement transaction lists from the bank and
// credit-card message sets. A message of an unexpected concrete type is
// reported and skipped rather than failing the whole document.
func ofxTranLists(resp *ofxgo.Response, result *models.ParseResult) []*ofxgo.TransactionList {
	var lists []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("unsupported bank message type %T", msg))
			continue
		}
		if stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("unsupported credit card message type %T", msg))
			continue
		}
		if stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	return lists
}

func (p *OFXParser) convert(txn ofxgo.Transaction, record int, result *models.ParseResult, credits *int) {
	posted := txn.DtPosted.Time
	if posted.IsZero() {
		result.Errors = append(result.Errors, fmt.Sprintf("record %d: missing DTPOSTED", record))
		return
	}
	date := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)

	amount, _ := txn.TrnAmt.Float64()
	original := amount

	isDebit := amount < 0 || txn.TrnType == ofxgo.TrnTypeDebit
	if !isDebit {
		*credits++
		return
	}
	if amount < 0 {
		amount = -amount
	}
	if amount == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("record %d: zero amount", record))
		return
	}

	desc := strings.TrimSpace(txn.Memo.String())
	if desc == "" {
		desc = strings.TrimSpace(txn.Name.String())
	}

	result.Transactions = append(result.Transactions, models.ParsedTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Category:    category.FromDescription(desc),
		Installment: detectInstallment(desc),
		Raw: &models.RawData{
			LineNumber:       record,
			OriginalCategory: txn.TrnType.String(),
			OriginalAmount:   original,
		},
	})
}

// bankName pulls the issuing institution from the signon <ORG> element when
// present.
func (p *OFXParser) bankName(resp *ofxgo.Response) string {
	if org := strings.TrimSpace(resp.Signon.Org.String()); org != "" {
		return org
	}
	return p.Name()
}

package pipeline

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// Dedupe removes transactions that are structurally identical within one
// parse pass: same calendar day, same trimmed description (case-sensitive),
// same amount. The first occurrence wins and relative order is preserved.
// Idempotent: running it on its own output changes nothing. Cross-call
// dedup against persisted data is the ledger's job, not ours.
func Dedupe(txns []models.ParsedTransaction) []models.ParsedTransaction {
	if len(txns) < 2 {
		return txns
	}

	seen := make(map[uint64]bool, len(txns))
	out := make([]models.ParsedTransaction, 0, len(txns))
	for _, t := range txns {
		key := dedupeKey(&t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// dedupeKey hashes the identity triple. A 64-bit xxhash over the joined
// fields is plenty for a single statement's worth of records.
func dedupeKey(t *models.ParsedTransaction) uint64 {
	var b strings.Builder
	b.WriteString(t.Date.Format("2006-01-02"))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(t.Description))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(t.Amount, 'f', 2, 64))
	return xxhash.Sum64String(b.String())
}

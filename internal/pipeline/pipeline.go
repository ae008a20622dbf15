// Package pipeline is the public entry point of the statement import
// subsystem: file validation, format detection, and assembly of the final
// normalized result. It is also the failure boundary — nothing below it may
// leak a panic or an unhandled error to the caller.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-importer/internal/logger"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/parser"
)

// DefaultMaxFileSize is the orchestrator-level size ceiling.
const DefaultMaxFileSize = 10 << 20

// Importer runs uploaded statement files through the parsing pipeline. It
// holds only read-only configuration, so one Importer serves concurrent
// imports without coordination.
type Importer struct {
	registry    *parser.Registry
	maxFileSize int64
}

// Option configures an Importer.
type Option func(*Importer)

// WithMaxFileSize overrides the 10 MiB default ceiling.
func WithMaxFileSize(n int64) Option {
	return func(imp *Importer) { imp.maxFileSize = n }
}

// WithRegistry substitutes the parser registry, mainly for tests.
func WithRegistry(r *parser.Registry) Option {
	return func(imp *Importer) { imp.registry = r }
}

// NewImporter builds an Importer over the default parser registry.
func NewImporter(opts ...Option) *Importer {
	imp := &Importer{
		registry:    parser.DefaultRegistry(),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportStatement converts one uploaded file into a normalized ParseResult.
// It never returns a Go error and never panics: validation failures, parser
// failures and internal faults all come back as Success=false results.
func (imp *Importer) ImportStatement(ctx context.Context, file *models.RawFile) (result *models.ParseResult) {
	log := logger.FromContext(ctx)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("file", fileName(file)).Msg("import crashed")
			result = models.Failed(fmt.Sprintf("internal error while importing statement: %v", rec))
		}
	}()

	if res := imp.validate(file); res != nil {
		log.Warn().Str("file", fileName(file)).Strs("errors", res.Errors).Msg("statement rejected before parsing")
		return res
	}

	result = imp.registry.Detect(file)
	result.Transactions = Dedupe(result.Transactions)
	attachMetadata(result)

	logResult(log, file, result, time.Since(start))
	return result
}

// validate applies the file-level checks that run before any parser is
// consulted. Returns nil when the file is acceptable.
func (imp *Importer) validate(file *models.RawFile) *models.ParseResult {
	if file == nil {
		return models.Failed("no file provided")
	}
	if len(file.Content) == 0 || file.Size == 0 {
		return models.Failed("file is empty")
	}
	if file.Size > imp.maxFileSize || int64(len(file.Content)) > imp.maxFileSize {
		return models.Failed(fmt.Sprintf("file exceeds the maximum size of %d bytes", imp.maxFileSize))
	}
	if ext := file.Ext(); !imp.registry.Supports(ext) {
		return models.Failed(fmt.Sprintf("unsupported file extension %q: accepted extensions are %v", ext, imp.registry.SupportedExtensions()))
	}
	return nil
}

// attachMetadata fills in the derived fields the winning parser left blank:
// retained total and statement period. Bank name stays whatever the parser
// reported.
func attachMetadata(result *models.ParseResult) {
	if !result.Success || len(result.Transactions) == 0 {
		return
	}
	if result.Metadata == nil {
		result.Metadata = &models.ParseMetadata{}
	}

	var total float64
	for _, t := range result.Transactions {
		total += t.Amount
	}
	result.Metadata.TotalAmount = total
	result.Metadata.StatementPeriod = statementPeriod(result.Transactions)
}

// statementPeriod formats the min/max transaction months, e.g.
// "Jan 2024 - Mar 2024", collapsing to one token for a single month.
func statementPeriod(txns []models.ParsedTransaction) string {
	dates := make([]time.Time, len(txns))
	for i, t := range txns {
		dates[i] = t.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	first := dates[0].Format("Jan 2006")
	last := dates[len(dates)-1].Format("Jan 2006")
	if first == last {
		return first
	}
	return first + " - " + last
}

func logResult(log zerolog.Logger, file *models.RawFile, result *models.ParseResult, elapsed time.Duration) {
	evt := log.Info()
	if !result.Success {
		evt = log.Warn()
	}
	bank := ""
	if result.Metadata != nil {
		bank = result.Metadata.BankName
	}
	evt.
		Str("file", fileName(file)).
		Str("bank", bank).
		Bool("success", result.Success).
		Int("transactions", len(result.Transactions)).
		Int("warnings", len(result.Errors)).
		Dur("elapsed", elapsed).
		Msg("statement import finished")
}

func fileName(file *models.RawFile) string {
	if file == nil {
		return ""
	}
	return file.Name
}

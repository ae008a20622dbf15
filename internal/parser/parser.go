// Package parser holds the statement format parsers and the registry that
// picks one for an uploaded file.
package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// probePrefixSize caps how much content a CanParse probe may look at.
const probePrefixSize = 4 * 1024

// delimitedSizeLimit is the self-imposed ceiling for the delimited-text
// parsers, tighter than the orchestrator's global limit.
const delimitedSizeLimit = 5 << 20

// Parser is the capability contract every statement format implements.
type Parser interface {
	// Name is the human-readable institution or format name.
	Name() string
	// CanParse is a cheap, side-effect-free probe. It must check the file
	// extension before touching content, read at most a small prefix, and
	// never panic its error out: anything unexpected means "not mine".
	CanParse(file *models.RawFile) bool
	// Parse converts the file into a ParseResult. Malformed records are
	// skipped with a line-numbered warning, never aborting the whole file.
	// The returned error is reserved for internal failures; format-level
	// failures are expressed as Success=false in the result.
	Parse(file *models.RawFile) (*models.ParseResult, error)
}

// Registration binds a parser to the extensions it accepts and a priority
// weight. Higher priority probes first, so strict institution signatures get
// a chance before the broad fallbacks.
type Registration struct {
	Parser     Parser
	Extensions []string
	Priority   int
}

// Registry is the ordered parser collection the detector works over. It is
// configured once at startup and read-only afterwards, so concurrent detects
// need no locking.
type Registry struct {
	entries []Registration
}

// NewRegistry builds a registry from the given registrations, sorted by
// descending priority.
func NewRegistry(regs ...Registration) *Registry {
	entries := make([]Registration, len(regs))
	copy(entries, regs)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority > entries[j].Priority
	})
	return &Registry{entries: entries}
}

// DefaultRegistry wires every built-in parser with its production priority.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Registration{Parser: &NubankParser{}, Extensions: []string{".csv"}, Priority: 100},
		Registration{Parser: &InterParser{}, Extensions: []string{".csv"}, Priority: 90},
		Registration{Parser: &OFXParser{}, Extensions: []string{".ofx", ".qfx"}, Priority: 50},
		Registration{Parser: NewTextStatementParser(), Extensions: []string{".pdf", ".txt"}, Priority: 10},
	)
}

// SupportedExtensions returns the union of all registered extensions in
// priority order, deduplicated.
func (r *Registry) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, e := range r.entries {
		for _, ext := range e.Extensions {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// Supports reports whether any registered parser accepts the extension.
func (r *Registry) Supports(ext string) bool {
	for _, e := range r.entries {
		if extensionMatch(e.Extensions, ext) {
			return true
		}
	}
	return false
}

// Detect walks the registered parsers in priority order and commits to the
// first one whose probe claims the file. A claim is final: the claimed
// parser's result comes back as-is, success or failure, and no further
// parser is tried. When nothing claims the file, the failure names the
// extension and enumerates the supported formats.
func (r *Registry) Detect(file *models.RawFile) *models.ParseResult {
	ext := file.Ext()
	for _, entry := range r.entries {
		if !extensionMatch(entry.Extensions, ext) {
			continue
		}
		if !safeCanParse(entry.Parser, file) {
			continue
		}
		res, err := entry.Parser.Parse(file)
		if err != nil {
			return models.Failed(fmt.Sprintf("%s parser failed: %v", entry.Parser.Name(), err))
		}
		return res
	}
	return models.Failed(fmt.Sprintf(
		"unrecognized statement format for %q: no parser accepted the file (supported extensions: %s)",
		file.Name, strings.Join(r.SupportedExtensions(), ", "),
	))
}

// safeCanParse shields the detector from a panicking probe; a probe that
// blows up simply does not claim the file.
func safeCanParse(p Parser, file *models.RawFile) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	return p.CanParse(file)
}

func extensionMatch(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

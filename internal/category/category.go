// Package category maps institution labels and free-text descriptions onto
// the internal taxonomy. Both tables are data, not logic: adding an
// institution label or a merchant keyword is a one-line change.
package category

import (
	"strings"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// labelTable maps lowercased institution category labels (Nubank exports use
// Portuguese labels) to the internal taxonomy.
var labelTable = map[string]models.Category{
	"restaurante":  models.CategoryFood,
	"alimentação":  models.CategoryFood,
	"alimentacao":  models.CategoryFood,
	"mercado":      models.CategoryMarket,
	"supermercado": models.CategoryMarket,
	"transporte":   models.CategoryTransport,
	"viagem":       models.CategoryTransport,
	"saúde":        models.CategoryHealth,
	"saude":        models.CategoryHealth,
	"lazer":        models.CategoryLeisure,
	"serviços":     models.CategorySubscriptions,
	"servicos":     models.CategorySubscriptions,
	"assinaturas":  models.CategorySubscriptions,
	"outros":       models.CategoryOther,
}

// keywordRules classify label-less records by merchant substrings in the
// description. First match wins; order favors the more specific buckets.
var keywordRules = []struct {
	Category models.Category
	Keywords []string
}{
	{models.CategorySubscriptions, []string{"netflix", "spotify", "prime", "disney", "hbo", "assinatura", "subscription"}},
	{models.CategoryMarket, []string{"mercado", "market", "supermercado", "carrefour", "atacad", "hortifruti", "emporio"}},
	{models.CategoryFood, []string{"ifood", "restaurante", "lanchonete", "padaria", "pizza", "burger", "cafe", "café"}},
	{models.CategoryTransport, []string{"uber", "99app", "99*", "taxi", "posto", "combustivel", "metro", "onibus", "ônibus", "estacionamento"}},
	{models.CategoryHealth, []string{"farmacia", "farmácia", "drogaria", "hospital", "clinica", "clínica", "laboratorio"}},
	{models.CategoryLeisure, []string{"cinema", "teatro", "show", "steam", "playstation", "bar ", "pub "}},
}

// FromLabel resolves an institution-provided category label. Unknown or empty
// labels fall back to Other.
func FromLabel(label string) models.Category {
	if c, ok := labelTable[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return models.CategoryOther
}

// FromDescription classifies free text by keyword match.
func FromDescription(desc string) models.Category {
	lower := strings.ToLower(desc)
	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return models.CategoryOther
}

// Resolve prefers the institution label and falls back to description
// keywords when the label is missing or maps to Other.
func Resolve(label, desc string) models.Category {
	if c := FromLabel(label); c != models.CategoryOther {
		return c
	}
	return FromDescription(desc)
}

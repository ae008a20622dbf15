package category

import (
	"testing"

	"github.com/insightdelivered/statement-importer/internal/models"
)

func TestFromLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Category
	}{
		{"lazer", models.CategoryLeisure},
		{"Lazer", models.CategoryLeisure},
		{" mercado ", models.CategoryMarket},
		{"saúde", models.CategoryHealth},
		{"outros", models.CategoryOther},
		{"something unknown", models.CategoryOther},
		{"", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FromLabel(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFromDescription(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Category
	}{
		{"UBER *TRIP SAO PAULO", models.CategoryTransport},
		{"NETFLIX.COM", models.CategorySubscriptions},
		{"SUPERMERCADO DIA", models.CategoryMarket},
		{"IFOOD *RESTAURANTE", models.CategoryFood},
		{"DROGARIA PACHECO", models.CategoryHealth},
		{"CINEMARK SHOPPING", models.CategoryLeisure},
		{"TRANSFERENCIA PIX", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FromDescription(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResolvePrefersLabel(t *testing.T) {
	if got := Resolve("lazer", "SUPERMERCADO DIA"); got != models.CategoryLeisure {
		t.Errorf("label should win: got %q", got)
	}
	// "outros" gives the description a chance to do better.
	if got := Resolve("outros", "Market X"); got != models.CategoryMarket {
		t.Errorf("fallback: got %q, want Market", got)
	}
	if got := Resolve("", "nothing recognizable"); got != models.CategoryOther {
		t.Errorf("got %q, want Other", got)
	}
}

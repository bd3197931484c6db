package roadmap

import (
	"fmt"
	"strings"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

type costLabel struct {
	name string
	unit string
}

var costLabels = map[domain.CostType]costLabel{
	domain.CostDistance:        {"Distance", "m"},
	domain.CostDuration:        {"Duration", "s"},
	domain.CostPrice:           {"Price", "€"},
	domain.CostCarbon:          {"Carbon", "?"},
	domain.CostCalories:        {"Calories", ""},
	domain.CostNumberOfChanges: {"Number of changes", ""},
	domain.CostVariability:     {"Variability", ""},
}

// FormatCost renders a cost as "<name>: <value> <unit>" with one decimal.
// Unknown codes render with an empty name and unit.
func FormatCost(code int, value float64) string {
	l := costLabels[domain.CostType(code)]
	return fmt.Sprintf("%s: %.1f %s", l.name, value, l.unit)
}

// FormatCosts renders one line per cost record.
func FormatCosts(costs []domain.CostRecord) string {
	lines := make([]string, 0, len(costs))
	for _, c := range costs {
		lines = append(lines, FormatCost(int(c.Type), c.Value))
	}
	return strings.Join(lines, "\n")
}

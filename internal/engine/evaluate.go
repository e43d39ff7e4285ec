// ABOUTME: Conflict evaluator: compares field values under per-field rules.
// ABOUTME: A field present on only one side is never a conflict by itself.
package engine

import (
	"math"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/storage"
)

// diffFields returns the names of fields that differ beyond tolerance
// between an existing row and an incoming record. Only fields present on
// both sides are compared, so progressively enriched sources never
// conflict on the columns they add. Column order follows the schema for
// stable conflict output.
func diffFields(sch models.TableSchema, existing *storage.ExistingRow, rec *models.Record) []string {
	var diffs []string
	for _, col := range sch.Columns {
		incoming, ok := rec.Fields[col]
		if !ok {
			continue
		}
		current, ok := existing.Fields[col]
		if !ok {
			continue
		}
		if !valuesMatch(sch.RuleFor(col), current, incoming) {
			diffs = append(diffs, col)
		}
	}
	return diffs
}

// valuesMatch compares two values under a rule. Numeric tolerances are
// inclusive of the boundary; everything else is exact equality, text
// after trimming.
func valuesMatch(rule models.Rule, a, b models.Value) bool {
	if a.Kind == models.KindNumber && b.Kind == models.KindNumber {
		if rule.Numeric {
			return math.Abs(a.Num-b.Num) <= rule.Epsilon
		}
		return a.Num == b.Num
	}
	if a.Kind != b.Kind {
		return false
	}
	return strings.TrimSpace(a.Str) == strings.TrimSpace(b.Str)
}

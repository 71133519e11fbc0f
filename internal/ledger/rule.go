package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InterestRule sets the annual rate that applies from EffectiveDate until it
// is superseded by a rule with a later effective date. At most one rule may
// exist per effective date.
type InterestRule struct {
	EffectiveDate time.Time       `json:"effective_date"`
	RuleID        string          `json:"rule_id"`
	AnnualRate    decimal.Decimal `json:"annual_rate"` // percent, within (0, 100)
}

// upsertRule replaces any rule sharing the new rule's effective date, appends
// the new rule and restores ascending date order. Insertion order is kept for
// everything else so reads stay deterministic.
func upsertRule(rules []InterestRule, rule InterestRule) []InterestRule {
	out := rules[:0]
	for _, r := range rules {
		if !r.EffectiveDate.Equal(rule.EffectiveDate) {
			out = append(out, r)
		}
	}
	out = append(out, rule)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}

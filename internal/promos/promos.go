package promos

import (
	"fmt"
	"strings"

	"github.com/oryclothing/ory-backend/pkg/enums"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
)

// Rule is one promotional discount. Value is percent for percentage rules
// and whole dollars for fixed rules.
type Rule struct {
	Code        string             `json:"code"`
	Type        enums.DiscountType `json:"type"`
	Value       int                `json:"value"`
	MinOrder    int                `json:"min_order,omitempty"`
	Description string             `json:"description"`
}

// RuleSet resolves a normalized code to a discount rule.
type RuleSet interface {
	Lookup(code string) (Rule, bool)
}

type staticRuleSet struct {
	rules map[string]Rule
}

var defaultRules = []Rule{
	{Code: "BALLS10", Type: enums.DiscountPercentage, Value: 10, Description: "10% off your order"},
	{Code: "SILK20", Type: enums.DiscountPercentage, Value: 20, MinOrder: 200, Description: "20% off orders over $200"},
	{Code: "ORY15", Type: enums.DiscountFixed, Value: 15, MinOrder: 100, Description: "$15 off orders over $100"},
}

// NewRuleSet returns the storefront's fixed promo table.
func NewRuleSet() RuleSet {
	rules := make(map[string]Rule, len(defaultRules))
	for _, r := range defaultRules {
		rules[r.Code] = r
	}
	return &staticRuleSet{rules: rules}
}

func (s *staticRuleSet) Lookup(code string) (Rule, bool) {
	r, ok := s.rules[code]
	return r, ok
}

// Normalize trims and uppercases user input before table lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate resolves a submitted code against the rule set and the current
// subtotal. Below-minimum carts are rejected up front; the minimum is
// re-checked lazily at quote time as the cart changes.
func Validate(set RuleSet, code string, subtotal int) (Rule, error) {
	if set == nil {
		return Rule{}, pkgerrors.New(pkgerrors.CodeInternal, "promo rule set not configured")
	}
	normalized := Normalize(code)
	if normalized == "" {
		return Rule{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}
	rule, ok := set.Lookup(normalized)
	if !ok {
		return Rule{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}
	if rule.MinOrder > 0 && subtotal < rule.MinOrder {
		return Rule{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("code %s requires a minimum order of $%d", rule.Code, rule.MinOrder))
	}
	return rule, nil
}

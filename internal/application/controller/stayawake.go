package controller

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/rs/zerolog"
)

// Named sleep policies. Any other value is parsed as an expression over
// plugged (1 AC, 2 USB, 4 wireless) and stay_awake_conditions.
var SleepPolicies = map[string]string{
	"never":               "true",
	"never_while_plugged": "plugged != 0",
	"default":             "(stay_awake_conditions & plugged) != 0",
}

// stayAwakePolicy decides whether Wi-Fi stays up while the screen is off.
type stayAwakePolicy struct {
	source   string
	constant *bool
	expr     *govaluate.EvaluableExpression
	logger   zerolog.Logger
}

func newStayAwakePolicy(policy string, logger zerolog.Logger) (*stayAwakePolicy, error) {
	src := strings.TrimSpace(policy)
	if named, ok := SleepPolicies[strings.ToLower(src)]; ok {
		src = named
	}
	if src == "" {
		src = SleepPolicies["never"]
	}
	p := &stayAwakePolicy{source: src, logger: logger}
	switch strings.ToLower(src) {
	case "true", "false":
		v := strings.ToLower(src) == "true"
		p.constant = &v
		return p, nil
	}
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("parse sleep policy %q: %w", src, err)
	}
	p.expr = expr
	return p, nil
}

// shouldStayAwake evaluates the policy. Evaluation errors keep Wi-Fi awake.
func (p *stayAwakePolicy) shouldStayAwake(pluggedType, stayAwakeConditions int) bool {
	if p.constant != nil {
		return *p.constant
	}
	result, err := p.expr.Evaluate(map[string]interface{}{
		"plugged":               float64(pluggedType),
		"stay_awake_conditions": float64(stayAwakeConditions),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("policy", p.source).Msg("sleep policy evaluation failed")
		return true
	}
	v, ok := result.(bool)
	if !ok {
		p.logger.Warn().Str("policy", p.source).Msg("sleep policy did not evaluate to boolean")
		return true
	}
	return v
}

// Package discount resolves the effective discount percentage for a draft.
//
// Settings carry a fixed percentage and, optionally, a CEL expression that
// overrides it per draft. The expression sees the draft subtotal, the line
// count and the fixed percentage, and must evaluate to the percentage to
// apply. Any compile or evaluation problem falls back to the fixed
// percentage with a warning; a bad rule must never block a sale.
package discount

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/pkg/logger"
)

// Resolver evaluates discount rules. Compiled programs are cached per
// expression string.
type Resolver struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewResolver creates a rule resolver.
func NewResolver() (*Resolver, error) {
	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("lines", cel.IntType),
		cel.Variable("base", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	return &Resolver{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Effective returns the discount percentage to apply for a draft with the
// given subtotal and line count.
func (r *Resolver) Effective(ctx context.Context, settings catalog.Settings, subtotal types.Money, lineCount int) types.Money {
	if settings.DiscountRule == "" {
		return settings.DiscountPercentage
	}

	prg, err := r.program(settings.DiscountRule)
	if err != nil {
		logger.Warn(ctx, "discount rule does not compile, using fixed percentage",
			"rule", settings.DiscountRule,
			"error", err,
		)
		return settings.DiscountPercentage
	}

	base, _ := settings.DiscountPercentage.Float64()
	sub, _ := subtotal.Float64()

	out, _, err := prg.Eval(map[string]any{
		"subtotal": sub,
		"lines":    int64(lineCount),
		"base":     base,
	})
	if err != nil {
		logger.Warn(ctx, "discount rule evaluation failed, using fixed percentage",
			"rule", settings.DiscountRule,
			"error", err,
		)
		return settings.DiscountPercentage
	}

	pct, ok := toPercentage(out.Value())
	if !ok {
		logger.Warn(ctx, "discount rule returned a non-numeric value, using fixed percentage",
			"rule", settings.DiscountRule,
		)
		return settings.DiscountPercentage
	}
	return pct
}

func (r *Resolver) program(expr string) (cel.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prg, ok := r.programs[expr]; ok {
		return prg, nil
	}

	ast, issues := r.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	prg, err := r.env.Program(ast)
	if err != nil {
		return nil, err
	}

	r.programs[expr] = prg
	return prg, nil
}

func toPercentage(v any) (types.Money, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint64:
		return decimal.NewFromUint64(n), true
	default:
		return decimal.Zero, false
	}
}

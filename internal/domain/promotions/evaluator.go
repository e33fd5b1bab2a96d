package promotions

import (
	"sync"

	"github.com/google/cel-go/cel"

	"kamesan/internal/core/apperror"
)

// Facts are the checkout attributes a promotion condition can reference.
type Facts struct {
	// Subtotal before any discount
	Subtotal float64
	// ItemCount is the number of order lines
	ItemCount int
	// PaymentMethod as its wire value (CASH, CARD, ...)
	PaymentMethod string
	// Hour of day 0-23 and ISO weekday 1-7 (Monday=1), local store time
	Hour    int
	Weekday int
}

// Evaluator compiles and evaluates CEL promotion conditions. Compiled
// programs are cached per expression, so repeated checkout evaluation of
// the same promotion does not recompile.
type Evaluator struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator with the checkout fact declarations.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("payment_method", cel.StringType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("weekday", cel.IntType),
	)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &Evaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Check compiles the expression and verifies it yields a boolean.
// Used to validate conditions before a promotion is saved.
func (e *Evaluator) Check(condition string) error {
	if condition == "" {
		return nil
	}
	ast, iss := e.env.Compile(condition)
	if iss.Err() != nil {
		return apperror.NewValidation("invalid promotion condition").
			WithDetail("field", "condition").
			WithDetail("error", iss.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return apperror.NewValidation("promotion condition must evaluate to a boolean").
			WithDetail("field", "condition").
			WithDetail("outputType", ast.OutputType().String())
	}
	return nil
}

// Eval reports whether the condition matches the facts. An empty condition
// always matches.
func (e *Evaluator) Eval(condition string, facts Facts) (bool, error) {
	if condition == "" {
		return true, nil
	}

	prg, err := e.program(condition)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"subtotal":       facts.Subtotal,
		"item_count":     facts.ItemCount,
		"payment_method": facts.PaymentMethod,
		"hour":           facts.Hour,
		"weekday":        facts.Weekday,
	})
	if err != nil {
		return false, apperror.NewBusinessRule("PROMOTION_EVAL_FAILED",
			"promotion condition evaluation failed").WithCause(err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewBusinessRule("PROMOTION_EVAL_FAILED",
			"promotion condition did not yield a boolean")
	}
	return matched, nil
}

func (e *Evaluator) program(condition string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[condition]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(condition)
	if iss.Err() != nil {
		return nil, apperror.NewValidation("invalid promotion condition").
			WithDetail("error", iss.Err().Error())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	e.mu.Lock()
	e.programs[condition] = prg
	e.mu.Unlock()
	return prg, nil
}

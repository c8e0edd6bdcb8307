package field_catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Formulas may use the text, math and times modules without importing them.
const formulaPrelude = "text := import(\"text\")\nmath := import(\"math\")\ntimes := import(\"times\")\n"

const (
	formulaTimeout   = 250 * time.Millisecond
	formulaMaxAllocs = 5000
)

// FormulaEngine evaluates derived-field formulas. Compiled scripts are cached
// per formula text and cloned for every run.
type FormulaEngine struct {
	mu       sync.Mutex
	compiled map[string]*tengo.Compiled
}

func NewFormulaEngine() *FormulaEngine {
	return &FormulaEngine{compiled: map[string]*tengo.Compiled{}}
}

func (e *FormulaEngine) compile(formula string) (*tengo.Compiled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.compiled[formula]; ok {
		return c.Clone(), nil
	}

	src := formulaPrelude + "__result__ := (" + formula + ")"
	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times"))
	script.SetMaxAllocs(formulaMaxAllocs)
	if err := script.Add("record", map[string]interface{}{}); err != nil {
		return nil, err
	}

	c, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile formula: %w", err)
	}
	e.compiled[formula] = c
	return c.Clone(), nil
}

// Eval runs formula with record bound to values and returns the result as a
// string. Undefined results are an error so the field stays unresolved.
func (e *FormulaEngine) Eval(ctx context.Context, formula string, values map[string]string) (string, error) {
	c, err := e.compile(formula)
	if err != nil {
		return "", err
	}

	rec := make(map[string]interface{}, len(values))
	for k, v := range values {
		rec[k] = v
	}
	if err := c.Set("record", rec); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, formulaTimeout)
	defer cancel()
	if err := c.RunContext(ctx); err != nil {
		return "", fmt.Errorf("failed to run formula: %w", err)
	}

	v := c.Get("__result__")
	if v.IsUndefined() {
		return "", fmt.Errorf("formula produced no value")
	}
	return v.String(), nil
}

package expr

import (
	"fmt"
	"strings"

	"github.com/lvillar/reportflow/binding"
)

// rowScope binds one row of a named set while an aggregate argument is
// evaluated. Refs into that set resolve against the row; everything else
// resolves as usual.
type rowScope struct {
	set string
	row binding.Record
}

// Evaluate computes the formula against the run's data. Errors identify the
// failing path or call; callers degrade the cell to empty and log.
func (e *Expr) Evaluate(d binding.Data) (float64, error) {
	return evalExpr(e, d, nil)
}

func evalExpr(e *Expr, d binding.Data, scope *rowScope) (float64, error) {
	v, err := evalTerm(e.Left, d, scope)
	if err != nil {
		return 0, err
	}
	for _, ot := range e.Rest {
		rv, err := evalTerm(ot.Term, d, scope)
		if err != nil {
			return 0, err
		}
		if ot.Op == "+" {
			v += rv
		} else {
			v -= rv
		}
	}
	return v, nil
}

func evalTerm(t *Term, d binding.Data, scope *rowScope) (float64, error) {
	v, err := evalFactor(t.Left, d, scope)
	if err != nil {
		return 0, err
	}
	for _, of := range t.Rest {
		rv, err := evalFactor(of.Factor, d, scope)
		if err != nil {
			return 0, err
		}
		if of.Op == "*" {
			v *= rv
		} else {
			if rv == 0 {
				return 0, fmt.Errorf("expr: division by zero")
			}
			v /= rv
		}
	}
	return v, nil
}

func evalFactor(f *Factor, d binding.Data, scope *rowScope) (float64, error) {
	var v float64
	var err error
	switch {
	case f.Call != nil:
		v, err = evalCall(f.Call, d)
	case f.Ref != nil:
		v, err = evalRef(f.Ref, d, scope)
	case f.Number != nil:
		v = *f.Number
	case f.Sub != nil:
		v, err = evalExpr(f.Sub, d, scope)
	default:
		err = fmt.Errorf("expr: empty factor")
	}
	if err != nil {
		return 0, err
	}
	if f.Neg {
		v = -v
	}
	return v, nil
}

func evalRef(r *Ref, d binding.Data, scope *rowScope) (float64, error) {
	path := strings.Join(r.Path, ".")
	if scope != nil && r.Path[0] == scope.set {
		if len(r.Path) == 1 {
			return 0, fmt.Errorf("expr: bare row-set %q needs a field", scope.set)
		}
		v, ok := binding.Resolve(scope.row, strings.Join(r.Path[1:], "."))
		if !ok {
			return 0, fmt.Errorf("expr: field %q missing", path)
		}
		n, ok := binding.Numeric(v)
		if !ok {
			return 0, fmt.Errorf("expr: field %q is not numeric", path)
		}
		return n, nil
	}
	v, ok := d.Lookup(path)
	if !ok {
		return 0, fmt.Errorf("expr: path %q not found", path)
	}
	n, ok := binding.Numeric(v)
	if !ok {
		return 0, fmt.Errorf("expr: path %q is not numeric", path)
	}
	return n, nil
}

func evalCall(c *Call, d binding.Data) (float64, error) {
	// count(items) counts the rows of a bare row-set.
	if r := soleRef(c.Arg); r != nil && len(r.Path) == 1 && setExists(d, r.Path[0]) {
		rows, _ := d.RowSet(r.Path[0])
		if c.Func == "count" {
			return float64(len(rows)), nil
		}
		return 0, fmt.Errorf("expr: %s over bare row-set %q needs a field", c.Func, r.Path[0])
	}

	sets := map[string]bool{}
	collectSets(c.Arg, d, sets)
	if len(sets) == 0 {
		return 0, fmt.Errorf("expr: aggregate %s references no row-set", c.Func)
	}
	if len(sets) > 1 {
		return 0, fmt.Errorf("expr: aggregate %s references multiple row-sets", c.Func)
	}
	var set string
	for s := range sets {
		set = s
	}
	rows, _ := d.RowSet(set)

	scope := &rowScope{set: set}
	var vals []float64
	for _, row := range rows {
		scope.row = row
		v, err := evalExpr(c.Arg, d, scope)
		if err != nil {
			// Rows the argument cannot evaluate on are skipped, matching
			// aggregate cells skipping non-numeric values.
			continue
		}
		vals = append(vals, v)
	}

	switch c.Func {
	case "sum":
		var total float64
		for _, v := range vals {
			total += v
		}
		return total, nil
	case "avg":
		if len(vals) == 0 {
			return 0, nil
		}
		var total float64
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals)), nil
	case "count":
		return float64(len(vals)), nil
	case "min":
		if len(vals) == 0 {
			return 0, nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case "max":
		if len(vals) == 0 {
			return 0, nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	}
	return 0, fmt.Errorf("expr: unknown aggregate %q", c.Func)
}

// soleRef returns the Ref when the expression is exactly one un-negated
// reference, else nil.
func soleRef(e *Expr) *Ref {
	if len(e.Rest) != 0 || len(e.Left.Rest) != 0 {
		return nil
	}
	f := e.Left.Left
	if f.Neg || f.Ref == nil {
		return nil
	}
	return f.Ref
}

func setExists(d binding.Data, name string) bool {
	if name == "items" {
		return true
	}
	_, ok := d.Auxiliary[name]
	return ok
}

// collectSets gathers the row-set names referenced directly by the
// expression. Nested calls own their references and are not descended into.
func collectSets(e *Expr, d binding.Data, sets map[string]bool) {
	collectTerm(e.Left, d, sets)
	for _, ot := range e.Rest {
		collectTerm(ot.Term, d, sets)
	}
}

func collectTerm(t *Term, d binding.Data, sets map[string]bool) {
	collectFactor(t.Left, d, sets)
	for _, of := range t.Rest {
		collectFactor(of.Factor, d, sets)
	}
}

func collectFactor(f *Factor, d binding.Data, sets map[string]bool) {
	switch {
	case f.Ref != nil:
		if first := f.Ref.Path[0]; first != "header" && setExists(d, first) {
			sets[first] = true
		}
	case f.Sub != nil:
		collectSets(f.Sub, d, sets)
	}
}

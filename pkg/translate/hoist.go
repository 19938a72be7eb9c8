package translate

import "github.com/dcol97/souffle/pkg/ast"

// hoistAggregators rewrites a clause so that every Aggregator appearing
// inline (in the head's arguments, or in a body comparison's operands) is
// replaced by a reference to a fresh variable, with an AggregatorBinding
// body element inserted before the element that used it, binding that
// variable. This turns aggregator evaluation into an ordinary body
// element pkg/translate's CPS-style lowerBody can place like any other
// (spec §4.3.2: "its result is bound as a synthetic tuple whose location
// is recorded").
func hoistAggregators(c *ast.Clause) *ast.Clause {
	h := &hoister{}

	out := &ast.Clause{Info: c.Info}
	out.Head.Relation = c.Head.Relation
	out.Head.Negated = c.Head.Negated
	out.Head.Args = make([]ast.Expr, len(c.Head.Args))

	var headBindings []ast.BodyElement

	for i, a := range c.Head.Args {
		out.Head.Args[i], headBindings = h.extract(a, headBindings)
	}

	for _, b := range c.Body {
		out.Body = append(out.Body, h.rewriteElement(b)...)
	}

	out.Body = append(out.Body, headBindings...)

	return out
}

type hoister struct {
	count int
}

func (h *hoister) freshName() string {
	h.count++
	return syntheticAggName(h.count)
}

func syntheticAggName(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	// small, readable synthetic names: n written in base 26 with digits
	// a-z, so n=1,2,... gives $aggb, $aggc, ...; they never collide with
	// user-written variables since those can't contain '$'.
	digits := []byte{}
	for n > 0 || len(digits) == 0 {
		digits = append([]byte{letters[n%26]}, digits...)
		n /= 26
	}

	return "$agg" + string(digits)
}

// extract walks e looking for Aggregators, descending into functor
// arguments at any depth; each one found is replaced by a Var and its
// binding appended to bindings.
func (h *hoister) extract(e ast.Expr, bindings []ast.BodyElement) (ast.Expr, []ast.BodyElement) {
	switch v := e.(type) {
	case *ast.Aggregator:
		name := h.freshName()
		bindings = append(bindings, ast.BodyElement{AggregatorBinding: &ast.AggregatorBinding{Var: name, Agg: v}})

		return &ast.Var{Name: name}, bindings
	case *ast.Functor:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i], bindings = h.extract(a, bindings)
		}

		return &ast.Functor{Op: v.Op, Args: args}, bindings
	default:
		return e, bindings
	}
}

func (h *hoister) rewriteElement(b ast.BodyElement) []ast.BodyElement {
	var bindings []ast.BodyElement

	switch {
	case b.Comparison != nil:
		lhs, bindings2 := h.extract(b.Comparison.Lhs, nil)
		bindings = append(bindings, bindings2...)

		rhs, bindings3 := h.extract(b.Comparison.Rhs, nil)
		bindings = append(bindings, bindings3...)

		return append(bindings, ast.BodyElement{Comparison: &ast.Comparison{Op: b.Comparison.Op, Lhs: lhs, Rhs: rhs}})
	default:
		return []ast.BodyElement{b}
	}
}

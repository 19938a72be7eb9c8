package translate

import (
	"github.com/dcol97/souffle/pkg/ast"
	"github.com/dcol97/souffle/pkg/config"
	"github.com/dcol97/souffle/pkg/ram"
	"github.com/dcol97/souffle/pkg/report"
	"github.com/dcol97/souffle/pkg/symbol"
)

// Translator lowers a semantically analyzed AST program into a RAM
// program. It holds only the shared, explicitly-passed services (spec
// §9's "Global configuration" design note: no package-level state).
type Translator struct {
	prog *ast.Program
	cfg  *config.Store
	errs *report.ErrorReport
	syms *symbol.Table
}

// New returns a translator for prog, reporting invariant violations into
// errs and recording relation/subroutine names into syms.
func New(prog *ast.Program, cfg *config.Store, errs *report.ErrorReport, syms *symbol.Table) *Translator {
	for name := range prog.Relations {
		syms.Add(name, symbol.KindRelation)
	}

	return &Translator{prog: prog, cfg: cfg, errs: errs, syms: syms}
}

func (t *Translator) relRef(name string) ram.RelationRef {
	rel, ok := t.prog.Relations[name]
	if !ok {
		t.errs.Add(name, "reference to an undeclared relation")
		return ram.RelationRef{Name: name, Arity: 0}
	}

	return ram.RelationRef{Name: name, Arity: rel.Arity}
}

func deltaName(rel string) string { return "delta_" + rel }
func newName(rel string) string   { return "new_" + rel }

// lowerClause translates one clause body into a loop nest terminated by a
// Project into the head relation. headOverride, if non-nil, replaces the
// relation the head is projected into (used by recursive translation to
// target new_R instead of R). deltaAtomIndex, if >= 0, is the index in
// c.Body of the single positive literal that should scan the delta
// relation instead of the full one (semi-naive evaluation; -1 disables
// this). extraGuard, if non-nil, wraps the emitted Project in a Filter
// (used by recursive translation to suppress already-known tuples).
func (t *Translator) lowerClause(c *ast.Clause, headOverride *ram.RelationRef, deltaAtomIndex int, extraGuard ram.Condition) ram.Operation {
	hoisted := hoistAggregators(c)
	vi := NewValueIndex()
	level := uint(0)

	finish := func(vi *ValueIndex) ram.Operation {
		args := make([]ram.Value, len(hoisted.Head.Args))
		for i, a := range hoisted.Head.Args {
			args[i] = t.translateExpr(a, vi)
		}

		headRel := t.relRef(hoisted.Head.Relation)
		if headOverride != nil {
			headRel = *headOverride
		}

		project := ram.Operation(&ram.Project{Relation: headRel, Values: args})
		if extraGuard != nil {
			return &ram.Filter{Condition: extraGuard, Nested: project}
		}

		return project
	}

	return t.lowerBody(hoisted.Body, 0, vi, &level, deltaAtomIndex, finish)
}

func (t *Translator) lowerBody(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	if i >= len(body) {
		return finish(vi)
	}

	elem := body[i]

	switch {
	case elem.Literal != nil && !elem.Literal.Negated:
		return t.lowerPositiveLiteral(body, i, vi, level, deltaAtomIndex, finish)
	case elem.Literal != nil && elem.Literal.Negated:
		return t.lowerNegatedLiteral(body, i, vi, level, deltaAtomIndex, finish)
	case elem.Comparison != nil:
		return t.lowerComparison(body, i, vi, level, deltaAtomIndex, finish)
	case elem.RecordInit != nil && elem.RecordInit.Construct:
		return t.lowerRecordConstruct(body, i, vi, level, deltaAtomIndex, finish)
	case elem.RecordInit != nil:
		return t.lowerRecordDestruct(body, i, vi, level, deltaAtomIndex, finish)
	case elem.AggregatorBinding != nil:
		return t.lowerAggregatorBinding(body, i, vi, level, deltaAtomIndex, finish)
	default:
		t.errs.Add("body", "unsupported body element shape")
		return t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)
	}
}

func (t *Translator) lowerPositiveLiteral(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	lit := body[i].Literal
	tupleID := *level
	*level++

	relRef := t.relRef(lit.Relation)
	if i == deltaAtomIndex {
		relRef = ram.RelationRef{Name: deltaName(lit.Relation), Arity: relRef.Arity}
	}

	var extra []ram.Condition

	for col, arg := range lit.Args {
		switch a := arg.(type) {
		case *ast.Var:
			if vi.IsBound(a.Name) {
				prior, _ := vi.Resolve(a.Name)
				extra = append(extra, &ram.Comparison{
					Op:  "=",
					Lhs: &ram.ElementAccess{Tuple: tupleID, Column: uint(col)},
					Rhs: prior,
				})
			} else {
				vi.Define(a.Name, Location{Level: tupleID, Column: uint(col), Label: a.Name})
			}
		case *ast.IntConst:
			extra = append(extra, &ram.Comparison{
				Op:  "=",
				Lhs: &ram.ElementAccess{Tuple: tupleID, Column: uint(col)},
				Rhs: &ram.Number{Val: a.Value},
			})
		case *ast.Wildcard:
			// unconstrained
		default:
			t.errs.Add(lit.Relation, "unsupported literal argument shape")
		}
	}

	nested := t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)
	if len(extra) > 0 {
		nested = &ram.Filter{Condition: ram.Conjoin(extra...), Nested: nested}
	}

	return &ram.Scan{Relation: relRef, TupleID: tupleID, Nested: nested}
}

func (t *Translator) lowerNegatedLiteral(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	lit := body[i].Literal
	pattern := t.translatePattern(lit, vi)
	nested := t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)

	return &ram.Filter{
		Condition: &ram.NotExistenceCheck{Relation: t.relRef(lit.Relation), Pattern: pattern},
		Nested:    nested,
	}
}

func (t *Translator) lowerComparison(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	cmp := body[i].Comparison
	lhs := t.translateExpr(cmp.Lhs, vi)
	rhs := t.translateExpr(cmp.Rhs, vi)
	nested := t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)

	return &ram.Filter{Condition: &ram.Comparison{Op: cmp.Op, Lhs: lhs, Rhs: rhs}, Nested: nested}
}

func (t *Translator) lowerRecordConstruct(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	ri := body[i].RecordInit
	fields := make([]ram.Value, len(ri.Fields))

	for j, f := range ri.Fields {
		fields[j] = t.translateExpr(f, vi)
	}

	vi.DefinePack(ri.Var, &ram.Pack{Args: fields})

	return t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)
}

func (t *Translator) lowerRecordDestruct(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	ri := body[i].RecordInit

	val, ok := vi.Resolve(ri.Var)
	if !ok {
		t.errs.Add(ri.Var, "record destructuring of an ungrounded variable")
		val = &ram.Number{Val: 0}
	}

	tupleID := *level
	*level++

	for col, f := range ri.Fields {
		if v, ok := f.(*ast.Var); ok && !vi.IsBound(v.Name) {
			vi.Define(v.Name, Location{Level: tupleID, Column: uint(col), Label: v.Name})
		}
	}

	nested := t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)

	return &ram.Lookup{Value: val, Arity: uint(len(ri.Fields)), TupleID: tupleID, Nested: nested}
}

func (t *Translator) lowerAggregatorBinding(body []ast.BodyElement, i int, vi *ValueIndex, level *uint, deltaAtomIndex int, finish func(*ValueIndex) ram.Operation) ram.Operation {
	ab := body[i].AggregatorBinding
	agg := ab.Agg

	if len(agg.Body) == 0 || agg.Body[0].Literal == nil {
		t.errs.Add(ab.Var, "aggregator body must start with a relation literal")
		return t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)
	}

	src := agg.Body[0].Literal
	tupleID := *level
	*level++

	relRef := t.relRef(src.Relation)
	pattern := make([]ram.Value, len(src.Args))
	localVI := vi.Fork()

	for col, arg := range src.Args {
		switch a := arg.(type) {
		case *ast.Var:
			if vi.IsBound(a.Name) {
				val, _ := vi.Resolve(a.Name)
				pattern[col] = val
			} else {
				localVI.Define(a.Name, Location{Level: tupleID, Column: uint(col), Label: a.Name})
			}
		case *ast.IntConst:
			pattern[col] = &ram.Number{Val: a.Value}
		case *ast.Wildcard:
			// unconstrained
		default:
			t.errs.Add(ab.Var, "unsupported aggregator literal argument shape")
		}
	}

	var conds []ram.Condition

	for _, extra := range agg.Body[1:] {
		if extra.Comparison == nil {
			t.errs.Add(ab.Var, "aggregator body may only contain one literal followed by comparisons")
			continue
		}

		lhs := t.translateExpr(extra.Comparison.Lhs, localVI)
		rhs := t.translateExpr(extra.Comparison.Rhs, localVI)
		conds = append(conds, &ram.Comparison{Op: extra.Comparison.Op, Lhs: lhs, Rhs: rhs})
	}

	var expr ram.Value
	if agg.Expr != nil {
		expr = t.translateExpr(agg.Expr, localVI)
	}

	vi.Define(ab.Var, Location{Level: tupleID, Column: 0, Label: ab.Var})

	nested := t.lowerBody(body, i+1, vi, level, deltaAtomIndex, finish)

	return &ram.Aggregate{
		Func:      ram.AggFunc(agg.Func),
		Expr:      expr,
		Relation:  relRef,
		Pattern:   pattern,
		Condition: ram.Conjoin(conds...),
		TupleID:   tupleID,
		Nested:    nested,
	}
}

func (t *Translator) translateExpr(e ast.Expr, vi *ValueIndex) ram.Value {
	switch v := e.(type) {
	case *ast.Var:
		val, ok := vi.Resolve(v.Name)
		if !ok {
			t.errs.Add(v.Name, "reference to an ungrounded variable")
			return &ram.Number{Val: 0}
		}

		return val
	case *ast.IntConst:
		return &ram.Number{Val: v.Value}
	case *ast.Wildcard:
		return nil
	case *ast.Functor:
		args := make([]ram.Value, len(v.Args))
		for i, a := range v.Args {
			args[i] = t.translateExpr(a, vi)
		}

		if !lowerFunctorOp(v.Op) {
			t.errs.Add(v.Op, "unsupported functor operator")
		}

		return &ram.Intrinsic{Op: v.Op, Args: args}
	case *ast.Aggregator:
		t.errs.Add("aggregator", "aggregator expression survived hoisting (internal error)")
		return &ram.Number{Val: 0}
	default:
		t.errs.Add("expr", "unsupported expression shape")
		return &ram.Number{Val: 0}
	}
}

func (t *Translator) translatePattern(lit *ast.Literal, vi *ValueIndex) []ram.Value {
	pattern := make([]ram.Value, len(lit.Args))

	for col, arg := range lit.Args {
		switch a := arg.(type) {
		case *ast.Var:
			val, ok := vi.Resolve(a.Name)
			if !ok {
				t.errs.Add(a.Name, "reference to an ungrounded variable in pattern position")
				continue
			}

			pattern[col] = val
		case *ast.IntConst:
			pattern[col] = &ram.Number{Val: a.Value}
		case *ast.Wildcard:
			// nil slot
		default:
			t.errs.Add(lit.Relation, "unsupported pattern argument shape")
		}
	}

	return pattern
}

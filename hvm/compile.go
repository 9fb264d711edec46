// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hvm

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFunc      = errors.New("hvm: function has no rules")
	ErrInvalidLhs     = errors.New("hvm: rule left-hand side is not a function application")
	ErrNameMismatch   = errors.New("hvm: rules define different functions")
	ErrArityMismatch  = errors.New("hvm: rules have different arities")
	ErrInvalidPattern = errors.New("hvm: invalid pattern")
	ErrDuplicateVar   = errors.New("hvm: pattern variable bound twice")
	ErrUnboundVar     = errors.New("hvm: unbound variable")
	ErrNumOverflow    = errors.New("hvm: number exceeds 120 bits")
)

// CompFunc is a checked function ready to be loaded by the runtime.
type CompFunc struct {
	// Func is the source definition, kept so the function can be
	// serialized again.
	Func  *Func
	Name  Name
	Arity uint64
	// Redux lists the argument positions some rule matches on and
	// which must therefore be reduced before rewriting.
	Redux []uint64
}

// Compile checks f and builds its runtime form.
func Compile(f *Func) (*CompFunc, error) {
	if f == nil || len(f.Rules) == 0 {
		return nil, ErrEmptyFunc
	}

	comp := &CompFunc{Func: f}
	strict := make(map[uint64]bool)
	for i, rule := range f.Rules {
		lhs, ok := rule.Lhs.(Fun)
		if !ok {
			return nil, fmt.Errorf("rule %d: %w", i, ErrInvalidLhs)
		}
		if i == 0 {
			comp.Name = lhs.Name
			comp.Arity = uint64(len(lhs.Args))
		} else if lhs.Name != comp.Name {
			return nil, fmt.Errorf("rule %d: %w", i, ErrNameMismatch)
		} else if uint64(len(lhs.Args)) != comp.Arity {
			return nil, fmt.Errorf("rule %d: %w", i, ErrArityMismatch)
		}

		bound := make(map[Name]bool)
		for j, arg := range lhs.Args {
			isStrict, err := checkPattern(arg, bound, true)
			if err != nil {
				return nil, fmt.Errorf("rule %d arg %d: %w", i, j, err)
			}
			if isStrict {
				strict[uint64(j)] = true
			}
		}
		if err := checkBody(rule.Rhs, bound, 0); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}

	for j := uint64(0); j < comp.Arity; j++ {
		if strict[j] {
			comp.Redux = append(comp.Redux, j)
		}
	}
	return comp, nil
}

// checkPattern validates a left-hand side argument, collecting the
// variables it binds. It reports whether the pattern forces the
// argument to be reduced.
func checkPattern(t Term, bound map[Name]bool, top bool) (bool, error) {
	switch p := t.(type) {
	case Var:
		if bound[p.Name] {
			return false, fmt.Errorf("%w: %s", ErrDuplicateVar, p.Name)
		}
		bound[p.Name] = true
		return false, nil
	case Num:
		if p.Numb.Hi>>(NumBits-64) != 0 {
			return false, ErrNumOverflow
		}
		return true, nil
	case Ctr:
		if !top {
			return false, ErrInvalidPattern
		}
		for _, arg := range p.Args {
			if _, err := checkPattern(arg, bound, false); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return false, ErrInvalidPattern
}

func checkBody(t Term, scope map[Name]bool, depth int) error {
	if depth > MaxTermDepth {
		return ErrTermTooDeep
	}
	switch b := t.(type) {
	case Var:
		if !scope[b.Name] {
			return fmt.Errorf("%w: %s", ErrUnboundVar, b.Name)
		}
		return nil
	case Dup:
		if err := checkBody(b.Expr, scope, depth+1); err != nil {
			return err
		}
		return checkBody(b.Body, extend(scope, b.Nam0, b.Nam1), depth+1)
	case Lam:
		return checkBody(b.Body, extend(scope, b.Name), depth+1)
	case App:
		if err := checkBody(b.Func, scope, depth+1); err != nil {
			return err
		}
		return checkBody(b.Argm, scope, depth+1)
	case Ctr:
		return checkArgs(b.Args, scope, depth)
	case Fun:
		return checkArgs(b.Args, scope, depth)
	case Num:
		if b.Numb.Hi>>(NumBits-64) != 0 {
			return ErrNumOverflow
		}
		return nil
	case Op2:
		if err := checkBody(b.Val0, scope, depth+1); err != nil {
			return err
		}
		return checkBody(b.Val1, scope, depth+1)
	}
	return fmt.Errorf("%w: %T", ErrUnknownTerm, t)
}

func checkArgs(args []Term, scope map[Name]bool, depth int) error {
	for _, arg := range args {
		if err := checkBody(arg, scope, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func extend(scope map[Name]bool, names ...Name) map[Name]bool {
	next := make(map[Name]bool, len(scope)+len(names))
	for k, v := range scope {
		next[k] = v
	}
	for _, n := range names {
		next[n] = true
	}
	return next
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hvm

import (
	"errors"
	"fmt"

	"github.com/kindelia/kindelia/bits"
	"lukechampine.com/uint128"
)

const (
	// NumBits is the width of a numeric literal.
	NumBits = 120
	// MaxTermDepth bounds the nesting accepted when decoding terms.
	MaxTermDepth = 1024

	termTagBits = 3
	operBits    = 4
)

const (
	termVar = iota
	termDup
	termLam
	termApp
	termCtr
	termFun
	termNum
	termOp2
)

var (
	ErrTermTooDeep = errors.New("hvm: term nesting too deep")
	ErrUnknownTerm = errors.New("hvm: unknown term tag")
)

// Oper is a binary numeric operation.
type Oper uint8

const (
	ADD Oper = iota
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	XOR
	SHL
	SHR
	LTN
	LTE
	EQL
	GTE
	GTN
	NEQ
)

// Term is a node of a function definition.
type Term interface {
	bits.Serializable
	isTerm()
}

type Var struct {
	Name Name
}

type Dup struct {
	Nam0, Nam1 Name
	Expr, Body Term
}

type Lam struct {
	Name Name
	Body Term
}

type App struct {
	Func, Argm Term
}

type Ctr struct {
	Name Name
	Args []Term
}

type Fun struct {
	Name Name
	Args []Term
}

type Num struct {
	Numb uint128.Uint128
}

type Op2 struct {
	Oper       Oper
	Val0, Val1 Term
}

func (Var) isTerm() {}
func (Dup) isTerm() {}
func (Lam) isTerm() {}
func (App) isTerm() {}
func (Ctr) isTerm() {}
func (Fun) isTerm() {}
func (Num) isTerm() {}
func (Op2) isTerm() {}

func (t Var) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termVar)
	t.Name.ProtoSerialize(bv)
}

func (t Dup) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termDup)
	t.Nam0.ProtoSerialize(bv)
	t.Nam1.ProtoSerialize(bv)
	t.Expr.ProtoSerialize(bv)
	t.Body.ProtoSerialize(bv)
}

func (t Lam) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termLam)
	t.Name.ProtoSerialize(bv)
	t.Body.ProtoSerialize(bv)
}

func (t App) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termApp)
	t.Func.ProtoSerialize(bv)
	t.Argm.ProtoSerialize(bv)
}

func (t Ctr) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termCtr)
	t.Name.ProtoSerialize(bv)
	bits.PushList(bv, t.Args)
}

func (t Fun) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termFun)
	t.Name.ProtoSerialize(bv)
	bits.PushList(bv, t.Args)
}

func (t Num) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termNum)
	bv.PushFixed(64, t.Numb.Lo)
	bv.PushFixed(NumBits-64, t.Numb.Hi)
}

func (t Op2) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(termTagBits, termOp2)
	bv.PushFixed(operBits, uint64(t.Oper))
	t.Val0.ProtoSerialize(bv)
	t.Val1.ProtoSerialize(bv)
}

// DeserializeTerm reads one term from r.
func DeserializeTerm(r *bits.Reader) (Term, error) {
	return deserializeTerm(r, 0)
}

func deserializeTerm(r *bits.Reader, depth int) (Term, error) {
	if depth > MaxTermDepth {
		return nil, ErrTermTooDeep
	}
	tag, err := r.Fixed(termTagBits)
	if err != nil {
		return nil, err
	}
	switch tag {
	case termVar:
		name, err := DeserializeName(r)
		if err != nil {
			return nil, err
		}
		return Var{Name: name}, nil
	case termDup:
		nam0, err := DeserializeName(r)
		if err != nil {
			return nil, err
		}
		nam1, err := DeserializeName(r)
		if err != nil {
			return nil, err
		}
		expr, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		body, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		return Dup{Nam0: nam0, Nam1: nam1, Expr: expr, Body: body}, nil
	case termLam:
		name, err := DeserializeName(r)
		if err != nil {
			return nil, err
		}
		body, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		return Lam{Name: name, Body: body}, nil
	case termApp:
		fn, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		argm, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		return App{Func: fn, Argm: argm}, nil
	case termCtr, termFun:
		name, err := DeserializeName(r)
		if err != nil {
			return nil, err
		}
		args, err := deserializeTerms(r, depth+1)
		if err != nil {
			return nil, err
		}
		if tag == termCtr {
			return Ctr{Name: name, Args: args}, nil
		}
		return Fun{Name: name, Args: args}, nil
	case termNum:
		lo, err := r.Fixed(64)
		if err != nil {
			return nil, err
		}
		hi, err := r.Fixed(NumBits - 64)
		if err != nil {
			return nil, err
		}
		return Num{Numb: uint128.New(lo, hi)}, nil
	case termOp2:
		oper, err := r.Fixed(operBits)
		if err != nil {
			return nil, err
		}
		val0, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		val1, err := deserializeTerm(r, depth+1)
		if err != nil {
			return nil, err
		}
		return Op2{Oper: Oper(oper), Val0: val0, Val1: val1}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTerm, tag)
}

func deserializeTerms(r *bits.Reader, depth int) ([]Term, error) {
	var terms []Term
	for {
		more, err := r.Bit()
		if err != nil {
			return nil, err
		}
		if !more {
			return terms, nil
		}
		t, err := deserializeTerm(r, depth)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
}

// Rule rewrites terms matching Lhs into Rhs.
type Rule struct {
	Lhs Term
	Rhs Term
}

func (r Rule) ProtoSerialize(bv *bits.BitVec) {
	r.Lhs.ProtoSerialize(bv)
	r.Rhs.ProtoSerialize(bv)
}

// Func is a function definition as it travels on the wire.
type Func struct {
	Rules []Rule
}

func (f *Func) ProtoSerialize(bv *bits.BitVec) {
	bits.PushList(bv, f.Rules)
}

// DeserializeFunc reads a function definition from r.
func DeserializeFunc(r *bits.Reader) (*Func, error) {
	var rules []Rule
	for {
		more, err := r.Bit()
		if err != nil {
			return nil, err
		}
		if !more {
			return &Func{Rules: rules}, nil
		}
		lhs, err := DeserializeTerm(r)
		if err != nil {
			return nil, err
		}
		rhs, err := DeserializeTerm(r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{Lhs: lhs, Rhs: rhs})
	}
}

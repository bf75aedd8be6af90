// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/near/borsh-go"
	"golang.org/x/exp/maps"
)

// Function is a single entry point of a program. [params] and the returned
// bytes are borsh encoded.
type Function func(ctx context.Context, env *Context, params []byte) ([]byte, error)

// Type names a borsh encoded value in a program ABI.
type Type string

const (
	None    Type = ""
	I32     Type = "i32"
	I64     Type = "i64"
	U64     Type = "u64"
	Bool    Type = "bool"
	String  Type = "string"
	Address Type = "address"
)

type Param struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

type Method struct {
	Name        string  `json:"name" yaml:"name"`
	Constructor bool    `json:"constructor" yaml:"constructor"`
	Params      []Param `json:"params" yaml:"params"`
	Returns     Type    `json:"returns,omitempty" yaml:"returns,omitempty"`

	handler Function
}

// ABI describes the callable surface of a program.
type ABI struct {
	Program string   `json:"program" yaml:"program"`
	Methods []Method `json:"methods" yaml:"methods"`
}

// Method returns the method called [name].
func (a ABI) Method(name string) (Method, bool) {
	for _, m := range a.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Program is a named set of constructors and messages that the runtime can
// deploy and invoke.
type Program struct {
	name    string
	methods map[string]*Method
	err     error
}

func NewProgram(name string) *Program {
	return &Program{
		name:    name,
		methods: make(map[string]*Method),
	}
}

func (p *Program) Name() string {
	return p.name
}

// Constructor registers a function that runs once at deployment.
func (p *Program) Constructor(name string, params []Param, f Function) *Program {
	return p.add(&Method{Name: name, Constructor: true, Params: params, handler: f})
}

// Message registers a function callable after deployment.
func (p *Program) Message(name string, params []Param, returns Type, f Function) *Program {
	return p.add(&Method{Name: name, Params: params, Returns: returns, handler: f})
}

func (p *Program) add(m *Method) *Program {
	if _, ok := p.methods[m.Name]; ok && p.err == nil {
		p.err = fmt.Errorf("%w: %s.%s", ErrDuplicateFunction, p.name, m.Name)
	}
	p.methods[m.Name] = m
	return p
}

func (p *Program) method(name string) (*Method, error) {
	m, ok := p.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownFunction, p.name, name)
	}
	return m, nil
}

// ABI lists methods sorted by name.
func (p *Program) ABI() ABI {
	names := maps.Keys(p.methods)
	slices.Sort(names)
	methods := make([]Method, 0, len(names))
	for _, name := range names {
		m := *p.methods[name]
		m.handler = nil
		methods = append(methods, m)
	}
	return ABI{Program: p.name, Methods: methods}
}

// Deserialize decodes borsh encoded [params] into T. Trailing bytes are
// rejected.
func Deserialize[T any](params []byte) (T, error) {
	var v T
	if err := borsh.Deserialize(&v, params); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	encoded, err := borsh.Serialize(v)
	if err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if len(encoded) != len(params) {
		return v, fmt.Errorf("%w: %d trailing bytes", ErrInvalidParams, len(params)-len(encoded))
	}
	return v, nil
}

// NoParams rejects any params for functions that take none.
func NoParams(params []byte) error {
	if len(params) != 0 {
		return fmt.Errorf("%w: expected no params but got %d bytes", ErrInvalidParams, len(params))
	}
	return nil
}

func Serialize(v any) ([]byte, error) {
	return borsh.Serialize(v)
}

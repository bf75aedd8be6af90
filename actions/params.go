// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/near/borsh-go"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
)

// Exact float64 bounds of int64. float64(math.MaxInt64) rounds up to 1<<63.
const (
	minInt64Float = -(1 << 63)
	maxInt64Float = 1 << 63
)

// Parameter is a typed argument as it appears in JSON or YAML input.
type Parameter struct {
	// Type is the ABI type of the argument.
	Type runtime.Type `json:"type" yaml:"type"`
	// Value is the argument. Numbers may be given as numbers or strings,
	// addresses as hex strings.
	Value interface{} `json:"value" yaml:"value"`
}

// Bytes returns the borsh encoding of the parameter.
func (p Parameter) Bytes() ([]byte, error) {
	switch p.Type {
	case runtime.I32:
		v, err := toInt64(p.Value)
		if err != nil {
			return nil, err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d is not an %s", ErrOutOfRange, v, p.Type)
		}
		return borsh.Serialize(int32(v))
	case runtime.I64:
		v, err := toInt64(p.Value)
		if err != nil {
			return nil, err
		}
		return borsh.Serialize(v)
	case runtime.U64:
		v, err := toUint64(p.Value)
		if err != nil {
			return nil, err
		}
		return borsh.Serialize(v)
	case runtime.Bool:
		v, ok := p.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not a %s", ErrFailedParamTypeCast, p.Value, p.Type)
		}
		return borsh.Serialize(v)
	case runtime.String:
		v, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not a %s", ErrFailedParamTypeCast, p.Value, p.Type)
		}
		return borsh.Serialize(v)
	case runtime.Address:
		v, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not an %s", ErrFailedParamTypeCast, p.Value, p.Type)
		}
		addr, err := codec.StringToAddress(v)
		if err != nil {
			return nil, err
		}
		return addr[:], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, p.Type)
	}
}

// ParamsToBytes concatenates the encodings of [params], which is the borsh
// encoding of a struct with those fields in order.
func ParamsToBytes(params []Parameter) ([]byte, error) {
	var b []byte
	for i, p := range params {
		pb, err := p.Bytes()
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		b = append(b, pb...)
	}
	return b, nil
}

// CheckParams verifies that [params] match the signature of [method].
func CheckParams(method runtime.Method, params []Parameter) error {
	if len(params) != len(method.Params) {
		return fmt.Errorf("%w: %s expects %d params but got %d", runtime.ErrInvalidParams, method.Name, len(method.Params), len(params))
	}
	for i, p := range params {
		if expected := method.Params[i]; p.Type != expected.Type {
			return fmt.Errorf("%w: %s.%s is %s but got %s", runtime.ErrInvalidParams, method.Name, expected.Name, expected.Type, p.Type)
		}
	}
	return nil
}

// DecodeResult turns the output of a call returning [typ] into a Go value.
func DecodeResult(typ runtime.Type, result []byte) (interface{}, error) {
	switch typ {
	case runtime.None:
		if len(result) != 0 {
			return nil, fmt.Errorf("%w: expected no result but got %d bytes", runtime.ErrInvalidResult, len(result))
		}
		return nil, nil
	case runtime.I32:
		return decode[int32](result)
	case runtime.I64:
		return decode[int64](result)
	case runtime.U64:
		return decode[uint64](result)
	case runtime.Bool:
		return decode[bool](result)
	case runtime.String:
		return decode[string](result)
	case runtime.Address:
		addr, err := codec.ToAddress(result)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidResult, err)
		}
		return addr, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
}

func decode[T any](result []byte) (T, error) {
	var v T
	if err := borsh.Deserialize(&v, result); err != nil {
		return v, fmt.Errorf("%w: %w", runtime.ErrInvalidResult, err)
	}
	return v, nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < minInt64Float || v >= maxInt64Float {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrFailedParamTypeCast, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("%w: %v is not an integer", ErrFailedParamTypeCast, value)
	}
}

func toUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case json.Number:
		return strconv.ParseUint(v.String(), 10, 64)
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		i, err := toInt64(value)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, fmt.Errorf("%w: %d is negative", ErrOutOfRange, i)
		}
		return uint64(i), nil
	}
}

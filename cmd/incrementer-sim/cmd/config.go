// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ava-labs/incrementer/pebble"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/server"
	"github.com/ava-labs/incrementer/trace"
)

const (
	// ProgramCreate is the step method that deploys a program.
	ProgramCreate = "program_create"

	defaultListenAddress = "127.0.0.1:9650"
)

// Config is read from the file passed with --config. Fields left out keep
// their defaults.
type Config struct {
	DataDir        string            `json:"dataDir" yaml:"dataDir"`
	LogLevel       string            `json:"logLevel" yaml:"logLevel"`
	Pebble         pebble.Config     `json:"pebble" yaml:"pebble"`
	Runtime        *runtime.Config   `json:"runtime" yaml:"runtime"`
	Trace          *trace.Config     `json:"trace" yaml:"trace"`
	ListenAddress  string            `json:"listenAddress" yaml:"listenAddress"`
	AllowedOrigins []string          `json:"allowedOrigins" yaml:"allowedOrigins"`
	HTTP           server.HTTPConfig `json:"http" yaml:"http"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		Pebble:         pebble.NewDefaultConfig(),
		Runtime:        runtime.NewConfig(),
		Trace:          trace.NewConfig(),
		ListenAddress:  defaultListenAddress,
		AllowedOrigins: []string{"*"},
		HTTP:           server.NewDefaultHTTPConfig(),
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if len(path) == 0 {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type Plan struct {
	// The name of the plan.
	Name string `json:"name" yaml:"name"`
	// A description of the plan.
	Description string `json:"description" yaml:"description"`
	// The key of the caller used in each step of the plan.
	CallerKey string `json:"callerKey" yaml:"caller_key"`
	// Steps to performed during simulation.
	Steps []Step `json:"steps" yaml:"steps"`
}

type Step struct {
	// Description of the step. (required)
	Description string `json:"description" yaml:"description"`
	// The API endpoint to call. (required)
	Endpoint Endpoint `json:"endpoint" yaml:"endpoint"`
	// The method to call on the endpoint.
	Method string `json:"method" yaml:"method"`
	// Overrides the plan caller key for this step.
	CallerKey string `json:"callerKey,omitempty" yaml:"caller_key,omitempty"`
	// The parameters to pass to the method.
	Params []Parameter `json:"params" yaml:"params"`
	// Define required assertions against this step.
	Require *Require `json:"require,omitempty" yaml:"require,omitempty"`
}

type Endpoint string

const (
	// Perform an operation against the key api.
	EndpointKey Endpoint = "key"
	// Make a read-only call to a program function and return the result.
	EndpointReadOnly Endpoint = "readonly"
	// Submit a signed transaction that deploys a program or calls one of its
	// functions.
	EndpointExecute Endpoint = "execute"
)

type Parameter struct {
	// The optional name of the parameter. This is only used for readability.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// The type of the parameter. (required)
	Type Type `json:"type" yaml:"type"`
	// The value of the parameter. (required)
	Value interface{} `json:"value" yaml:"value"`
}

// Type is an ABI type or one of the plan-only types below.
type Type string

const (
	// ID is a program account, given as hex or as the step_N that created
	// it.
	ID Type = "id"
	// Key is a named key, passed to the program as its address.
	Key Type = "key"
)

func newResponse(id int) *Response {
	return &Response{
		ID: id,
	}
}

type Response struct {
	// The index of the step that generated this response.
	ID int `json:"id" yaml:"id"`
	// The result of the step.
	Result Result `json:"result,omitempty" yaml:"result,omitempty"`
	// The error message if available.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Result struct {
	// The tx id of the transaction that was created.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// The program account created by the step.
	ProgramID string `json:"programID,omitempty" yaml:"programID,omitempty"`
	// The decoded result of the call.
	Response interface{} `json:"response,omitempty" yaml:"response,omitempty"`
	// An optional message.
	Msg string `json:"msg,omitempty" yaml:"msg,omitempty"`
}

func (r *Response) setError(err error) {
	r.Error = err.Error()
}

func (r *Response) Print(w io.Writer) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type Require struct {
	// Assertions against the result of the step.
	Result ResultAssertion `json:"result,omitempty" yaml:"result,omitempty"`
}

type ResultAssertion struct {
	// The operator to use for the assertion.
	Operator Operator `json:"operator" yaml:"operator"`
	// The value to compare against.
	Value string `json:"value" yaml:"value"`
}

type Operator string

const (
	NumericGt Operator = ">"
	NumericLt Operator = "<"
	NumericGe Operator = ">="
	NumericLe Operator = "<="
	NumericEq Operator = "=="
	NumericNe Operator = "!="
)

// validateAssertion compares [actual] against the assertion. Numbers compare
// numerically, anything else compares as text with == and != only.
func validateAssertion(actual interface{}, assertion *ResultAssertion) (bool, error) {
	actualStr := fmt.Sprint(actual)
	a, aok := new(big.Int).SetString(actualStr, 10)
	v, vok := new(big.Int).SetString(assertion.Value, 10)
	if !aok || !vok {
		switch assertion.Operator {
		case NumericEq:
			return actualStr == assertion.Value, nil
		case NumericNe:
			return actualStr != assertion.Value, nil
		default:
			return false, fmt.Errorf("%w: %s needs numeric values", ErrInvalidOperator, assertion.Operator)
		}
	}

	cmp := a.Cmp(v)
	switch assertion.Operator {
	case NumericGt:
		return cmp > 0, nil
	case NumericLt:
		return cmp < 0, nil
	case NumericGe:
		return cmp >= 0, nil
	case NumericLe:
		return cmp <= 0, nil
	case NumericEq:
		return cmp == 0, nil
	case NumericNe:
		return cmp != 0, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOperator, assertion.Operator)
	}
}

func unmarshalPlan(bytes []byte) (*Plan, error) {
	var p Plan
	if err := unmarshal(bytes, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func unmarshal(bytes []byte, v interface{}) error {
	switch {
	case isJSON(string(bytes)):
		return json.Unmarshal(bytes, v)
	case isYAML(string(bytes)):
		return yaml.Unmarshal(bytes, v)
	default:
		return ErrInvalidConfigFormat
	}
}

func isJSON(s string) bool {
	var js map[string]interface{}
	return json.Unmarshal([]byte(s), &js) == nil
}

func isYAML(s string) bool {
	var y map[string]interface{}
	return yaml.Unmarshal([]byte(s), &y) == nil
}

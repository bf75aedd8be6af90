// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
)

type runCmd struct {
	s    *Simulator
	plan *Plan

	// tracks program ids created during this simulation
	programIDs map[string]codec.Address
}

func (s *Simulator) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Run a simulation plan, use - to read it from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &runCmd{
				s:          s,
				programIDs: make(map[string]codec.Address),
			}
			if err := r.Init(cmd.InOrStdin(), args[0]); err != nil {
				return err
			}
			if err := r.Verify(); err != nil {
				return err
			}
			return r.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *runCmd) Init(stdin io.Reader, source string) (err error) {
	var planBytes []byte
	if source == "-" {
		planBytes, err = io.ReadAll(stdin)
	} else {
		planBytes, err = os.ReadFile(source)
	}
	if err != nil {
		return err
	}
	c.plan, err = unmarshalPlan(planBytes)
	return err
}

func (c *runCmd) Verify() error {
	if len(c.plan.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, "no steps found")
	}
	for i := range c.plan.Steps {
		if err := verifyStep(i, &c.plan.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func verifyStep(i int, step *Step) error {
	if len(step.Params) == 0 {
		return fmt.Errorf("%w %d: %s", ErrInvalidStep, i, "no params found")
	}
	firstParamType := step.Params[0].Type

	switch step.Endpoint {
	case EndpointKey:
		// the first param is the key name
		if firstParamType != Type(runtime.String) {
			return fmt.Errorf("%w %d %w: expected %s", ErrInvalidStep, i, ErrInvalidParamType, runtime.String)
		}
	case EndpointReadOnly:
		if step.Method == ProgramCreate {
			return fmt.Errorf("%w %d: %s must be executed", ErrInvalidStep, i, ProgramCreate)
		}
		if firstParamType != ID {
			return fmt.Errorf("%w %d %w: %w", ErrInvalidStep, i, ErrInvalidParamType, ErrFirstParamRequiredID)
		}
	case EndpointExecute:
		if step.Method == ProgramCreate {
			if len(step.Params) < 2 || firstParamType != Type(runtime.String) || step.Params[1].Type != Type(runtime.String) {
				return fmt.Errorf("%w %d %w: %w", ErrInvalidStep, i, ErrInvalidParamType, ErrFirstParamRequiredName)
			}
		} else if firstParamType != ID {
			return fmt.Errorf("%w %d %w: %w", ErrInvalidStep, i, ErrInvalidParamType, ErrFirstParamRequiredID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, step.Endpoint)
	}
	return nil
}

func (c *runCmd) Run(ctx context.Context, out io.Writer) error {
	c.s.log.Info("simulation",
		zap.String("plan", c.plan.Name),
		zap.String("description", c.plan.Description),
	)

	for i := range c.plan.Steps {
		step := &c.plan.Steps[i]
		c.s.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("endpoint", string(step.Endpoint)),
			zap.String("method", step.Method),
			zap.Any("params", step.Params),
		)

		resp := newResponse(i)
		err := c.runStep(ctx, i, step, resp)
		if err == nil && step.Require != nil {
			err = checkRequire(resp.Result.Response, step.Require)
		}
		if err != nil {
			resp.setError(err)
		}
		if perr := resp.Print(out); perr != nil {
			return perr
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (c *runCmd) runStep(ctx context.Context, i int, step *Step, resp *Response) error {
	switch step.Endpoint {
	case EndpointKey:
		name, err := stringParam(step.Params[0])
		if err != nil {
			return err
		}
		addr, err := keyCreateFunc(ctx, c.s.keys, name)
		if errors.Is(err, ErrDuplicateKeyName) {
			c.s.log.Debug("key already exists", zap.String("name", name))
			factory, err := getFactory(ctx, c.s.keys, name)
			if err != nil {
				return err
			}
			addr = factory.Address()
		} else if err != nil {
			return err
		}
		resp.Result.Msg = fmt.Sprintf("created named key with address %s", addr)
		return nil

	case EndpointExecute:
		caller, err := c.caller(ctx, step)
		if err != nil {
			return err
		}
		if caller == nil {
			return ErrMissingCallerKey
		}
		if step.Method == ProgramCreate {
			program, err := stringParam(step.Params[0])
			if err != nil {
				return err
			}
			constructor, err := stringParam(step.Params[1])
			if err != nil {
				return err
			}
			params, err := c.s.actionParams(ctx, step.Params[2:], c.resolveID)
			if err != nil {
				return err
			}
			txID, programID, err := c.s.createProgram(ctx, caller, program, constructor, params)
			if err != nil {
				return err
			}
			c.programIDs[fmt.Sprintf("step_%d", i)] = programID
			resp.Result.ID = txID.String()
			resp.Result.ProgramID = programID.String()
			return nil
		}
		return c.call(ctx, step, caller, false, resp)

	case EndpointReadOnly:
		caller, err := c.caller(ctx, step)
		if err != nil {
			return err
		}
		return c.call(ctx, step, caller, true, resp)

	default:
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, step.Endpoint)
	}
}

func (c *runCmd) call(ctx context.Context, step *Step, caller *auth.ED25519Factory, readonly bool, resp *Response) error {
	id, err := stringParam(Parameter{Type: Type(runtime.String), Value: step.Params[0].Value})
	if err != nil {
		return err
	}
	program, err := c.resolveID(id)
	if err != nil {
		return err
	}
	params, err := c.s.actionParams(ctx, step.Params[1:], c.resolveID)
	if err != nil {
		return err
	}
	txID, result, err := c.s.callProgram(ctx, caller, readonly, program, step.Method, params)
	if err != nil {
		return err
	}
	if !readonly {
		resp.Result.ID = txID.String()
	}
	resp.Result.Response = result
	return nil
}

// caller returns the factory of the step caller key, falling back to the plan
// caller key. It returns nil when neither is set.
func (c *runCmd) caller(ctx context.Context, step *Step) (*auth.ED25519Factory, error) {
	name := step.CallerKey
	if len(name) == 0 {
		name = c.plan.CallerKey
	}
	if len(name) == 0 {
		return nil, nil
	}
	return getFactory(ctx, c.s.keys, name)
}

// resolveID parses a program address or the synthetic identifier step_N,
// where N is the step that created the program.
func (c *runCmd) resolveID(id string) (codec.Address, error) {
	if strings.HasPrefix(id, "step_") {
		program, ok := c.programIDs[id]
		if !ok {
			return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrUnknownStepID, id)
		}
		return program, nil
	}
	return codec.StringToAddress(id)
}

func stringParam(p Parameter) (string, error) {
	v, ok := p.Value.(string)
	if !ok || p.Type != Type(runtime.String) {
		return "", fmt.Errorf("%w: %v is not a %s", ErrFailedParamTypeCast, p.Value, runtime.String)
	}
	return v, nil
}

func checkRequire(actual interface{}, require *Require) error {
	ok, err := validateAssertion(actual, &require.Result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: expected %v %s %s", ErrResultAssertionFailed, actual, require.Result.Operator, require.Result.Value)
	}
	return nil
}

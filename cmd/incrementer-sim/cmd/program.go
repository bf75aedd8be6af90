// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/programs/incrementer"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/utils"
)

func (s *Simulator) newProgramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Deploy and call programs",
	}
	cmd.AddCommand(
		s.newProgramListCmd(),
		s.newProgramABICmd(),
		s.newProgramCreateCmd(),
		s.newProgramCallCmd(),
	)
	return cmd
}

func (s *Simulator) newProgramListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the programs that can be deployed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range s.vm.Programs() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (s *Simulator) newProgramABICmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "abi [name]",
		Short: "Print the ABI of a registered or deployed program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				abi runtime.ABI
				err error
			)
			switch {
			case len(id) > 0:
				var program codec.Address
				program, err = codec.StringToAddress(id)
				if err != nil {
					return err
				}
				abi, err = s.vm.ProgramABI(cmd.Context(), program)
			case len(args) == 1:
				abi, err = s.vm.ABI(args[0])
			default:
				abi, err = s.vm.ABI(incrementer.Name)
			}
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(abi)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "address of a deployed program")
	return cmd
}

func (s *Simulator) newProgramCreateCmd() *cobra.Command {
	var (
		keyName   string
		program   string
		initValue int32
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Deploy a program in a signed transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			factory, err := getFactory(ctx, s.keys, keyName)
			if err != nil {
				return err
			}

			constructor := incrementer.DefaultFunction
			var params []actions.Parameter
			if cmd.Flags().Changed("init-value") {
				constructor = incrementer.NewFunction
				params = []actions.Parameter{{Type: runtime.I32, Value: initValue}}
			}

			txID, programID, err := s.createProgram(ctx, factory, program, constructor, params)
			if err != nil {
				return err
			}
			utils.Outf("{{green}}create program transaction successful:{{/}} %s\n", txID)
			utils.Outf("{{yellow}}program id:{{/}} %s\n", programID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyName, "key", "k", "", "name of the key that signs the transaction")
	cmd.Flags().StringVarP(&program, "program", "p", incrementer.Name, "name of the program to deploy")
	cmd.Flags().Int32Var(&initValue, "init-value", 0, "initial counter value, the default constructor is used when unset")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (s *Simulator) newProgramCallCmd() *cobra.Command {
	var (
		keyName  string
		id       string
		function string
		rawArgs  []string
		readonly bool
	)
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a function of a deployed program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			program, err := codec.StringToAddress(id)
			if err != nil {
				return err
			}

			var caller *auth.ED25519Factory
			if len(keyName) > 0 {
				caller, err = getFactory(ctx, s.keys, keyName)
				if err != nil {
					return err
				}
			}

			params, err := parseParams(rawArgs)
			if err != nil {
				return err
			}
			args, err := s.actionParams(ctx, params, codec.StringToAddress)
			if err != nil {
				return err
			}

			txID, result, err := s.callProgram(ctx, caller, readonly, program, function, args)
			if err != nil {
				return err
			}
			if !readonly {
				utils.Outf("{{green}}execute transaction successful:{{/}} %s\n", txID)
			}
			if result != nil {
				utils.Outf("{{yellow}}result:{{/}} %v\n", result)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyName, "key", "k", "", "name of the calling key, required unless --readonly")
	cmd.Flags().StringVar(&id, "id", "", "address of the deployed program")
	cmd.Flags().StringVarP(&function, "function", "f", "", "function to call")
	cmd.Flags().StringArrayVar(&rawArgs, "param", nil, "parameter as type=value, may be repeated")
	cmd.Flags().BoolVar(&readonly, "readonly", false, "query the program without submitting a transaction")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("function")
	return cmd
}

// parseParams reads parameters written as type=value.
func parseParams(raw []string) ([]Parameter, error) {
	params := make([]Parameter, 0, len(raw))
	for _, r := range raw {
		typ, value, ok := strings.Cut(r, "=")
		if !ok || len(typ) == 0 {
			return nil, fmt.Errorf("%w: %q is not type=value", ErrInvalidParam, r)
		}
		p := Parameter{Type: Type(typ), Value: value}
		if Type(typ) == Type(runtime.Bool) {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFailedParamTypeCast, err)
			}
			p.Value = b
		}
		params = append(params, p)
	}
	return params, nil
}

// actionParams resolves named keys and program ids into addresses. Every
// other parameter is passed through with its ABI type.
func (s *Simulator) actionParams(
	ctx context.Context,
	params []Parameter,
	resolveID func(string) (codec.Address, error),
) ([]actions.Parameter, error) {
	out := make([]actions.Parameter, 0, len(params))
	for _, p := range params {
		switch p.Type {
		case Key:
			name, ok := p.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, p.Type)
			}
			factory, err := getFactory(ctx, s.keys, name)
			if err != nil {
				return nil, err
			}
			out = append(out, actions.Parameter{Type: runtime.Address, Value: factory.Address().String()})
		case ID:
			v, ok := p.Value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrFailedParamTypeCast, p.Type)
			}
			addr, err := resolveID(v)
			if err != nil {
				return nil, err
			}
			out = append(out, actions.Parameter{Type: runtime.Address, Value: addr.String()})
		default:
			out = append(out, actions.Parameter{Type: runtime.Type(p.Type), Value: p.Value})
		}
	}
	return out, nil
}

// createProgram deploys [program] through its [constructor] and returns the
// new program account.
func (s *Simulator) createProgram(
	ctx context.Context,
	caller *auth.ED25519Factory,
	program string,
	constructor string,
	params []actions.Parameter,
) (ids.ID, codec.Address, error) {
	abi, err := s.vm.ABI(program)
	if err != nil {
		return ids.Empty, codec.EmptyAddress, err
	}
	if method, ok := abi.Method(constructor); ok {
		if err := actions.CheckParams(method, params); err != nil {
			return ids.Empty, codec.EmptyAddress, err
		}
	}
	b, err := actions.ParamsToBytes(params)
	if err != nil {
		return ids.Empty, codec.EmptyAddress, err
	}

	tx, err := actions.NewTransaction(s.nextNonce(), &actions.ProgramCreate{
		Program:     program,
		Constructor: constructor,
		Params:      b,
	}).Sign(caller)
	if err != nil {
		return ids.Empty, codec.EmptyAddress, err
	}
	txID, output, err := s.vm.Submit(ctx, tx)
	if err != nil {
		return txID, codec.EmptyAddress, err
	}
	programID, err := codec.ToAddress(output)
	if err != nil {
		return txID, codec.EmptyAddress, err
	}
	s.log.Debug("program created",
		zap.String("program", program),
		zap.Stringer("programID", programID),
		zap.Stringer("txID", txID),
	)
	return txID, programID, nil
}

// callProgram calls [function] and decodes its result. A readonly call runs
// as [caller], or as the empty address when no caller is given, and returns
// an empty tx id.
func (s *Simulator) callProgram(
	ctx context.Context,
	caller *auth.ED25519Factory,
	readonly bool,
	program codec.Address,
	function string,
	params []actions.Parameter,
) (ids.ID, interface{}, error) {
	abi, err := s.vm.ProgramABI(ctx, program)
	if err != nil {
		return ids.Empty, nil, err
	}
	method, ok := abi.Method(function)
	if !ok {
		return ids.Empty, nil, fmt.Errorf("%w: %s.%s", runtime.ErrUnknownFunction, abi.Program, function)
	}
	if err := actions.CheckParams(method, params); err != nil {
		return ids.Empty, nil, err
	}
	b, err := actions.ParamsToBytes(params)
	if err != nil {
		return ids.Empty, nil, err
	}

	var (
		txID   ids.ID
		output []byte
	)
	if readonly {
		actor := codec.EmptyAddress
		if caller != nil {
			actor = caller.Address()
		}
		output, err = s.vm.Query(ctx, actor, program, function, b)
	} else {
		if caller == nil {
			return ids.Empty, nil, ErrMissingCallerKey
		}
		var tx *actions.Transaction
		tx, err = actions.NewTransaction(s.nextNonce(), &actions.ProgramExecute{
			ProgramID: program,
			Function:  function,
			Params:    b,
		}).Sign(caller)
		if err != nil {
			return ids.Empty, nil, err
		}
		txID, output, err = s.vm.Submit(ctx, tx)
	}
	if err != nil {
		return txID, nil, err
	}

	result, err := actions.DecodeResult(method.Returns, output)
	if err != nil {
		return txID, nil, err
	}
	return txID, result, nil
}

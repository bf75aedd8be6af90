// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/crypto/ed25519"
	"github.com/ava-labs/incrementer/state"
	"github.com/ava-labs/incrementer/storage"
	"github.com/ava-labs/incrementer/utils"
)

func (s *Simulator) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage named ed25519 keys",
	}

	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a named private key and store it in the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			} else {
				var err error
				name, err = promptString("key name")
				if err != nil {
					return err
				}
			}
			addr, err := keyCreateFunc(cmd.Context(), s.keys, name)
			if err != nil {
				return err
			}
			s.log.Debug("key created",
				zap.String("name", name),
				zap.Stringer("address", addr),
			)
			utils.Outf("{{green}}created key %s:{{/}} %s\n", name, addr)
			return nil
		},
	}

	address := &cobra.Command{
		Use:   "address <name>",
		Short: "Print the address of a named key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := getFactory(cmd.Context(), s.keys, args[0])
			if err != nil {
				return err
			}
			utils.Outf("{{yellow}}%s:{{/}} %s\n", args[0], factory.Address())
			return nil
		},
	}

	cmd.AddCommand(create, address)
	return cmd
}

func promptString(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(strings.TrimSpace(input)) == 0 {
				return ErrInputEmpty
			}
			return nil
		},
	}
	text, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// keyCreateFunc generates a key, stores it under [name] and returns its
// address. A name can only be used once.
func keyCreateFunc(ctx context.Context, mu state.Mutable, name string) (codec.Address, error) {
	_, ok, err := storage.GetKey(ctx, mu, name)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if ok {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrDuplicateKeyName, name)
	}
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return codec.EmptyAddress, err
	}
	if err := storage.SetKey(ctx, mu, priv, name); err != nil {
		return codec.EmptyAddress, err
	}
	return auth.NewED25519Address(priv.PublicKey()), nil
}

func getFactory(ctx context.Context, im state.Immutable, name string) (*auth.ED25519Factory, error) {
	priv, ok, err := storage.GetKey(ctx, im, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNamedKeyNotFound, name)
	}
	return auth.NewED25519Factory(priv), nil
}

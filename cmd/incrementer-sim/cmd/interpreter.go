// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

func (s *Simulator) newInterpreterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpreter",
		Short: "Read commands line by line from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if len(line) == 0 || strings.HasPrefix(line, "#") {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				args, err := shellwords.Parse(line)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
					continue
				}

				// a fresh tree parses every line, the simulator state is shared
				root := s.NewRootCmd()
				root.SetArgs(args)
				root.SetIn(cmd.InOrStdin())
				root.SetOut(cmd.OutOrStdout())
				root.SetErr(cmd.ErrOrStderr())
				if err := root.ExecuteContext(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
				}
			}
			return scanner.Err()
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claimguard/internal/auth"
)

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for an auth.users entry",
		Long: `Hash a password for the auth.users map. The password is read from
--password or, when omitted, from the first line of stdin.

Config keys are lowercased when loaded, so usernames must be lowercase.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				var err error
				if password, err = readBody(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().String("password", "", "password to hash (default: read stdin)")

	return cmd
}

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nutrilabel/pkg/admin"
)

// hashPasswordCommand creates the hash-password command that prints the
// value for admin.password_hash.
func (c *CLI) hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the admin password hash for the config file",
		Long: `Print the SHA-256 hex digest of a password, for use as admin.password_hash.

The password is read from the first line of stdin when no argument is given,
which keeps it out of the shell history.`,
		Example: `  nutrilabel hash-password 's3cret'
  printf 's3cret' | nutrilabel hash-password`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), admin.HashPassword(password))
			return nil
		},
	}
}

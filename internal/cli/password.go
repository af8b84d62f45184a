package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joacominatel/dbview/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPasswordCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the connection password stored in the OS keychain",
		Long: `The password is stored under the service "dbview" for the account
user@host:port/database of the configured connection. It is used whenever
no password is given by flag, environment or config file.`,
	}
	cmd.AddCommand(newPasswordSetCmd(cfgFile), newPasswordDeleteCmd(cfgFile))
	return cmd
}

func newPasswordSetCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the password for the configured connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			conn := cfg.Connection

			fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", conn.KeyringAccount())
			pw, err := readPassword(cmd.InOrStdin())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if pw == "" {
				return errors.New("empty password, nothing stored")
			}

			if err := config.SavePassword(conn, pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password stored for %s\n", conn.KeyringAccount())
			return nil
		},
	}
}

func newPasswordDeleteCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password for the configured connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			if err := config.DeletePassword(cfg.Connection); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password removed for %s\n", cfg.Connection.KeyringAccount())
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, otherwise one line.
func readPassword(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

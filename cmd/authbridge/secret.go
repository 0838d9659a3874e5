package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dropDatabas3/authbridge/internal/security/secretbox"
	"github.com/spf13/cobra"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Sellar secretos de config con SECRETBOX_MASTER_KEY",
	}

	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una clave maestra nueva (base64)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := secretbox.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), k)
			return err
		},
	}

	seal := &cobra.Command{
		Use:   "seal [plaintext]",
		Short: "Imprime el valor enc:... (sin argumento lee una línea de stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := secretbox.New(os.Getenv(secretbox.EnvMasterKey))
			if err != nil {
				return err
			}
			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("nada para sellar")
				}
				plain = strings.TrimRight(line, "\r\n")
			}
			sealed, err := box.Seal(plain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return err
		},
	}

	cmd.AddCommand(keygen, seal)
	return cmd
}

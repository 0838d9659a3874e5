// Command authbridge corre el broker OAuth2/SSO y trae utilidades para
// emitir y verificar tokens a mano.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version se pisa con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, configPath string

	root := &cobra.Command{
		Use:           "authbridge",
		Short:         "Broker OAuth2/SSO para apps internas",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional; el entorno real siempre gana.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
					return fmt.Errorf("env file %s: %w", envFile, err)
				}
			}
			if !cmd.Flags().Changed("config") {
				configPath = os.Getenv("CONFIG_PATH")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Archivo .env a cargar si existe")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Archivo YAML de config (env CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(&configPath),
		newTokenCmd(&configPath),
		newSignOnCmd(),
		newSecretCmd(),
	)
	return root
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authbridge/internal/config"
	"github.com/dropDatabas3/authbridge/internal/http/server"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/metrics"
	"github.com/spf13/cobra"
)

func newTokenCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir o verificar identity tokens con JWT_SECRET",
	}
	cmd.AddCommand(newTokenIssueCmd(configPath), newTokenVerifyCmd(configPath))
	return cmd
}

func tokenService(configPath string) (*jwt.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return server.NewTokenService(cfg, time.Now)
}

func newTokenIssueCmd(configPath *string) *cobra.Command {
	var (
		sub jwt.Subject
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Firma un token para un sujeto",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sub.ID == "" {
				return errors.New("--sub es requerido")
			}
			svc, err := tokenService(*configPath)
			if err != nil {
				return err
			}
			opts := jwt.IssueOptions{Method: "cli"}
			if ttl > 0 {
				opts.ExpiresAt = time.Now().Add(ttl)
			}
			iss, err := svc.Issue(sub, opts)
			if err != nil {
				return err
			}
			metrics.TokensIssued.WithLabelValues("cli").Inc()
			return printJSON(cmd, map[string]any{
				"token":     iss.Token,
				"expiresAt": iss.ExpiresAt.Unix(),
				"kid":       iss.KID,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&sub.ID, "sub", "", "ID del usuario")
	f.StringVar(&sub.Name, "name", "", "Nombre")
	f.StringVar(&sub.Email, "email", "", "Email")
	f.StringVar(&sub.Role, "role", "user", "Rol")
	f.DurationVar(&ttl, "ttl", 0, "Vida del token (default JWT_TTL)")
	return cmd
}

func newTokenVerifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verifica firma y vencimiento de un token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := tokenService(*configPath)
			if err != nil {
				return err
			}
			v, err := svc.Verify(args[0])
			if err != nil {
				return fmt.Errorf("token inválido: %w", err)
			}
			return printJSON(cmd, map[string]any{
				"header":    v.Header,
				"payload":   v.Payload,
				"expiresAt": v.ExpiresAt.Unix(),
			})
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

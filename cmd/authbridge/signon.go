package main

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/dropDatabas3/authbridge/internal/signon"
	"github.com/spf13/cobra"
)

func newSignOnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signon",
		Short: "Utilidades para sign-on custom",
	}

	var key string
	hash := &cobra.Command{
		Use:   "hash <empno>...",
		Short: "Genera payloads V5_MD5 listos para /auth/custom-sign-on",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv("V5_MD5_PRESHARED_KEY")
			}
			if key == "" {
				return errors.New("falta la clave (flag --key o env V5_MD5_PRESHARED_KEY)")
			}
			tTime := strconv.FormatInt(time.Now().Unix(), 10)
			out := make([]map[string]any, 0, len(args))
			for _, empno := range args {
				out = append(out, map[string]any{
					"method": string(signon.MethodV5MD5),
					"payload": map[string]string{
						"empno":  empno,
						"t_time": tTime,
						"token":  signon.Hash(empno, []byte(key), tTime),
					},
				})
			}
			return printJSON(cmd, out)
		},
	}
	hash.Flags().StringVar(&key, "key", "", "Clave compartida (default env V5_MD5_PRESHARED_KEY)")

	cmd.AddCommand(hash)
	return cmd
}

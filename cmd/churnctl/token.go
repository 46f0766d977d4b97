package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamwise/churn/pkg/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		secret     string
		secretFile string
		keyFile    string
		issuer     string
		subject    string
		roles      []string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the churn-service API",
		Long: `Issue a JWT. --private-key-file signs with RS256; otherwise the HMAC
secret comes from --secret, --secret-file or $JWT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := auth.JWTConfig{Issuer: issuer, Expiration: ttl}
			switch {
			case keyFile != "":
				pem, err := auth.LoadKeyFromFile(keyFile)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = string(pem)
			case secretFile != "":
				data, err := auth.LoadKeyFromFile(secretFile)
				if err != nil {
					return err
				}
				cfg.Secret = strings.TrimSpace(string(data))
			case secret != "":
				cfg.Secret = secret
			default:
				cfg.Secret = os.Getenv("JWT_SECRET")
			}
			if cfg.PrivateKeyPEM == "" && cfg.Secret == "" {
				return errors.New("a signing key is required (--secret, --secret-file, --private-key-file or JWT_SECRET)")
			}
			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&secret, "secret", "", "HMAC secret (default $JWT_SECRET)")
	f.StringVar(&secretFile, "secret-file", "", "File holding the HMAC secret")
	f.StringVar(&keyFile, "private-key-file", "", "PEM RSA private key for RS256 tokens")
	f.StringVar(&issuer, "issuer", "churn-service", "Token issuer")
	f.StringVar(&subject, "subject", "churnctl", "Token subject")
	f.StringSliceVar(&roles, "role", []string{auth.RoleAnalyst}, "Role claim, repeatable")
	f.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtmw "umarket/internal/platform/jwt"
)

// tokenCmd はローカル開発用に SUPABASE_JWT_SECRET で署名したアクセストークンを発行します。
func tokenCmd() *cobra.Command {
	var (
		sub   string
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.SupabaseJWTSecret == "" {
				return errors.New("SUPABASE_JWT_SECRET is not set")
			}
			token, err := jwtmw.NewGenerator(cfg.SupabaseJWTSecret, ttl).GenerateToken(sub, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", "", "user id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

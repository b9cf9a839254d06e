package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/pos-ledger/internal/auth"
	"github.com/josh-kwaku/pos-ledger/internal/repository"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Operator tooling for the POS ledger",
		Version: Version,
	}

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	var (
		name   string
		secret string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token [staff-id]",
		Short: "Mint a bearer token for a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("staff id: %w", err)
			}
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.GenerateToken(actorID, name, secret, expiry)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name carried in the token")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "HMAC secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVarP(&expiry, "expiry", "e", 8*time.Hour, "Token lifetime")

	return cmd
}

func purgeCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "purge-idempotency",
		Short: "Delete expired idempotency records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("a database url is required (--database-url or DATABASE_URL)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := repository.NewPostgresDB(ctx, dsn, repository.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1, PingAttempts: 3})
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := repository.NewIdempotencyRepository(db).PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired records\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")

	return cmd
}

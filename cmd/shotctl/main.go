package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"shotapi/internal/auth"
	"shotapi/internal/config"
	"shotapi/internal/metadata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(config.Load())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shotctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shotctl",
		Short: "Screenshot API operator CLI",
		Long: `shotctl issues and inspects API tokens and checks metadata documents against
the limits the server enforces. Settings come from the same environment as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newTokenCmd(cfg), newMetadataCmd(cfg))
	return cmd
}

func newTokenCmd(cfg *config.AppConfig) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or verify bearer tokens",
	}
	cmd.PersistentFlags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")

	secretBytes := func() ([]byte, error) {
		if secret != "" {
			return []byte(secret), nil
		}
		if cfg.Auth.JWTSecret == "" {
			return nil, config.ErrJWTSecretRequired
		}
		return []byte(cfg.Auth.JWTSecret), nil
	}

	var username string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secretBytes()
			if err != nil {
				return err
			}
			token, err := auth.Issue(username, key, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	issue.Flags().StringVar(&username, "username", cfg.Auth.Username, "Identity to put in the token")
	issue.Flags().DurationVar(&ttl, "ttl", cfg.Auth.TokenTTL, "Token lifetime")

	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secretBytes()
			if err != nil {
				return err
			}
			claims, err := auth.Verify(args[0], key)
			if err != nil {
				return fmt.Errorf("%s: %w", auth.Reason(err), err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"username":   claims.Username,
				"issued_at":  time.Unix(claims.IssuedAt, 0).UTC().Format(time.RFC3339),
				"expires_at": time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339),
				"expires_in": claims.ExpiresIn(time.Now()).Round(time.Second).String(),
			})
		},
	}

	cmd.AddCommand(issue, verify)
	return cmd
}

func newMetadataCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Work with screenshot metadata documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file.json|->",
		Short: "Validate a metadata document and print its stored form",
		Long: `check runs a PATCH body through validation, sanitization and the size check.
The file may hold the bare metadata object or the {"metadata": {...}} request body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			pipeline := metadata.New(metadata.Limits(cfg.Metadata))
			m, err := pipeline.Apply(metadata.Metadata{}, raw)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"metadata": m,
				"stored":   metadata.Encode(m),
				"size":     metadata.EncodedSize(m),
				"limit":    pipeline.Limits().MaxBytes,
			})
		},
	})
	return cmd
}

// readDocument loads path ("-" for stdin) and unwraps a request body envelope.
func readDocument(stdin io.Reader, path string) (any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if obj, ok := raw.(map[string]any); ok {
		if inner, ok := obj["metadata"]; ok {
			return inner, nil
		}
	}
	return raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bullion/bullion-cli/internal/config"
	"github.com/bullion/bullion-cli/internal/iocontext"
	"github.com/bullion/bullion-cli/internal/validation"
)

// Keys read from --env-file by auth login.
const (
	envFileEmail    = "BULLION_EMAIL"
	envFilePassword = "BULLION_PASSWORD"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage the API session",
		Long:    "Log in to the Bullion admin API. The session token is stored in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
		envFile       string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Long: strings.TrimSpace(`
Exchange admin credentials for a session token and store it in the OS keychain.

Later commands send the token as a bearer token until 'bullion auth logout'.
`),
		Example: strings.TrimSpace(`
  # Password on stdin (keeps it out of shell history)
  echo "$BULLION_PASSWORD" | bullion auth login --email admin@example.com --password-stdin

  # Credentials and base URL from a .env file
  bullion auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if passwordStdin && password != "" {
				return fmt.Errorf("--password conflicts with --password-stdin")
			}

			if envFile != "" {
				envVars, err := config.LoadEnvFile(envFile)
				if err != nil {
					return err
				}
				config.ApplyRuntimeVars(envVars)
				if email == "" {
					email = strings.TrimSpace(envVars[envFileEmail])
				}
				if password == "" && !passwordStdin {
					password = envVars[envFilePassword]
				}
			}

			if passwordStdin {
				line, err := iocontext.GetIO(cmd.Context()).ReadLine()
				if err != nil {
					return fmt.Errorf("--password-stdin: %w", err)
				}
				password = line
			}

			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				return fmt.Errorf("--password or --password-stdin is required")
			}
			if err := validation.ValidateEmail(email); err != nil {
				return fmt.Errorf("invalid value for --email: %w", err)
			}

			client, cfg, err := newClientFactory().client()
			if err != nil {
				return err
			}
			data, err := client.Auth().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"authenticated": true,
					"name":          data.Name,
					"email":         data.Email,
					"base_url":      cfg.BaseURL,
				})
			}

			who := data.Email
			if who == "" {
				who = email
			}
			if data.Name != "" {
				who = fmt.Sprintf("%s <%s>", data.Name, who)
			}
			printAction(cmd, "Logged in as", who, nil, "")
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load BULLION_EMAIL, BULLION_PASSWORD, BULLION_BASE_URL and keyring settings from a .env file")
	flagAlias(cmd.Flags(), "email", "em")
	flagAlias(cmd.Flags(), "password", "pw")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the base URL and whether a session token is stored",
		Example: strings.TrimSpace(`
  bullion auth status
  bullion auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := newClientFactory().client()
			if err != nil {
				return err
			}
			token, ok, err := client.Auth().Token()
			if err != nil {
				return fmt.Errorf("failed to read session token: %w", err)
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": ok,
					"base_url":      cfg.BaseURL,
					"source":        cfg.Source,
				}
				if ok {
					payload["token"] = maskToken(token)
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if ok {
				_, _ = fmt.Fprintln(out, "Logged in")
			} else {
				_, _ = fmt.Fprintln(out, "Not logged in.")
			}
			_, _ = fmt.Fprintf(out, "  Base URL: %s (%s)\n", cfg.BaseURL, cfg.Source)
			if ok {
				_, _ = fmt.Fprintf(out, "  Token: %s\n", maskToken(token))
			} else {
				_, _ = fmt.Fprintln(out, "Run 'bullion auth login' to authenticate.")
			}
			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			if err := client.Auth().Logout(cmd.Context()); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"authenticated": false})
			}
			printAction(cmd, "Logged out", "", nil, "")
			return nil
		}),
	}
}

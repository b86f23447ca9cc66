package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bullion/bullion-cli/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local user directory cache",
		Long: strings.TrimSpace(`
Names passed to 'users get' and 'users update' are resolved against the last
listed users. The list is cached for 5 minutes in the user cache directory,
or in Redis when BULLION_REDIS_URL is set. Set BULLION_NO_CACHE=1 to disable.
`),
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("failed to locate cache directory: %w", err)
			}
			removed := cache.ClearAll(dir)

			if url := strings.TrimSpace(os.Getenv("BULLION_REDIS_URL")); url != "" {
				n, err := cache.ClearRedisURL(cmd.Context(), url)
				if err != nil {
					return fmt.Errorf("failed to clear redis cache: %w", err)
				}
				removed += n
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": removed})
			}
			printAction(cmd, "Cleared", "cache entries:", removed, "")
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return fmt.Errorf("failed to locate cache directory: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"path": dir})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		}),
	}
}

package cmd

import (
	"encoding/json"

	"github.com/hendrywilliam/discord-feed/src/config"
	"github.com/spf13/cobra"
)

const redacted = "********"

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfiguration()
			if err != nil {
				return err
			}
			if cfg.DiscordBotToken != "" {
				cfg.DiscordBotToken = redacted
			}
			if cfg.APIKey != "" {
				cfg.APIKey = redacted
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

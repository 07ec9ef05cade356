package main

import (
	"github.com/spf13/cobra"

	"github.com/talentbridge/enrich-cli/internal/config"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the resolved configuration",
	Long:  "Shows the configuration after defaults, config file, and environment are applied. API keys are redacted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(redactedConfig(*cfg))
	},
}

// redactedConfig masks credentials so the dump is safe to paste into a bug
// report.
func redactedConfig(c config.Config) config.Config {
	c.Anthropic.Key = redactKey(c.Anthropic.Key)
	c.Jina.Key = redactKey(c.Jina.Key)
	c.Hunter.Key = redactKey(c.Hunter.Key)
	return c
}

func redactKey(s string) string {
	if s == "" {
		return ""
	}
	return "[set]"
}

func init() {
	rootCmd.AddCommand(envCmd)
}

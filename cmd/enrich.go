package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentbridge/enrich-cli/internal/pipeline"
)

var (
	enrichLimit    int
	enrichID       string
	enrichBatch    string
	enrichDryRun   bool
	enrichElevated bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich startup records that need it",
	Long:  "Runs the placeholder pre-pass, then enriches records flagged needs_enrichment one at a time: profile scrape, targeted searches with structured extraction, founder email discovery, merge, persist.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("elevated") {
			cfg.Anthropic.Elevated = enrichElevated
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if enrichID != "" {
			result, err := env.Pipeline.RunOne(ctx, enrichID)
			if err != nil {
				return eris.Wrapf(err, "enrich %s", enrichID)
			}
			return printJSON(result)
		}

		summary, err := env.Pipeline.Run(ctx, pipeline.RunOptions{
			Limit:  enrichLimit,
			Batch:  enrichBatch,
			DryRun: enrichDryRun,
		})
		if err != nil {
			return eris.Wrap(err, "run batch")
		}
		return printJSON(summary)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max records to process (0 = all)")
	enrichCmd.Flags().StringVar(&enrichID, "id", "", "enrich a single record by id")
	enrichCmd.Flags().StringVar(&enrichBatch, "batch", "", "only process records with this batch label")
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "list records that would be enriched without touching anything")
	enrichCmd.Flags().BoolVar(&enrichElevated, "elevated", false, "treat the inference key as paid tier for this run")
	rootCmd.AddCommand(enrichCmd)
}

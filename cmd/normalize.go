package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentbridge/enrich-cli/internal/pipeline"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Clear placeholder values so records re-enter the enrichment pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		schema, err := loadSchema()
		if err != nil {
			return err
		}
		p := pipeline.New(st, nil, nil, nil, nil, nil, schema, pipeline.Options{})
		changed, err := p.Normalize(ctx)
		if err != nil {
			return eris.Wrap(err, "normalize")
		}
		fmt.Printf("cleared placeholder fields on %d records\n", changed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentbridge/enrich-cli/internal/model"
)

var foundersDiscover bool

var foundersCmd = &cobra.Command{
	Use:   "founders <startup-id>",
	Short: "List a startup's founders, or run email discovery for them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if foundersDiscover {
			env, err := initPipeline(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			founders, found, err := env.Pipeline.DiscoverEmails(ctx, args[0])
			if err != nil {
				return eris.Wrapf(err, "discover emails for %s", args[0])
			}
			return printJSON(struct {
				EmailsFound int                   `json:"emails_found"`
				Founders    []model.FounderRecord `json:"founders"`
			}{found, founders})
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		founders, err := st.ListFounders(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "list founders for %s", args[0])
		}
		return printJSON(founders)
	},
}

func init() {
	foundersCmd.Flags().BoolVar(&foundersDiscover, "discover", false, "verify pattern-generated addresses for founders without one")
	rootCmd.AddCommand(foundersCmd)
}

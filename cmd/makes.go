package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantum-builds/VinAudit/services"
)

func makesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "makes [make]",
		Short: "List known makes, or the models of one make",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			est := services.NewEstimator(db, a.logger, a.metrics, a.cfg.SampleLimit)

			var names []string
			if len(args) == 1 {
				names, err = est.ListModels(ctx, args[0])
			} else {
				names, err = est.ListMakes(ctx)
			}
			if err != nil {
				return err
			}

			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

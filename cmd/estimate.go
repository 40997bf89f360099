package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quantum-builds/VinAudit/config"
	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/services"
)

func estimateCommand(a *app) *cobra.Command {
	var (
		q           models.EstimateQuery
		showSamples bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a market price from stored listings",
		Long: `Estimate the market price of a vehicle by year, make and model.
Estimates are cached; repeated queries return the cached price.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEstimate(cmd, q, showSamples)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.Year, "year", "", "Model year")
	flags.StringVar(&q.Make, "make", "", "Vehicle make")
	flags.StringVar(&q.Model, "model", "", "Vehicle model")
	flags.StringVar(&q.Mileage, "mileage", "", "Odometer reading")
	flags.BoolVar(&showSamples, "samples", true, "List the sample listings used")
	flags.Int("sample-limit", a.v.GetInt(config.KeySampleLimit), "Maximum listings to sample")

	bindFlags(a.v, flags.Lookup, map[string]string{
		config.KeySampleLimit: "sample-limit",
	})

	return cmd
}

func (a *app) runEstimate(cmd *cobra.Command, q models.EstimateQuery, showSamples bool) error {
	ctx := cmd.Context()
	db, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stop := a.startMetrics()
	defer stop()

	est := services.NewEstimator(db, a.logger, a.metrics, a.cfg.SampleLimit)
	result := est.Estimate(ctx, q)

	out := cmd.OutOrStdout()
	printEstimate(out, q, result)

	insights := services.NewInsightService(a.logger)
	insights.Print(out, insights.Generate(result.Samples))

	if showSamples {
		printSamples(out, result.Samples)
	}
	return nil
}

func printEstimate(w io.Writer, q models.EstimateQuery, e models.Estimate) {
	fmt.Fprintf(w, "\nQuery     : year=%q make=%q model=%q mileage=%q\n", q.Year, q.Make, q.Model, q.Mileage)
	if e.Price == 0 {
		fmt.Fprintf(w, "Estimate  : no estimate available (%s)\n", e.Outcome)
	} else {
		fmt.Fprintf(w, "Estimate  : $%s (%s)\n", humanize.Comma(e.Price), e.Outcome)
		fmt.Fprintf(w, "Confidence: R² %.3f\n", e.Confidence)
	}
	fmt.Fprintf(w, "Samples   : %d\n", e.SampleSize)
}

func printSamples(w io.Writer, samples []*models.Listing) {
	if len(samples) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIN\tYEAR\tMAKE\tMODEL\tTRIM\tPRICE\tMILEAGE\tLOCATION")
	for _, l := range samples {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.VIN, l.Year, l.Make, l.Model, deref(l.Trim), formatPrice(l), formatMileage(l.Mileage),
			l.DealerCity+", "+l.DealerState)
	}
	_ = tw.Flush()
}

func formatPrice(l *models.Listing) string {
	if !l.Price.Valid {
		return "-"
	}
	return "$" + humanize.CommafWithDigits(l.Price.Decimal.InexactFloat64(), 2)
}

func formatMileage(m *int) string {
	if m == nil {
		return "-"
	}
	return humanize.Comma(int64(*m))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"herd-mating/internal/client"
	"herd-mating/internal/domain/matings"
	"herd-mating/internal/platform/httpclient"

	"github.com/spf13/cobra"
)

type recommendFlags struct {
	api           string
	user          string
	females       []int64
	topN          int
	maxInbreeding float64
	save          bool
	batchName     string
	timeout       time.Duration
}

func newRecommendCmd() *cobra.Command {
	f := &recommendFlags{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank bulls for a set of females through a running API",
		Long: `Llama a POST /matings/batch de una API en ejecución e imprime el ranking por hembra.
Con --save los pares quedan registrados como apareamientos planificados.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, f)
		},
	}

	api := os.Getenv("API_URL")
	if api == "" {
		api = "http://localhost:8080"
	}
	fl := cmd.Flags()
	fl.StringVar(&f.api, "api", api, "base URL of the API (env API_URL)")
	fl.StringVar(&f.user, "user", "", "operator recorded as created_by (X-User)")
	fl.Int64SliceVar(&f.females, "females", nil, "female ids, comma separated")
	fl.IntVar(&f.topN, "top-n", 0, "bulls per female (server default when 0)")
	fl.Float64Var(&f.maxInbreeding, "max-inbreeding", -1, "inbreeding ceiling in % (server default when negative)")
	fl.BoolVar(&f.save, "save", false, "persist the returned pairs as planned matings")
	fl.StringVar(&f.batchName, "batch-name", "", "name stored with the saved batch")
	fl.DurationVar(&f.timeout, "timeout", 60*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("females")
	return cmd
}

func runRecommend(cmd *cobra.Command, f *recommendFlags) error {
	c, err := client.New(f.api, f.user, f.timeout)
	if err != nil {
		return err
	}

	req := client.BatchRequest{
		FemaleIDs: f.females,
		Save:      f.save,
		BatchName: f.batchName,
	}
	if f.topN > 0 {
		req.TopN = &f.topN
	}
	if f.maxInbreeding >= 0 {
		req.MaxInbreeding = &f.maxInbreeding
	}

	res, err := c.Batch(cmd.Context(), req)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.Message != "" {
			return fmt.Errorf("api rejected request (%d): %s", he.StatusCode, he.Message)
		}
		return err
	}

	printBatch(cmd.OutOrStdout(), res)
	return nil
}

func printBatch(out io.Writer, res matings.BatchResponse) {
	s := res.Summary
	fmt.Fprintf(out, "%d hembras, %d toros analizados, top %d, consanguinidad < %.1f%%\n",
		s.TotalFemales, s.TotalBullsAnalyzed, s.TopN, s.MaxInbreeding)
	if s.Saved {
		fmt.Fprintf(out, "lote %s guardado (%s)\n", s.BatchName, s.BatchID)
	}

	for _, r := range res.Results {
		name := r.Female.Name
		if name == "" {
			name = r.Female.RegID
		}
		fmt.Fprintf(out, "\n%s [%s]\n", name, r.Female.RegID)
		if len(r.TopBulls) == 0 {
			fmt.Fprintln(out, "  sin toros bajo el límite de consanguinidad")
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tTORO\tSCORE\tGRADO\tCONSANG.\tRECOMENDACIÓN")
		for _, c := range r.TopBulls {
			fmt.Fprintf(tw, "  %d\t%s\t%.1f\t%s\t%.2f%%\t%s\n",
				c.Rank, c.Bull.Code, c.Score, c.Grade, c.Inbreeding.Expected, c.Recommendation.Status)
		}
		_ = tw.Flush()
	}
}

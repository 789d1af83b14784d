package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/services/report"
	"glolotto/internal/services/results/domain"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch DD/MM/YYYY...",
		Short: "Fetches the given draw dates and saves those not stored yet.",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			reqs := make([]drawdate.Request, 0, len(args))
			for _, s := range args {
				req, err := drawdate.ParseRequest(s)
				if err != nil {
					return err
				}
				reqs = append(reqs, req)
			}
			rep, err := a.res.Ports.Ingest.Run(cmd.Context(), reqs)
			return reportRun(cmd.OutOrStdout(), reqs, rep, err)
		}),
	}
}

func (a *app) yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year YYYY",
		Short: "Fetches every draw day (1st and 16th) of a year.",
		Args:  cobra.ExactArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return perr.InvalidArgf("year %q is not a number", args[0])
			}
			rep, err := a.res.Ports.Ingest.RunYear(cmd.Context(), year)
			return reportRun(cmd.OutOrStdout(), drawdate.DrawDates(year), rep, err)
		}),
	}
}

func (a *app) ingestRawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest-raw FILE|-",
		Short: "Parses a saved API reply and inserts it. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", args[0])
			}
			id, err := a.res.Ports.Ingest.IngestRaw(cmd.Context(), string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully inserted lottery with ID: %d\n", id)
			return nil
		}),
	}
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report YYYY-MM-DD",
		Short: "Renders the html report of one draw into the report directory.",
		Args:  cobra.ExactArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			path, err := a.res.Ports.Report.Save(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report generated successfully for date: %s\n%s\n", args[0], path)
			return nil
		}),
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Creates the results tables if they do not exist.",
		Args:  cobra.NoArgs,
		RunE: a.with(func(cmd *cobra.Command, _ []string) error {
			if err := a.res.Ports.Store.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database created successfully")
			return nil
		}),
	}
}

func (a *app) latestCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Lists the most recent stored draws.",
		Args:  cobra.NoArgs,
		RunE: a.with(func(cmd *cobra.Command, _ []string) error {
			recs, err := a.res.Ports.Reads.Latest(cmd.Context(), n)
			if err != nil {
				return err
			}
			printDraws(cmd.OutOrStdout(), recs)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&n, "limit", "n", 10, "number of draws to list")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search NUMBER",
		Short: "Finds stored prize numbers containing NUMBER.",
		Args:  cobra.ExactArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			hits, err := a.res.Ports.Reads.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Draw", "Prize", "Number", "Amount"})
			for _, h := range hits {
				t.AppendRow(table.Row{
					h.Draw.DrawDate,
					report.DisplayName(h.Prize.Category),
					h.Prize.NumberValue,
					report.FormatAmount(h.Prize.PrizeAmount),
				})
			}
			t.AppendFooter(table.Row{"", "", "Hits", len(hits)})
			t.Render()
			return nil
		}),
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show YYYY-MM-DD",
		Short: "Shows every prize number of one stored draw.",
		Args:  cobra.ExactArgs(1),
		RunE: a.with(func(cmd *cobra.Command, args []string) error {
			d, found, err := a.res.Ports.Reads.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return perr.NotFoundf("no draw on %s", args[0])
			}

			byCat := map[domain.Category][]domain.PrizeNumber{}
			for _, p := range d.Prizes {
				byCat[p.Category] = append(byCat[p.Category], p)
			}
			t := newTable(cmd.OutOrStdout())
			t.SetTitle("%s (period %s)", d.Draw.DrawDate, d.Draw.Period)
			t.AppendHeader(table.Row{"Prize", "Amount", "Round", "Number"})
			for _, c := range report.Order {
				for _, p := range byCat[c] {
					t.AppendRow(table.Row{report.DisplayName(c), report.FormatAmount(p.PrizeAmount), p.RoundNumber, p.NumberValue})
				}
			}
			t.Render()
			return nil
		}),
	}
}

func printDraws(w io.Writer, recs []domain.DrawRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Draw", "Period", "Stored at"})
	for _, r := range recs {
		t.AppendRow(table.Row{r.ID, r.DrawDate, r.Period, r.CreatedAt.UTC().Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

// reportRun prints the run table whenever the run started, so results fetched
// before a failed save are still listed, then returns err
func reportRun(w io.Writer, reqs []drawdate.Request, rep domain.RunReport, err error) error {
	if rep.RunID == "" {
		return err
	}
	printRun(w, reqs, rep)
	if err != nil && rep.Fetched() > 0 && !rep.Persisted {
		fmt.Fprintf(w, "%d fetched results were not saved\n", rep.Fetched())
	}
	return err
}

// printRun lists each requested date with its outcome, in request order
func printRun(w io.Writer, reqs []drawdate.Request, rep domain.RunReport) {
	status := map[string]string{}
	for _, k := range rep.AlreadyStored {
		status[k] = "already stored"
	}
	for _, k := range rep.NoResult {
		status[k] = "no result"
	}
	for _, f := range rep.Failed {
		status[f.Date] = "failed (" + f.Kind + ")"
	}
	fetched := "fetched"
	if rep.Persisted {
		fetched = "saved"
	}

	t := newTable(w)
	t.SetTitle("run %s", rep.RunID)
	t.AppendHeader(table.Row{"Date", "Outcome"})
	for _, r := range reqs {
		s, ok := status[r.Key()]
		if !ok {
			s = fetched
		}
		t.AppendRow(table.Row{r.Key(), s})
	}
	t.AppendFooter(table.Row{"Fetched", rep.Fetched()})
	t.Render()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mggg/votekit/internal/election"
	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/profileio"
	"github.com/mggg/votekit/internal/store"
	"github.com/mggg/votekit/internal/tally"
)

func newRunCmd() *cobra.Command {
	var (
		profilePath string
		method      string
		seats       int
		k           int
		r1Cutoff    int
		seed        int64
		reportPath  string
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tabulate an election from a profile file",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := profileio.ReadProfileFile(profilePath)
			if err != nil {
				return err
			}

			logger := log.WithComponent("run")
			deps := tally.Deps{Logger: logger}
			if dbPath != "" {
				st, err := store.Open(dbPath)
				if err != nil {
					return fmt.Errorf("open run store: %w", err)
				}
				defer func() { _ = st.Close() }()
				deps.Store = st
			}

			if k == 0 {
				k = seats
			}

			result, err := tally.Run(cmd.Context(), deps, tally.Spec{
				Method:   election.Method(method),
				Seats:    seats,
				K:        k,
				R1Cutoff: r1Cutoff,
				Seed:     seed,
			}, profile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s decided after %d round(s)\n", result.RunID, len(result.Rounds))
			fmt.Fprintf(out, "Winners: %v\n", result.Winners)

			if reportPath != "" {
				if err := tally.WriteReport(reportPath, result); err != nil {
					return err
				}
				logger.Info().
					Str(log.FieldRunID, result.RunID).
					Str(log.FieldReportPath, reportPath).
					Msg("report written")
				fmt.Fprintf(out, "Report written to %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "path to the ballot profile (YAML)")
	cmd.Flags().StringVar(&method, "method", string(election.MethodSTV), fmt.Sprintf("election method %v", election.Methods()))
	cmd.Flags().IntVar(&seats, "seats", 1, "number of seats to fill")
	cmd.Flags().IntVar(&k, "k", 0, "approvals per ballot (limited only; defaults to seats)")
	cmd.Flags().IntVar(&r1Cutoff, "r1-cutoff", 0, "survivors of the first-round cut (hybrid only)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "tie-break seed (0 uses the method default)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a report file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&dbPath, "db", "", "persist the run into this SQLite database")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

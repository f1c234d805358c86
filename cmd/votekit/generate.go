package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mggg/votekit/internal/generator"
	"github.com/mggg/votekit/internal/metrics"
	"github.com/mggg/votekit/internal/profileio"
)

func newGenerateCmd() *cobra.Command {
	var (
		specPath   string
		model      string
		ballots    int
		candidates []string
		seed       int64
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic ballot profile",
		Long: `Generate a synthetic ballot profile and write it as a profile YAML file.

Simple models are fully described by flags:

  votekit generate --model impartial-culture --candidates A,B,C --ballots 1000 --out profile.yaml

Slate-based models (plackett-luce, bradley-terry, alternating-crossover) take
their slate shares and support from a spec file:

  votekit generate --spec gen.yaml --out profile.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var spec generator.Spec
			if specPath != "" {
				f, err := os.Open(specPath)
				if err != nil {
					return fmt.Errorf("open generator spec: %w", err)
				}
				defer f.Close()
				spec, err = generator.ParseSpec(f)
				if err != nil {
					return err
				}
			} else {
				spec = generator.Spec{
					Model:      generator.Model(model),
					Ballots:    ballots,
					Candidates: candidates,
				}
			}

			var opts []generator.Option
			if seed != 0 {
				opts = append(opts, generator.WithSeed(seed))
			}

			gen, err := spec.Build(opts...)
			if err != nil {
				return err
			}
			profile, err := gen.Generate()
			if err != nil {
				return err
			}
			metrics.RecordGenerated(string(spec.Model), spec.Ballots)

			if err := profileio.WriteProfileFile(outPath, profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d distinct ballots (%s total) to %s\n",
				profile.NumBallots(), profile.TotalWeight().RatString(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "generator spec file (YAML); overrides the model flags")
	cmd.Flags().StringVar(&model, "model", string(generator.ModelImpartialCulture), fmt.Sprintf("generator model %v", generator.Models()))
	cmd.Flags().IntVar(&ballots, "ballots", 1000, "number of ballots to generate")
	cmd.Flags().StringSliceVar(&candidates, "candidates", nil, "candidate names")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the model default)")
	cmd.Flags().StringVar(&outPath, "out", "", "output profile path (YAML)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

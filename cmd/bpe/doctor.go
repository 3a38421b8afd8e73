package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-bpe/internal/doctor"
	"github.com/example/go-bpe/internal/model"
	"github.com/example/go-bpe/internal/pretoken"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local corpus, model, and pretokenizer checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := activeCfg

			dcfg := doctor.Config{
				CorpusPath:       cfg.Paths.CorpusPath,
				ModelPath:        cfg.Paths.ModelPath,
				ModelSummary:     summarizeModel,
				PretokenizerName: cfg.Train.Pretokenizer,
				BuildPretokenizer: func(name string) error {
					_, err := pretoken.ForName(name)
					return err
				},
			}

			result := doctor.Run(dcfg, cmd.OutOrStdout())

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// summarizeModel loads and validates the model file, returning a short
// description of its contents.
func summarizeModel(path string) (string, error) {
	f, err := model.Load(path)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d tokens, %d merges", len(f.Tokens), len(f.Merges)), nil
}

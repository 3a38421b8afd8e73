package main

import (
	"fmt"

	"github.com/example/go-bpe/internal/model"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var showMerges int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of a trained model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := model.Load(activeCfg.Paths.ModelPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:        %s\n", activeCfg.Paths.ModelPath)
			fmt.Fprintf(out, "pretokenizer: %s\n", f.Pretokenizer)
			fmt.Fprintf(out, "vocab size:   %d\n", len(f.Tokens))
			fmt.Fprintf(out, "merge rules:  %d\n", len(f.Merges))

			n := clampMerges(showMerges, len(f.Merges))
			for _, r := range f.Merges[:n] {
				fmt.Fprintf(out, "  %4d  %q + %q -> %q\n", r.Rank, r.Left, r.Right, r.Merged)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&showMerges, "merges", 10, "Number of leading merge rules to print")

	return cmd
}

// clampMerges bounds the number of merge rules to print to [0, total].
func clampMerges(n, total int) int {
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}

	return n
}

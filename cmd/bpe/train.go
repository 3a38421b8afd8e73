package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-bpe/internal/bpe"
	"github.com/example/go-bpe/internal/corpus"
	"github.com/example/go-bpe/internal/model"
	"github.com/example/go-bpe/internal/pretoken"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn a BPE vocabulary from a corpus",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := activeCfg

			pre, err := pretoken.ForName(cfg.Train.Pretokenizer)
			if err != nil {
				return err
			}

			docs, err := corpus.Load(cfg.Paths.CorpusPath, cfg.Train.PerLine)
			if err != nil {
				return err
			}

			pretokenized := make([][]string, len(docs))
			for i, doc := range docs {
				toks, err := pre.Split(doc.Text)
				if err != nil {
					return err
				}
				pretokenized[i] = toks
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			res, err := bpe.Train(ctx, pretokenized, bpe.TrainOptions{
				TargetVocabSize: cfg.Train.VocabSize,
				Workers:         cfg.Train.Workers,
			})
			if err != nil {
				return err
			}

			if err := model.Save(cfg.Paths.ModelPath, res.Vocab, res.Merges, cfg.Train.Pretokenizer); err != nil {
				return err
			}

			slog.Info("training complete",
				slog.Int("documents", len(docs)),
				slog.Int("vocab_size", res.Vocab.Size()),
				slog.Int("merges", len(res.Merges)),
				slog.Bool("exhausted", res.Exhausted),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("model", cfg.Paths.ModelPath),
			)
			return nil
		},
	}

	return cmd
}

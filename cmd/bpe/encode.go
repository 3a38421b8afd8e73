package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/go-bpe/internal/bpe"
	"github.com/example/go-bpe/internal/model"
	"github.com/example/go-bpe/internal/pretoken"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text into token IDs with a trained model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := activeCfg

			enc, _, err := loadEncoder(cfg.Paths.ModelPath)
			if err != nil {
				return err
			}

			input, err := readEncodeText(text, os.Stdin)
			if err != nil {
				return err
			}

			ids, unknown, err := enc.Encode(input)
			if err != nil {
				return err
			}
			if unknown > 0 {
				slog.Warn("unknown tokens in input", slog.Int("count", unknown))
			}

			out := make([]string, len(ids))
			for i, id := range ids {
				out[i] = fmt.Sprintf("%d", id)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return err
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (default: read stdin)")

	return cmd
}

// loadEncoder builds an encoder from a persisted model, honouring the
// unknown-token policy from configuration.
func loadEncoder(modelPath string) (*bpe.Encoder, *model.File, error) {
	f, err := model.Load(modelPath)
	if err != nil {
		return nil, nil, err
	}

	pre, err := pretoken.ForName(f.Pretokenizer)
	if err != nil {
		return nil, nil, err
	}

	var opts []bpe.EncoderOption
	if activeCfg.Encode.MapUnknown {
		opts = append(opts, bpe.WithUnknownID(activeCfg.Encode.UnknownID))
	}

	enc, err := bpe.NewEncoder(f.Vocabulary(), f.Merges, pre, opts...)
	if err != nil {
		return nil, nil, err
	}
	return enc, f, nil
}

func readEncodeText(flagText string, stdin io.Reader) (string, error) {
	if flagText != "" {
		return flagText, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", fmt.Errorf("no input text: pass --text or pipe to stdin")
	}
	return s, nil
}

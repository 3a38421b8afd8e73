// Package doctor provides environment preflight checks for the bpe CLI.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// SummaryFunc loads a resource and returns a one-line summary, or an error
// if the resource is unusable.
type SummaryFunc func(path string) (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// CorpusPath is the training corpus file or directory to verify on disk.
	// Empty skips the check.
	CorpusPath string
	// ModelPath is the trained model file to verify. Empty skips the check.
	ModelPath string
	// ModelSummary loads and validates the model at ModelPath. Nil reduces
	// the model check to a plain existence test.
	ModelSummary SummaryFunc
	// PretokenizerName is the configured pretokenizer to resolve. Empty
	// skips the check.
	PretokenizerName string
	// BuildPretokenizer resolves and compiles PretokenizerName.
	BuildPretokenizer func(name string) error
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- corpus path ------------------------------------------------------
	if cfg.CorpusPath != "" {
		info, err := os.Stat(cfg.CorpusPath)
		switch {
		case err != nil:
			res.fail(fmt.Sprintf("corpus path %q: %v", cfg.CorpusPath, err))
			fmt.Fprintf(w, "%s corpus path %s: not found\n", FailMark, cfg.CorpusPath)
		case info.IsDir():
			fmt.Fprintf(w, "%s corpus path: %s (directory)\n", PassMark, cfg.CorpusPath)
		default:
			fmt.Fprintf(w, "%s corpus path: %s (%d bytes)\n", PassMark, cfg.CorpusPath, info.Size())
		}
	}

	// ---- model file -------------------------------------------------------
	if cfg.ModelPath != "" {
		if _, err := os.Stat(cfg.ModelPath); err != nil {
			res.fail(fmt.Sprintf("model file %q: %v", cfg.ModelPath, err))
			fmt.Fprintf(w, "%s model file %s: not found\n", FailMark, cfg.ModelPath)
		} else if cfg.ModelSummary != nil {
			summary, err := cfg.ModelSummary(cfg.ModelPath)
			if err != nil {
				res.fail(fmt.Sprintf("model validation: %v", err))
				fmt.Fprintf(w, "%s model file %s: %v\n", FailMark, cfg.ModelPath, err)
			} else {
				fmt.Fprintf(w, "%s model file: %s (%s)\n", PassMark, cfg.ModelPath, summary)
			}
		} else {
			fmt.Fprintf(w, "%s model file: %s\n", PassMark, cfg.ModelPath)
		}
	}

	// ---- pretokenizer -----------------------------------------------------
	if cfg.PretokenizerName != "" && cfg.BuildPretokenizer != nil {
		if err := cfg.BuildPretokenizer(cfg.PretokenizerName); err != nil {
			res.fail(fmt.Sprintf("pretokenizer %q: %v", cfg.PretokenizerName, err))
			fmt.Fprintf(w, "%s pretokenizer %s: %v\n", FailMark, cfg.PretokenizerName, err)
		} else {
			fmt.Fprintf(w, "%s pretokenizer: %s\n", PassMark, cfg.PretokenizerName)
		}
	}

	return res
}

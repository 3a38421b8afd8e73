// Package corpus loads raw training documents from disk. Chunking and file
// encoding are handled here so the tokenizer core only ever sees in-memory
// text.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyCorpus is returned when a path yields no documents.
var ErrEmptyCorpus = errors.New("corpus contains no documents")

// Document is one unit of training text.
type Document struct {
	Name string
	Text string
}

// Load reads documents from path. A regular file yields one document; a
// directory is walked and every regular file inside becomes a document, in
// lexical path order. With perLine set, each non-empty line of each file
// becomes its own document instead.
func Load(path string, perLine bool) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat corpus path: %w", err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk corpus dir: %w", err)
		}
	} else {
		files = []string{path}
	}

	var docs []Document
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read corpus file: %w", err)
		}
		text := normalize(string(data))
		if text == "" {
			continue
		}
		if perLine {
			for i, line := range strings.Split(text, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				docs = append(docs, Document{
					Name: fmt.Sprintf("%s:%d", f, i+1),
					Text: line,
				})
			}
			continue
		}
		docs = append(docs, Document{Name: f, Text: text})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, path)
	}
	return docs, nil
}

// normalize converts line endings to \n and trims surrounding whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
)

// Envelope schemas only. Field-level problems are findings, not load failures.
const deckSchemaJSON = `{
  "type": "object",
  "required": ["games"],
  "properties": {
    "games": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "cards": {"type": ["array", "null"], "items": {"type": "object"}}
        }
      }
    }
  }
}`

const familySchemaJSON = `{
  "type": "object",
  "required": ["cards"],
  "properties": {
    "family": {"type": ["string", "null"]},
    "cards": {"type": "array", "items": {"type": "object"}}
  }
}`

var (
	deckSchema   = gojsonschema.NewStringLoader(deckSchemaJSON)
	familySchema = gojsonschema.NewStringLoader(familySchemaJSON)
)

// CorpusLoader reads a corpus from a single deck file or a directory of
// family documents.
type CorpusLoader struct {
	retryConfig retry.Config
}

func NewCorpusLoader() *CorpusLoader {
	return &CorpusLoader{
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// LoadCorpus returns a *corpus.LoadError for anything that prevents a
// snapshot from being built.
func (l *CorpusLoader) LoadCorpus(ctx context.Context, path string) (*corpus.Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &corpus.LoadError{Path: path, Reason: "no such file or directory", Err: corpus.ErrCorpusNotFound}
		}
		return nil, &corpus.LoadError{Path: path, Reason: "stat failed", Err: err}
	}
	if info.IsDir() {
		return l.loadFamilies(ctx, path)
	}

	data, err := l.read(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(path, deckSchema, data); err != nil {
		return nil, err
	}
	return corpus.ParseDeck(path, data)
}

func (l *CorpusLoader) loadFamilies(ctx context.Context, dir string) (*corpus.Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &corpus.LoadError{Path: dir, Reason: "cannot list directory", Err: err}
	}

	c := &corpus.Corpus{Source: dir, Format: corpus.FormatFamilies}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := l.read(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := checkSchema(path, familySchema, data); err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		f, err := corpus.ParseFamilyDocument(path, stem, data)
		if err != nil {
			return nil, err
		}
		if _, dup := c.Family(f.Name); dup {
			return nil, &corpus.LoadError{Path: path, Reason: fmt.Sprintf("family %q is defined more than once", f.Name)}
		}
		c.Families = append(c.Families, f)
	}
	if len(c.Families) == 0 {
		return nil, &corpus.LoadError{Path: dir, Reason: "no family documents (*.json) found"}
	}
	sort.SliceStable(c.Families, func(i, j int) bool { return c.Families[i].Name < c.Families[j].Name })
	return c, nil
}

func (l *CorpusLoader) read(ctx context.Context, path string) ([]byte, error) {
	retryer := retry.New[[]byte](l.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Corpus path is supplied by the operator
		return os.ReadFile(path)
	})
	if err != nil {
		return nil, &corpus.LoadError{Path: path, Reason: "read failed", Err: err}
	}
	return data, nil
}

func checkSchema(path string, schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &corpus.LoadError{Path: path, Reason: "malformed document", Err: err}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return &corpus.LoadError{Path: path, Reason: "schema violation", Err: errors.New(strings.Join(msgs, "; "))}
}

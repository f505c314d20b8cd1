package faq

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// corpusDocument is the on-disk corpus layout. A top-level entries list keeps
// room for future document-level fields (version, locale) without breaking
// existing files.
type corpusDocument struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// LoadFile reads a corpus document from path and builds a validated Corpus.
// YAML (.yaml, .yml) and JSON (.json) documents are supported. The entries go
// through the same validation as the embedded corpus, so a broken file is
// rejected whole rather than producing a partially working fast-path.
func LoadFile(path string) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed,
			fmt.Sprintf("read corpus file %s", path))
	}

	var doc corpusDocument
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed,
				fmt.Sprintf("parse YAML corpus %s", path))
		}
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed,
				fmt.Sprintf("parse JSON corpus %s", path))
		}
	default:
		return nil, errors.Newf(errors.ErrCodeCorpusLoadFailed,
			"unsupported corpus file extension %q (want .yaml, .yml or .json)", ext)
	}

	if len(doc.Entries) == 0 {
		return nil, errors.Newf(errors.ErrCodeCorpusLoadFailed,
			"corpus file %s contains no entries", path)
	}

	c, err := NewCorpus(doc.Entries)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed,
			fmt.Sprintf("corpus file %s", path))
	}
	return c, nil
}

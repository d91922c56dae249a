package app

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	"github.com/corey/acmatch/internal/adapters/bbolt"
	"github.com/corey/acmatch/internal/adapters/kwfile"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// ErrNoKeywords is returned when no keyword source is configured.
var ErrNoKeywords = errors.New("no keyword source: use --keyword, --file or --set")

// NewMatcher builds a matcher for keywords with the named engine.
func NewMatcher(engine string, keywords []string) (ports.Matcher, error) {
	switch engine {
	case "", EngineTrie:
		a, err := automaton.Build(keywords)
		if err != nil {
			return nil, err
		}
		return a, nil
	case EngineDFA:
		m, err := ahocorasick.Build(keywords)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Wrapf(automaton.ErrInvalidArgument, "unknown engine %q (want %s or %s)", engine, EngineTrie, EngineDFA)
	}
}

// Source is a resolved keyword list and where it came from.
type Source struct {
	Keywords    []string
	Replacement string // file default, empty if none
	Origin      string // "flags", "file:<path>" or "set:<name>"
}

// LoadSource resolves the configured keyword source. Precedence: explicit
// keywords, then keyword file, then stored set. The store is opened only
// for the duration of a set lookup, so a running daemon never holds the
// database lock.
func LoadSource(cfg Config) (*Source, error) {
	switch {
	case len(cfg.Keywords) > 0:
		return &Source{Keywords: cfg.Keywords, Origin: "flags"}, nil

	case cfg.KeywordFile != "":
		f, err := kwfile.Load(cfg.KeywordFile)
		if err != nil {
			return nil, err
		}
		return &Source{Keywords: f.Keywords, Replacement: f.Replacement, Origin: "file:" + cfg.KeywordFile}, nil

	case cfg.SetName != "":
		store, err := OpenStore(cfg.withDefaults().DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		set, err := store.LoadSet(cfg.SetName)
		if err != nil {
			return nil, errors.Wrapf(err, "load set %q", cfg.SetName)
		}
		if set == nil {
			return nil, errors.Wrapf(automaton.ErrInvalidArgument, "keyword set %q not found", cfg.SetName)
		}
		return &Source{Keywords: set.Keywords, Origin: "set:" + cfg.SetName}, nil
	}
	return nil, ErrNoKeywords
}

// OpenStore opens the keyword-set database, creating its directory.
func OpenStore(dbPath string) (*bbolt.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	return store, nil
}

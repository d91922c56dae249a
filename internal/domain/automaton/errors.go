package automaton

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned for a bad keyword set, empty text, an
	// out-of-range start offset or a non-positive result limit. It is always
	// returned before any trie node is created or any scan step runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotBuilt is returned when searching an automaton that Build never
	// produced (nil or zero value).
	ErrNotBuilt = errors.New("automaton not built")
)

// ValidateKeywords checks a keyword set: it must be non-empty and contain
// no empty strings.
func ValidateKeywords(keywords []string) error {
	if len(keywords) == 0 {
		return errors.Wrap(ErrInvalidArgument, "keyword set is empty")
	}
	for i, kw := range keywords {
		if kw == "" {
			return errors.Wrapf(ErrInvalidArgument, "keyword %d is empty", i)
		}
	}
	return nil
}

// ValidateSearch checks scan arguments: text must be non-empty, start must
// lie in [0, len(text)) and max must be at least 1.
func ValidateSearch(text string, start, max int) error {
	if text == "" {
		return errors.Wrap(ErrInvalidArgument, "text is empty")
	}
	if start < 0 || start >= len(text) {
		return errors.Wrapf(ErrInvalidArgument, "start %d out of range [0, %d)", start, len(text))
	}
	if max < 1 {
		return errors.Wrapf(ErrInvalidArgument, "max results %d must be positive", max)
	}
	return nil
}

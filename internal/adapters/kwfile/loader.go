// Package kwfile reads keyword lists from disk.
//
// Two formats are understood, chosen by extension:
//
//	.yaml / .yml   keywords: [...] with an optional default replacement
//	anything else  one keyword per line; blank lines and lines starting with # are skipped
package kwfile

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the parsed content of a keyword file.
type File struct {
	Keywords    []string `yaml:"keywords"`
	Replacement string   `yaml:"replacement,omitempty"`
}

// IsYAML reports whether path names a YAML keyword file.
func IsYAML(path string) bool {
	l := strings.ToLower(path)
	return strings.HasSuffix(l, ".yml") || strings.HasSuffix(l, ".yaml")
}

// Load reads and parses the keyword file at path. A file that yields no
// keywords is an error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read keyword file")
	}

	var f *File
	if IsYAML(path) {
		f, err = ParseYAML(data)
	} else {
		f, err = ParseText(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if len(f.Keywords) == 0 {
		return nil, errors.Errorf("%s: no keywords", path)
	}
	return f, nil
}

// MaxLineBytes is the longest keyword line ParseText accepts.
const MaxLineBytes = 1024 * 1024

// ParseText reads one keyword per line. Trailing \r is trimmed so files
// written on Windows load the same; other whitespace is part of the keyword.
// A line longer than MaxLineBytes is an error.
func ParseText(data []byte) (*File, error) {
	f := &File{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), MaxLineBytes)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f.Keywords = append(f.Keywords, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "keyword line %d", len(f.Keywords)+1)
	}
	return f, nil
}

// ParseYAML decodes a YAML keyword file. Empty entries are dropped.
func ParseYAML(data []byte) (*File, error) {
	var raw File
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	f := &File{Replacement: raw.Replacement}
	for _, kw := range raw.Keywords {
		if kw != "" {
			f.Keywords = append(f.Keywords, kw)
		}
	}
	return f, nil
}

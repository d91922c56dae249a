package app

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Engine names accepted by NewMatcher.
const (
	EngineTrie = "trie" // core automaton
	EngineDFA  = "dfa"  // third-party DFA adapter
)

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	DBPath      string   // path to bbolt file (default: .acm/acm.db)
	KeywordFile string   // text or YAML keyword file
	SetName     string   // stored keyword set
	Keywords    []string // explicit keywords; win over file and set
	Replacement string   // default replacement for replace
	Engine      string   // trie (default) or dfa
	HTTP        bool     // serve the HTTP API alongside the socket
	HTTPPort    int      // preferred HTTP port (default: computed from project root)
	LogLevel    string   // logrus level name (default: info)
	Watch       bool     // rebuild when KeywordFile changes
}

// FileConfig is the on-disk shape of .acm/config.yaml.
type FileConfig struct {
	Engine      string   `yaml:"engine,omitempty"`
	KeywordFile string   `yaml:"keyword_file,omitempty"`
	Set         string   `yaml:"set,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Replacement string   `yaml:"replacement,omitempty"`
	HTTP        bool     `yaml:"http,omitempty"`
	HTTPPort    int      `yaml:"http_port,omitempty"`
	LogLevel    string   `yaml:"log_level,omitempty"`
	Watch       bool     `yaml:"watch,omitempty"`
}

// LoadConfigFile reads a YAML config file. A missing file yields an empty
// config and no error.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return &fc, nil
}

// Merge fills every zero-valued field of c from the file config. Values
// already set (from flags) are left alone. A relative keyword file is
// resolved against the project root.
func (c Config) Merge(fc *FileConfig) Config {
	if fc == nil {
		return c
	}
	if c.Engine == "" {
		c.Engine = fc.Engine
	}
	if c.KeywordFile == "" && c.SetName == "" && len(c.Keywords) == 0 {
		c.KeywordFile = fc.KeywordFile
		c.SetName = fc.Set
		c.Keywords = fc.Keywords
		if c.KeywordFile != "" && !filepath.IsAbs(c.KeywordFile) && c.ProjectRoot != "" {
			c.KeywordFile = filepath.Join(c.ProjectRoot, c.KeywordFile)
		}
	}
	if c.Replacement == "" {
		c.Replacement = fc.Replacement
	}
	c.HTTP = c.HTTP || fc.HTTP
	if c.HTTPPort == 0 {
		c.HTTPPort = fc.HTTPPort
	}
	if c.LogLevel == "" {
		c.LogLevel = fc.LogLevel
	}
	c.Watch = c.Watch || fc.Watch
	return c
}

// withDefaults returns c with defaults applied.
func (c Config) withDefaults() Config {
	if c.DBPath == "" {
		c.DBPath = NewPaths(c.ProjectRoot).DB
	}
	if c.Engine == "" {
		c.Engine = EngineTrie
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Marshal renders the effective configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(FileConfig{
		Engine:      c.Engine,
		KeywordFile: c.KeywordFile,
		Set:         c.SetName,
		Keywords:    c.Keywords,
		Replacement: c.Replacement,
		HTTP:        c.HTTP,
		HTTPPort:    c.HTTPPort,
		LogLevel:    c.LogLevel,
		Watch:       c.Watch,
	})
}

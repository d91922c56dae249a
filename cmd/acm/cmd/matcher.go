package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/ports"
)

// resolved is the matcher a one-shot command runs against.
type resolved struct {
	matcher     ports.Matcher
	replacement string // default for replace when --with is absent
	via         string // "daemon" or the keyword source origin
}

// resolveMatcher picks the matcher for a one-shot command. An explicit
// keyword source on the command line always builds locally; otherwise a
// running daemon is used, falling back to the config file's source.
func resolveMatcher() (*resolved, error) {
	root := projectRoot()
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	log := cliLogger(cfg)

	if !hasSourceFlag() {
		client := socket.NewClient(socket.SocketPath(root))
		if client.Ping() {
			log.WithField("socket", socket.SocketPath(root)).Debug("using daemon")
			return &resolved{matcher: client.Matcher(), replacement: cfg.Replacement, via: "daemon"}, nil
		}
	}

	src, err := app.LoadSource(cfg)
	if err != nil {
		return nil, wrapDBError(root, err)
	}
	m, err := app.NewMatcher(cfg.Engine, src.Keywords)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"source":   src.Origin,
		"engine":   cfg.Engine,
		"keywords": len(m.Keywords()),
	}).Debug("matcher built")

	replacement := cfg.Replacement
	if replacement == "" {
		replacement = src.Replacement
	}
	return &resolved{matcher: m, replacement: replacement, via: src.Origin}, nil
}

// readText returns the TEXT argument, or all of stdin when it is a pipe.
func readText(args []string) (string, bool, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), false, nil
	}
	if !isStdinPipe() {
		return "", false, usageErrorf("no text: pass TEXT or pipe it on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", true, errors.Wrap(err, "read stdin")
	}
	return string(data), true, nil
}

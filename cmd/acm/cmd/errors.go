package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/automaton"
)

// Exit codes.
const (
	exitError = 1 // runtime failure
	exitUsage = 2 // bad arguments or missing keywords
)

// usageError marks a command-line mistake.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return usageError{fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue),
		errors.Is(err, automaton.ErrInvalidArgument),
		errors.Is(err, app.ErrNoKeywords):
		return exitUsage
	}
	return exitError
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention. The daemon only holds the
// database while it loads a stored set, so a lock that persists belongs to
// another process.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "database is busy — the daemon may be reloading a stored set\n" +
			"  → retry your command in a moment"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked — daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'acm daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'acm'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// wrapDBError attaches lock diagnostics to a store error.
func wrapDBError(root string, err error) error {
	if isDBLockError(err) {
		return errors.New(diagnoseDBLock(root))
	}
	return err
}

package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/semmidev/mysqlbackup/internal/config"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// was killed.
const waitDelay = 5 * time.Second

var (
	ErrTimeout         = errors.New("command timed out")
	ErrMalformedOutput = errors.New("malformed output")
	ErrInvalidName     = errors.New("invalid database name")
)

// ExitError describes a client or dump invocation that did not exit cleanly.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// MySQLDatabase drives the mysql and mysqldump command-line tools. Credentials
// are never handled here: the account file is handed to both tools as
// --defaults-extra-file.
type MySQLDatabase struct {
	clientBin   string
	dumpBin     string
	accountFile string
	listTimeout time.Duration
	dumpTimeout time.Duration
	extraArgs   []string
}

func NewMySQL(cfg *config.Config) *MySQLDatabase {
	return &MySQLDatabase{
		clientBin:   cfg.MySQL.Bin,
		dumpBin:     cfg.MySQLDump.Bin,
		accountFile: cfg.MySQL.AccountFile,
		listTimeout: cfg.MySQL.Timeout,
		dumpTimeout: cfg.MySQLDump.Timeout,
		extraArgs:   cfg.MySQLDump.ExtraArgs,
	}
}

// ListDatabases runs SHOW DATABASES in batch mode without the column header,
// so every non-empty output line is a database name.
func (m *MySQLDatabase) ListDatabases(ctx context.Context) ([]string, error) {
	args := []string{
		m.defaultsArg(),
		"--batch",
		"--skip-column-names",
		"-e", "SHOW DATABASES",
	}

	var stdout bytes.Buffer
	if err := m.run(ctx, m.listTimeout, m.clientBin, args, &stdout); err != nil {
		return nil, err
	}

	return parseDatabaseList(stdout.Bytes())
}

func parseDatabaseList(output []byte) ([]string, error) {
	if !utf8.Valid(output) {
		return nil, fmt.Errorf("database list: %w", ErrMalformedOutput)
	}

	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		name := strings.TrimRight(line, "\r")
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

// DumpDatabase writes a complete dump of one database to outputPath. A
// partially written file is removed when the dump fails.
func (m *MySQLDatabase) DumpDatabase(ctx context.Context, database, outputPath string) error {
	if database == "" || strings.HasPrefix(database, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, database)
	}

	args := []string{
		m.defaultsArg(),
		"--force",
		"--opt",
	}
	args = append(args, m.extraArgs...)
	args = append(args, "--databases", database)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}

	runErr := m.run(ctx, m.dumpTimeout, m.dumpBin, args, out)
	closeErr := out.Close()

	if runErr != nil || closeErr != nil {
		_ = os.Remove(outputPath)
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("failed to close dump file: %w", closeErr)
	}

	return nil
}

func (m *MySQLDatabase) defaultsArg() string {
	return fmt.Sprintf("--defaults-extra-file=%s", m.accountFile)
}

func (m *MySQLDatabase) run(ctx context.Context, timeout time.Duration, bin string, args []string, stdout io.Writer) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s after %s: %w", filepath.Base(bin), timeout, ErrTimeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Command:  filepath.Base(bin),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return fmt.Errorf("failed to run %s: %w", filepath.Base(bin), err)
}

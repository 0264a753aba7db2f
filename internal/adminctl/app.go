// Package adminctl implements formctl, the operator tool that works on a
// formvault snapshot directly, without a running server.
package adminctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/config"
	"github.com/dmitrijs2005/formvault/internal/server/snapshot"
	"github.com/dmitrijs2005/formvault/internal/server/store"
)

const usage = `usage: formctl [-c config.json] [flags] <command> [args]

commands:
  normalize         repair the snapshot and save it when anything changed
  forms             list forms with submission figures
  users             list users
  packages          list packages
  export <formID>   write the form's submissions as CSV to stdout
  passwd <email>    set a user's password (read without echo)
`

type App struct {
	store  *store.Store
	snap   snapshot.SnapshotStore
	out    io.Writer
	stdin  int
	now    func() time.Time
	logger logging.Logger
}

// NewApp opens the configured snapshot backend and loads the store from it.
func NewApp(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	snap, err := snapshot.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("snapshot init error: %w", err)
	}

	a := New(store.New(ctx, snap, logger), out)
	a.snap = snap
	a.logger = logger
	return a, nil
}

// New returns an App over an already loaded store.
func New(st *store.Store, out io.Writer) *App {
	return &App{
		store:  st,
		out:    out,
		stdin:  int(os.Stdin.Fd()),
		now:    time.Now,
		logger: logging.Discard(),
	}
}

// Run executes one command. args holds the command and its arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("no command given")
	}

	cmd, rest := args[0], args[1:]
	a.logger.Debug(ctx, "running command", "command", cmd)

	switch cmd {
	case "normalize":
		return a.normalize(ctx)
	case "forms":
		return a.forms()
	case "users":
		return a.users()
	case "packages":
		return a.packages()
	case "export":
		if len(rest) != 1 {
			return fmt.Errorf("usage: formctl export <formID>")
		}
		return a.export(rest[0])
	case "passwd":
		if len(rest) != 1 {
			return fmt.Errorf("usage: formctl passwd <email>")
		}
		return a.passwd(ctx, rest[0])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// Close releases the snapshot backend.
func (a *App) Close() error {
	if a.snap == nil {
		return nil
	}
	return snapshot.Close(a.snap)
}

func (a *App) normalize(ctx context.Context) error {
	if a.store.Normalize(ctx) {
		fmt.Fprintln(a.out, "snapshot repaired and saved")
	} else {
		fmt.Fprintln(a.out, "snapshot already normalized")
	}
	return nil
}

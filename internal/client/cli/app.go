package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/safescrow/dashboard/internal/client/config"
	"github.com/safescrow/dashboard/pkg/apiclient"
	"github.com/safescrow/dashboard/pkg/authapi"
	"github.com/safescrow/dashboard/pkg/credstore"
	credredis "github.com/safescrow/dashboard/pkg/credstore/redis"
	"github.com/safescrow/dashboard/pkg/credstore/sqlite"
	"github.com/safescrow/dashboard/pkg/session"
	"github.com/safescrow/dashboard/pkg/slogx"
)

// Version is reported by the version command.
const Version = "v0.1.0"

var (
	ErrUsage        = errors.New("usage")
	ErrNotSignedIn  = errors.New("not signed in; run 'escrowctl login' first")
	ErrUnknownCmd   = errors.New("unknown command")
	ErrMissingValue = errors.New("missing value")
)

type command struct {
	usage   string
	summary string
	authed  bool // requires a restored session
	run     func(ctx context.Context, s *Session, args []string) error
}

var commands = map[string]command{
	"login":        {"login [-email EMAIL]", "sign in; the password is read from the terminal", false, runLogin},
	"register":     {"register [-email E] [-nin N] [-name N] [-phone P]", "create an account and sign in", false, runRegister},
	"logout":       {"logout", "sign out and forget the stored session", false, runLogout},
	"whoami":       {"whoami", "show the signed-in account", true, runWhoami},
	"refresh":      {"refresh", "renew the access token now", true, runRefresh},
	"orders":       {"orders [-all]", "list escrows you created (-all: also those you receive)", true, runOrders},
	"order":        {"order ID", "show one escrow", true, runOrder},
	"create-order": {"create-order -amount N -to EMAIL [-desc D] [-conditions C]", "lock funds in a new escrow", true, runCreateOrder},
	"release":      {"release ID", "pay a pending escrow out to its recipient", true, runRelease},
	"cancel":       {"cancel ID", "return a pending escrow's funds to your wallet", true, runCancel},
	"update-order": {"update-order [-desc D] [-conditions C] ID", "edit the terms of a pending escrow you sent", true, runUpdateOrder},
	"set-profile":  {"set-profile [-name N] [-phone P]", "change your name or phone number", true, runSetProfile},
	"passwd":       {"passwd", "change your password", true, runPasswd},
}

// App runs escrowctl commands.
type App struct {
	cfg    config.Config
	stdin  io.Reader
	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func NewApp(cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{
		cfg:    cfg,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
		logger: slogx.New(slogx.Config{
			Service: "escrowctl",
			Version: Version,
			Env:     "cli",
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  stderr,
		}),
	}
}

// Session is what a command runs against: the restored session and an API
// client that renews it transparently.
type Session struct {
	*App

	Manager *session.Manager
	API     *apiclient.Client
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}
	if args[0] == "version" {
		_, err := fmt.Fprintln(a.stdout, "escrowctl", Version)
		return err
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCmd, args[0])
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			a.logger.Warn("failed to close credential store", "error", err)
		}
	}()

	mgr := session.New(authapi.NewClient(a.cfg.APIURL), store,
		session.WithLogger(a.logger),
		session.WithLeadTime(a.cfg.RefreshLead),
	)
	defer mgr.Close()

	if err := mgr.Start(ctx); err != nil {
		return err
	}
	if cmd.authed && !mgr.IsAuthenticated() {
		return ErrNotSignedIn
	}

	s := &Session{
		App:     a,
		Manager: mgr,
		API: apiclient.New(a.cfg.APIURL, mgr, mgr,
			apiclient.WithTimeout(a.cfg.Timeout),
			apiclient.WithLogger(a.logger),
		),
	}
	return cmd.run(ctx, s, args[1:])
}

// openStore opens the configured credential store and returns its closer.
func (a *App) openStore() (credstore.Store, func() error, error) {
	if a.cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: a.cfg.RedisAddr})
		st, err := credredis.New(rdb, credredis.Config{Namespace: a.cfg.RedisNamespace})
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return st, rdb.Close, nil
	}

	if dir := filepath.Dir(a.cfg.SessionDB); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	st, err := sqlite.Open(a.cfg.SessionDB)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

func (a *App) usage() {
	var b strings.Builder
	b.WriteString("usage: escrowctl [flags] <command> [args]\n\ncommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-58s %s\n", commands[name].usage, commands[name].summary)
	}
	_, _ = io.WriteString(a.stderr, b.String())
}

// Package login drives the trading client from wherever it is to a visible,
// authenticated main window.
package login

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/interfaces"
	"github.com/Norgate-AV/htauto/internal/layout"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/poll"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// State is a step of the login sequence.
type State int

const (
	CheckingMainWindow State = iota
	AwaitingLoginDialog
	Launching
	FillingCredentials
	AwaitingMainWindow
	Ready
	Failed
)

var stateNames = [...]string{
	CheckingMainWindow:  "CheckingMainWindow",
	AwaitingLoginDialog: "AwaitingLoginDialog",
	Launching:           "Launching",
	FillingCredentials:  "FillingCredentials",
	AwaitingMainWindow:  "AwaitingMainWindow",
	Ready:               "Ready",
	Failed:              "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// Credentials are typed into the login dialog. Passwords stay wrapped so they
// can be logged without leaking.
type Credentials struct {
	UserID        string
	TradePassword logger.Secret
	CommPassword  logger.Secret
}

// Options configures one login run.
type Options struct {
	ExecutablePath string
	ShowWindow     bool
	Credentials    Credentials
	Policy         timeouts.Policy
}

// Dependencies are the seams a Sequencer talks to. Processes and Timer are optional.
type Dependencies struct {
	Desktop   interfaces.Desktop
	Launcher  interfaces.Launcher
	Processes interfaces.ProcessChecker
	Timer     poll.Timer
}

// Sequencer runs the login state machine once.
type Sequencer struct {
	log     logger.LoggerInterface
	opts    Options
	deps    Dependencies
	state   State
	visited []State
}

// NewSequencer creates a sequencer in its initial state.
func NewSequencer(log logger.LoggerInterface, opts Options, deps Dependencies) *Sequencer {
	if deps.Timer == nil {
		deps.Timer = poll.RealTimer
	}

	return &Sequencer{
		log:   log,
		opts:  opts,
		deps:  deps,
		state: CheckingMainWindow,
	}
}

// State returns the state the sequencer is in.
func (s *Sequencer) State() State {
	return s.state
}

// Visited returns every state entered so far, in order.
func (s *Sequencer) Visited() []State {
	return append([]State(nil), s.visited...)
}

func (s *Sequencer) enter(next State) {
	s.log.Debug("Login state", slog.String("state", next.String()))
	s.state = next
	s.visited = append(s.visited, next)
}

func (s *Sequencer) fail(err error) (windows.Handle, error) {
	s.log.Debug("Login failed", slog.String("state", s.state.String()), slog.Any("error", err))
	s.enter(Failed)

	return windows.NoWindow, err
}

// Run takes the client to Ready and returns its main window. A main window that
// is already up short-circuits the whole sequence.
func (s *Sequencer) Run() (windows.Handle, error) {
	if len(s.visited) > 0 {
		return windows.NoWindow, errors.New("login sequence already ran")
	}

	s.enter(CheckingMainWindow)

	main, err := s.findMainWindow()
	if err != nil {
		return s.fail(err)
	}

	if main.Valid() {
		s.log.Debug("Main window already open, skipping login", slog.String("hwnd", main.String()))
		s.enter(Ready)

		return main, nil
	}

	s.enter(AwaitingLoginDialog)

	dialog, err := s.deps.Desktop.FindTopLevel(windows.Query{Title: layout.LoginDialogTitle})
	if err != nil {
		return s.fail(fmt.Errorf("find login dialog: %w", err))
	}

	if !dialog.Valid() {
		dialog, err = s.launch()
		if err != nil {
			return s.fail(err)
		}
	}

	s.enter(FillingCredentials)

	if err := s.fillCredentials(dialog); err != nil {
		return s.fail(err)
	}

	s.enter(AwaitingMainWindow)

	main, err = poll.Until(s.opts.Policy, s.deps.Timer, s.findMainWindow)
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return s.fail(&apperr.LoginTimeoutError{
				ClassName: layout.MainWindowClass,
				Title:     layout.MainWindowTitle,
				Waited:    s.opts.Policy.Budget(),
			})
		}

		return s.fail(err)
	}

	s.log.Debug("Main window appeared", slog.String("hwnd", main.String()))
	s.enter(Ready)

	return main, nil
}

// findMainWindow returns the main window only when it is visible
func (s *Sequencer) findMainWindow() (windows.Handle, error) {
	h, err := s.deps.Desktop.FindTopLevel(windows.Query{
		ClassName: layout.MainWindowClass,
		Title:     layout.MainWindowTitle,
	})
	if err != nil {
		return windows.NoWindow, fmt.Errorf("find main window: %w", err)
	}

	if !h.Valid() || !s.deps.Desktop.IsVisible(h) {
		return windows.NoWindow, nil
	}

	return h, nil
}

// launch starts the client and waits for its login dialog to become visible
func (s *Sequencer) launch() (windows.Handle, error) {
	s.enter(Launching)

	path := s.opts.ExecutablePath
	s.log.Info("Starting trading client", slog.String("path", path))

	pid, err := s.deps.Launcher.Launch(path, s.opts.ShowWindow)
	if err != nil {
		return windows.NoWindow, &apperr.LaunchError{Path: path, Err: err}
	}

	s.log.Debug("Client launched", slog.Uint64("pid", uint64(pid)))

	dialog, err := poll.Until(s.opts.Policy, s.deps.Timer, func() (windows.Handle, error) {
		if pid != 0 && s.deps.Processes != nil && !s.deps.Processes.Alive(pid) {
			return windows.NoWindow, &apperr.LaunchError{Path: path, Pid: pid, Err: apperr.ErrProcessExited}
		}

		h, err := s.deps.Desktop.FindTopLevel(windows.Query{Title: layout.LoginDialogTitle})
		if err != nil {
			return windows.NoWindow, fmt.Errorf("find login dialog: %w", err)
		}

		if !h.Valid() || !s.deps.Desktop.IsVisible(h) {
			return windows.NoWindow, nil
		}

		return h, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			return windows.NoWindow, &apperr.LaunchTimeoutError{
				Title:  layout.LoginDialogTitle,
				Waited: s.opts.Policy.Budget(),
			}
		}

		return windows.NoWindow, err
	}

	return dialog, nil
}

// fillCredentials writes each field once and presses submit once. Nothing
// here is retried: a missing control means an incompatible client.
func (s *Sequencer) fillCredentials(dialog windows.Handle) error {
	if !s.deps.Desktop.IsVisible(dialog) {
		return &apperr.UnexpectedLayoutError{Dialog: layout.LoginFields.Name, Control: "dialog", Step: -1,
			Err: errors.New("login dialog is not visible")}
	}

	match, err := layout.LoginFields.Match(s.deps.Desktop, dialog)
	if err != nil {
		return s.layoutError(dialog, err)
	}

	creds := s.opts.Credentials
	s.log.Debug("Filling credentials",
		slog.String("user", creds.UserID),
		slog.Any("trade_password", creds.TradePassword),
		slog.Any("comm_password", creds.CommPassword),
	)

	fields := []struct {
		name  string
		value string
	}{
		{layout.FieldUserID, creds.UserID},
		{layout.FieldTradePassword, creds.TradePassword.Reveal()},
		{layout.FieldCommPassword, creds.CommPassword.Reveal()},
	}

	for _, f := range fields {
		if err := s.deps.Desktop.SetText(match.Lookup(f.name), f.value); err != nil {
			return fmt.Errorf("fill %s: %w", f.name, err)
		}
	}

	if err := s.deps.Desktop.Click(match.Lookup(layout.FieldSubmit)); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	return nil
}

// layoutError turns a failed match into the error the caller sees. A lookup
// that itself failed keeps its own error type.
func (s *Sequencer) layoutError(dialog windows.Handle, err error) error {
	var mismatch *layout.MismatchError
	if !errors.As(err, &mismatch) {
		return err
	}

	s.dumpChildren(dialog)

	if mismatch.Err != nil && (apperr.IsRetryable(mismatch.Err) || isEncoding(mismatch.Err)) {
		return fmt.Errorf("locate %s: %w", mismatch.Control, mismatch.Err)
	}

	return &apperr.UnexpectedLayoutError{
		Dialog:  mismatch.Pattern,
		Control: mismatch.Control,
		Step:    mismatch.Step,
		Err:     mismatch,
	}
}

func isEncoding(err error) bool {
	var enc *apperr.EncodingError
	return errors.As(err, &enc)
}

// dumpChildren traces the dialog's controls so a layout change can be diagnosed from the log
func (s *Sequencer) dumpChildren(dialog windows.Handle) {
	inspector, ok := s.deps.Desktop.(interfaces.ChildInspector)
	if !ok {
		return
	}

	for i, ch := range inspector.CollectChildInfos(dialog) {
		s.log.Trace("Login dialog control",
			slog.Int("index", i),
			slog.String("hwnd", ch.Hwnd.String()),
			slog.String("class", ch.ClassName),
			slog.String("text", ch.Text),
			slog.Bool("masked", ch.Masked),
		)
	}
}

// Package huatai provides a logged-in handle on the Huatai trading client
// (网上股票交易系统 5.0).
package huatai

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Norgate-AV/htauto/internal/cleanup"
	"github.com/Norgate-AV/htauto/internal/interfaces"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/login"
	"github.com/Norgate-AV/htauto/internal/poll"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// ErrNotImplemented is returned by trading operations the client cannot drive yet.
var ErrNotImplemented = errors.New("not implemented")

// Options are the construction parameters of a Client.
type Options struct {
	ExecutablePath string // defaults to GetHuataiPath()
	UserID         string
	TradePassword  string
	CommPassword   string
	TimeoutSeconds int // defaults to 30
	HideWindow     bool
	SkipCleanup    bool
}

// WithDefaults fills in the executable path and timeout when unset.
func (o Options) WithDefaults() Options {
	if o.ExecutablePath == "" {
		o.ExecutablePath = GetHuataiPath()
	}

	if o.TimeoutSeconds == 0 {
		o.TimeoutSeconds = timeouts.DefaultMaxSeconds
	}

	return o
}

// Validate rejects options that cannot lead to a login.
func (o Options) Validate() error {
	if o.UserID == "" {
		return errors.New("user id is required")
	}

	if o.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d seconds", o.TimeoutSeconds)
	}

	if o.ExecutablePath == "" {
		return errors.New("executable path is required")
	}

	return nil
}

// Dependencies are the platform seams a Client is built on.
type Dependencies struct {
	Desktop   interfaces.Desktop
	Launcher  interfaces.Launcher
	Processes interfaces.ProcessChecker
	Timer     poll.Timer
}

// Client is bound to the main window of a logged-in trading client.
type Client struct {
	log     logger.LoggerInterface
	desktop interfaces.Desktop
	hwnd    windows.Handle
	timeout time.Duration
}

// New logs in, or reuses a session that is already logged in, then closes the
// pop-ups the client shows after login. It either returns a ready client or an
// error; there is no partially initialized client.
func New(log logger.LoggerInterface, opts Options, deps Dependencies) (*Client, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	policy := timeouts.NewPolicy(opts.TimeoutSeconds)

	log.Debug("Connecting to trading client",
		slog.String("path", opts.ExecutablePath),
		slog.String("user", opts.UserID),
		slog.Int("timeout", opts.TimeoutSeconds),
	)

	seq := login.NewSequencer(log, login.Options{
		ExecutablePath: opts.ExecutablePath,
		ShowWindow:     !opts.HideWindow,
		Credentials: login.Credentials{
			UserID:        opts.UserID,
			TradePassword: logger.Secret(opts.TradePassword),
			CommPassword:  logger.Secret(opts.CommPassword),
		},
		Policy: policy,
	}, login.Dependencies{
		Desktop:   deps.Desktop,
		Launcher:  deps.Launcher,
		Processes: deps.Processes,
		Timer:     deps.Timer,
	})

	hwnd, err := seq.Run()
	if err != nil {
		return nil, err
	}

	log.Info("Trading client ready", slog.String("hwnd", hwnd.String()))

	if opts.SkipCleanup {
		log.Debug("Skipping post-login cleanup")
	} else {
		closed, err := cleanup.NewSweeper(log, deps.Desktop, deps.Timer).Run(policy)
		if err != nil {
			log.Warn("Post-login cleanup failed", slog.Any("error", err))
		} else {
			log.Debug("Post-login cleanup finished", slog.Int("closed", len(closed)))
		}
	}

	return &Client{
		log:     log,
		desktop: deps.Desktop,
		hwnd:    hwnd,
		timeout: policy.Budget(),
	}, nil
}

// MainWindow returns the handle of the client's main window.
func (c *Client) MainWindow() windows.Handle {
	return c.hwnd
}

// Timeout returns the polling budget the client was built with.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Alive reports whether the main window is still open and visible.
func (c *Client) Alive() bool {
	return c.desktop.IsVisible(c.hwnd)
}

var symbolPattern = regexp.MustCompile(`^\d{6}$`)

// Order is a limit order for an A-share symbol.
type Order struct {
	Symbol string
	Price  float64
	Amount int
}

// Validate checks an order before anything is sent to the client.
func (o Order) Validate() error {
	if !symbolPattern.MatchString(o.Symbol) {
		return fmt.Errorf("symbol %q must be a 6 digit security code", o.Symbol)
	}

	if o.Price <= 0 {
		return fmt.Errorf("price must be positive, got %v", o.Price)
	}

	if o.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", o.Amount)
	}

	return nil
}

// Buy places a limit buy order. Order entry is not automated yet.
func (c *Client) Buy(symbol string, price float64, amount int) error {
	return c.place("buy", Order{Symbol: symbol, Price: price, Amount: amount})
}

// Sell places a limit sell order. Order entry is not automated yet.
func (c *Client) Sell(symbol string, price float64, amount int) error {
	return c.place("sell", Order{Symbol: symbol, Price: price, Amount: amount})
}

func (c *Client) place(side string, o Order) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%s: %w", side, err)
	}

	c.log.Debug("Order requested",
		slog.String("side", side),
		slog.String("symbol", o.Symbol),
		slog.Float64("price", o.Price),
		slog.Int("amount", o.Amount),
	)

	return fmt.Errorf("%s %s: %w", side, o.Symbol, ErrNotImplemented)
}

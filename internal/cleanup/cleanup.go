// Package cleanup dismisses the pop-ups the client opens right after login.
package cleanup

import (
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/htauto/internal/interfaces"
	"github.com/Norgate-AV/htauto/internal/layout"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/poll"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

// Closed is a window the sweep asked to close.
type Closed struct {
	Hwnd  windows.Handle
	Shape string
}

// Sweeper closes every top-level window that matches one of its shapes.
type Sweeper struct {
	log     logger.LoggerInterface
	desktop interfaces.Desktop
	timer   poll.Timer
	shapes  []layout.Pattern
}

// NewSweeper returns a sweeper for the known nuisance dialogs.
func NewSweeper(log logger.LoggerInterface, desktop interfaces.Desktop, timer poll.Timer) *Sweeper {
	if timer == nil {
		timer = poll.RealTimer
	}

	return &Sweeper{
		log:     log,
		desktop: desktop,
		timer:   timer,
		shapes:  layout.NuisanceDialogs,
	}
}

// Classify returns the first shape h matches, or false.
func (s *Sweeper) Classify(h windows.Handle) (layout.Pattern, bool) {
	for _, shape := range s.shapes {
		if shape.Matches(s.desktop, h) {
			return shape, true
		}
	}

	return layout.Pattern{}, false
}

// Run waits out the settle delay once, then closes every matching window.
// Close failures are logged and skipped; only a failed enumeration is returned.
func (s *Sweeper) Run(policy timeouts.Policy) ([]Closed, error) {
	s.log.Debug("Waiting for post-login dialogs", slog.Duration("delay", policy.SettleDelay()))
	poll.Sleep(s.timer, policy.SettleDelay())

	handles, err := s.desktop.EnumerateTopLevel()
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}

	var closed []Closed

	for _, h := range handles {
		shape, ok := s.Classify(h)
		if !ok {
			continue
		}

		if err := s.desktop.Close(h); err != nil {
			s.log.Debug("Ignoring close failure",
				slog.String("hwnd", h.String()),
				slog.String("shape", shape.Name),
				slog.Any("error", err),
			)

			continue
		}

		s.log.Info("Closed dialog", slog.String("shape", shape.Name), slog.String("hwnd", h.String()))
		closed = append(closed, Closed{Hwnd: h, Shape: shape.Name})
	}

	return closed, nil
}

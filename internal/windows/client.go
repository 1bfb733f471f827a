//go:build windows

package windows

import (
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

// Client provides methods for interacting with Windows APIs
// It composes specialized managers for different categories of functionality
type Client struct {
	log      logger.LoggerInterface
	Window   *windowManager
	Messages *messageDispatcher
	Launcher *processLauncher
}

// NewClient creates a new Windows API client
func NewClient(log logger.LoggerInterface, codec textenc.Codec) *Client {
	return &Client{
		log:      log,
		Window:   newWindowManager(log, codec),
		Messages: newMessageDispatcher(log, codec),
		Launcher: newProcessLauncher(log),
	}
}

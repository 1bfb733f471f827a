package windows

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandle(t *testing.T) {
	t.Parallel()

	assert.False(t, NoWindow.Valid())
	assert.True(t, Handle(0x1F4).Valid())
	assert.Equal(t, "0x0", NoWindow.String())
	assert.Equal(t, "0x1F4", Handle(0x1F4).String())
}

func TestProcessWatcher_Alive(t *testing.T) {
	t.Parallel()

	p := NewProcessWatcher()

	assert.True(t, p.Alive(uint32(os.Getpid())))
	assert.True(t, p.Alive(0), "an unknown pid never cuts polling short")
}

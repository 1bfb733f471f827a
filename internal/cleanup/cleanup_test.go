package cleanup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/layout"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/testutil"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

func safetyInfo() *testutil.FakeWindow {
	return testutil.Window("#32770", "",
		testutil.Window(windows.ClassComboBox, layout.SafetyInfoEncryptLabel),
		testutil.Window(windows.ClassButton, "关闭"),
		testutil.Window(windows.ClassStatic, layout.SafetyInfoTitle),
	)
}

func announcement() *testutil.FakeWindow {
	return testutil.Window("#32770", "",
		testutil.Window(windows.ClassButton, layout.AnnouncementButtonLabel),
		testutil.Window(windows.ClassStatic, layout.AnnouncementTitle),
	)
}

func TestSweeper_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		window *testutil.FakeWindow
		shape  string
	}{
		{"safety info", safetyInfo(), layout.SafetyInfoDialog.Name},
		{"announcement", announcement(), layout.AnnouncementDialog.Name},
		{
			"safety info with other encryption",
			testutil.Window("#32770", "",
				testutil.Window(windows.ClassComboBox, "通讯密码"),
				testutil.Window(windows.ClassButton, ""),
				testutil.Window(windows.ClassStatic, layout.SafetyInfoTitle),
			),
			"",
		},
		{
			"safety info without button",
			testutil.Window("#32770", "",
				testutil.Window(windows.ClassComboBox, layout.SafetyInfoEncryptLabel),
				testutil.Window(windows.ClassStatic, layout.SafetyInfoTitle),
			),
			"",
		},
		{
			"safety info with other title",
			testutil.Window("#32770", "",
				testutil.Window(windows.ClassComboBox, layout.SafetyInfoEncryptLabel),
				testutil.Window(windows.ClassButton, ""),
				testutil.Window(windows.ClassStatic, "系统设置"),
			),
			"",
		},
		{
			"announcement with other button label",
			testutil.Window("#32770", "",
				testutil.Window(windows.ClassButton, "取消"),
				testutil.Window(windows.ClassStatic, layout.AnnouncementTitle),
			),
			"",
		},
		{
			"announcement title before button",
			testutil.Window("#32770", "",
				testutil.Window(windows.ClassStatic, layout.AnnouncementTitle),
				testutil.Window(windows.ClassButton, layout.AnnouncementButtonLabel),
			),
			"",
		},
		{"no children", testutil.Window("#32770", ""), ""},
		{"main window", testutil.Window(layout.MainWindowClass, layout.MainWindowTitle), ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desktop := testutil.NewFakeDesktop()
			w := desktop.Add(tt.window)

			shape, ok := NewSweeper(logger.NewNoOpLogger(), desktop, testutil.NewFakeTimer()).Classify(w.Hwnd)

			assert.Equal(t, tt.shape != "", ok)
			assert.Equal(t, tt.shape, shape.Name)
		})
	}
}

func TestSweeper_Run(t *testing.T) {
	t.Parallel()

	desktop := testutil.NewFakeDesktop()
	main := desktop.Add(testutil.Window(layout.MainWindowClass, layout.MainWindowTitle))
	safety := desktop.Add(safetyInfo())
	other := desktop.Add(testutil.Window("#32770", "提示", testutil.Window(windows.ClassButton, "确定")))
	notice := desktop.Add(announcement())
	timer := testutil.NewFakeTimer()

	closed, err := NewSweeper(logger.NewNoOpLogger(), desktop, timer).Run(timeouts.NewPolicy(10))

	require.NoError(t, err)
	assert.Equal(t, []Closed{
		{Hwnd: safety.Hwnd, Shape: layout.SafetyInfoDialog.Name},
		{Hwnd: notice.Hwnd, Shape: layout.AnnouncementDialog.Name},
	}, closed)
	assert.Equal(t, []windows.Handle{safety.Hwnd, notice.Hwnd}, desktop.CloseCalls)
	assert.True(t, safety.Destroyed())
	assert.True(t, notice.Destroyed())
	assert.False(t, main.Destroyed())
	assert.False(t, other.Destroyed())

	assert.Equal(t, []time.Duration{10 * time.Second}, timer.Waits(), "one settle delay of the full timeout")
	assert.Equal(t, 1, desktop.EnumerateCalls)
}

func TestSweeper_RunNothingToClose(t *testing.T) {
	t.Parallel()

	desktop := testutil.NewFakeDesktop()
	desktop.Add(testutil.Window(layout.MainWindowClass, layout.MainWindowTitle))

	closed, err := NewSweeper(logger.NewNoOpLogger(), desktop, testutil.NewFakeTimer()).Run(timeouts.DefaultPolicy())

	require.NoError(t, err)
	assert.Empty(t, closed)
	assert.Empty(t, desktop.CloseCalls)
}

// closeFails is a desktop on which every window has already gone by the time it is closed
type closeFails struct {
	*testutil.FakeDesktop
}

func (d closeFails) Close(h windows.Handle) error {
	d.FakeDesktop.CloseCalls = append(d.FakeDesktop.CloseCalls, h)
	return &apperr.InvalidHandleError{Op: "close", Handle: uintptr(h)}
}

func TestSweeper_RunIgnoresCloseFailures(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeDesktop()
	fake.Add(safetyInfo())
	fake.Add(announcement())

	closed, err := NewSweeper(logger.NewNoOpLogger(), closeFails{fake}, testutil.NewFakeTimer()).Run(timeouts.NewPolicy(1))

	require.NoError(t, err)
	assert.Empty(t, closed)
	assert.Len(t, fake.CloseCalls, 2, "a failed close does not stop the sweep")
}

func TestSweeper_RunEnumerateFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("access denied")
	desktop := testutil.NewFakeDesktop().WithEnumerateError(cause)

	closed, err := NewSweeper(logger.NewNoOpLogger(), desktop, testutil.NewFakeTimer()).Run(timeouts.NewPolicy(1))

	require.ErrorIs(t, err, cause)
	assert.Nil(t, closed)
}

func TestSweeper_ZeroTimeoutSkipsDelay(t *testing.T) {
	t.Parallel()

	desktop := testutil.NewFakeDesktop()
	desktop.Add(announcement())
	timer := testutil.NewFakeTimer()

	closed, err := NewSweeper(logger.NewNoOpLogger(), desktop, timer).Run(timeouts.NewPolicy(0))

	require.NoError(t, err)
	assert.Len(t, closed, 1)
	assert.Empty(t, timer.Waits())
}

package login

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/layout"
	"github.com/Norgate-AV/htauto/internal/logger"
	"github.com/Norgate-AV/htauto/internal/testutil"
	"github.com/Norgate-AV/htauto/internal/timeouts"
	"github.com/Norgate-AV/htauto/internal/windows"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	testUserID        = "666622916299"
	testTradePassword = "546712"
	testCommPassword  = "1234abcd"
	testExePath       = `C:\Program Files\htwt\xiadan.exe`
)

var testCredentials = Credentials{
	UserID:        testUserID,
	TradePassword: logger.Secret(testTradePassword),
	CommPassword:  logger.Secret(testCommPassword),
}

// loginDialog mirrors the real dialog: a combo box hosting the user id edit,
// two password edits and the submit button, plus unrelated controls around them
func loginDialog() *testutil.FakeWindow {
	return testutil.Window("#32770", layout.LoginDialogTitle,
		testutil.Window(windows.ClassStatic, "资金账号"),
		testutil.Window(windows.ClassComboBox, "", testutil.Window(windows.ClassEdit, "")),
		testutil.Window(windows.ClassEdit, ""),
		testutil.Window(windows.ClassEdit, ""),
		testutil.Window(windows.ClassButton, "取消"),
		testutil.Window(windows.ClassButton, layout.SubmitButtonLabel),
	)
}

func mainWindow() *testutil.FakeWindow {
	return testutil.Window(layout.MainWindowClass, layout.MainWindowTitle)
}

type fixture struct {
	desktop   *testutil.FakeDesktop
	launcher  *testutil.MockLauncher
	processes *testutil.MockProcessChecker
	timer     *testutil.FakeTimer
	codec     *testutil.CountingCodec
	log       *testutil.RecordingLogger
}

func newFixture() *fixture {
	codec := testutil.NewCountingCodec()

	return &fixture{
		desktop:   testutil.NewFakeDesktop().WithCodec(codec),
		launcher:  testutil.NewMockLauncher(),
		processes: testutil.NewMockProcessChecker(),
		timer:     testutil.NewFakeTimer(),
		codec:     codec,
		log:       testutil.NewRecordingLogger(),
	}
}

func (f *fixture) sequencer(maxSeconds int) *Sequencer {
	return NewSequencer(f.log, Options{
		ExecutablePath: testExePath,
		ShowWindow:     true,
		Credentials:    testCredentials,
		Policy:         timeouts.NewPolicy(maxSeconds),
	}, Dependencies{
		Desktop:   f.desktop,
		Launcher:  f.launcher,
		Processes: f.processes,
		Timer:     f.timer,
	})
}

// field returns the control of the login dialog the named step binds to
func field(dialog *testutil.FakeWindow, name string) *testutil.FakeWindow {
	switch name {
	case layout.FieldUserID:
		return dialog.Children[1].Children[0]
	case layout.FieldTradePassword:
		return dialog.Children[2]
	case layout.FieldCommPassword:
		return dialog.Children[3]
	case layout.FieldSubmit:
		return dialog.Children[5]
	}

	panic("unknown field " + name)
}

func TestRun_MainWindowAlreadyOpen(t *testing.T) {
	t.Parallel()

	f := newFixture()
	main := f.desktop.Add(mainWindow())
	f.desktop.Add(loginDialog())

	seq := f.sequencer(30)
	h, err := seq.Run()

	require.NoError(t, err)
	assert.Equal(t, main.Hwnd, h)
	assert.Equal(t, []State{CheckingMainWindow, Ready}, seq.Visited())
	assert.Equal(t, Ready, seq.State())
	assert.NotContains(t, seq.Visited(), Launching)
	assert.NotContains(t, seq.Visited(), FillingCredentials)
	assert.Empty(t, f.launcher.LaunchCalls)
	assert.Empty(t, f.desktop.SetTextCalls)
	assert.Empty(t, f.desktop.ClickCalls)
	assert.Empty(t, f.timer.Waits())
}

func TestRun_HiddenMainWindowDoesNotCount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	hidden := f.desktop.Add(mainWindow().Hidden())
	dialog := f.desktop.Add(loginDialog())
	visible := f.desktop.Prepare(mainWindow())

	// Logging in replaces the hidden frame with the real one.
	f.desktop.OnClick(field(dialog, layout.FieldSubmit).Hwnd, func() {
		f.desktop.Destroy(hidden)
		f.desktop.Reveal(visible, 1)()
	})

	seq := f.sequencer(30)
	h, err := seq.Run()

	require.NoError(t, err)
	assert.Equal(t, visible.Hwnd, h)
	assert.Contains(t, seq.Visited(), FillingCredentials)
	assert.Len(t, f.desktop.ClickCalls, 1)
}

func TestRun_ExistingDialogFillsAndSubmits(t *testing.T) {
	t.Parallel()

	f := newFixture()
	dialog := f.desktop.Add(loginDialog())
	main := f.desktop.Prepare(mainWindow())
	submit := field(dialog, layout.FieldSubmit)
	f.desktop.OnClick(submit.Hwnd, f.desktop.Reveal(main, 3))

	seq := f.sequencer(30)
	h, err := seq.Run()

	require.NoError(t, err)
	assert.Equal(t, main.Hwnd, h)
	assert.Equal(t, []State{
		CheckingMainWindow, AwaitingLoginDialog, FillingCredentials, AwaitingMainWindow, Ready,
	}, seq.Visited())

	assert.Equal(t, []testutil.SetTextCall{
		{Hwnd: field(dialog, layout.FieldUserID).Hwnd, Text: testUserID},
		{Hwnd: field(dialog, layout.FieldTradePassword).Hwnd, Text: testTradePassword},
		{Hwnd: field(dialog, layout.FieldCommPassword).Hwnd, Text: testCommPassword},
	}, f.desktop.SetTextCalls)
	assert.Equal(t, []windows.Handle{submit.Hwnd}, f.desktop.ClickCalls)

	for _, secret := range []string{testUserID, testTradePassword, testCommPassword} {
		assert.Equal(t, 1, f.codec.Encoded[secret], "each credential crosses the bridge once")
	}

	assert.Empty(t, f.launcher.LaunchCalls)
	assert.Len(t, f.timer.Waits(), 3)
}

func TestRun_EmptyPasswordsAreWritten(t *testing.T) {
	t.Parallel()

	f := newFixture()
	dialog := f.desktop.Add(loginDialog())
	submit := field(dialog, layout.FieldSubmit)
	f.desktop.OnClick(submit.Hwnd, f.desktop.Reveal(f.desktop.Prepare(mainWindow()), 1))

	seq := NewSequencer(f.log, Options{
		ExecutablePath: testExePath,
		Credentials:    Credentials{UserID: testUserID},
		Policy:         timeouts.NewPolicy(30),
	}, Dependencies{Desktop: f.desktop, Launcher: f.launcher, Processes: f.processes, Timer: f.timer})

	_, err := seq.Run()
	require.NoError(t, err)

	// Empty values still clear whatever the fields held.
	require.Len(t, f.desktop.SetTextCalls, 3)
	assert.Equal(t, "", f.desktop.SetTextCalls[1].Text)
	assert.Equal(t, "", f.desktop.SetTextCalls[2].Text)
	assert.Equal(t, []windows.Handle{submit.Hwnd}, f.desktop.ClickCalls)
}

func TestRun_LaunchesWhenNoDialog(t *testing.T) {
	t.Parallel()

	f := newFixture()
	dialog := f.desktop.Prepare(loginDialog())
	main := f.desktop.Prepare(mainWindow())

	f.launcher.WithPid(777).OnLaunch(f.desktop.Reveal(dialog, 4))
	f.desktop.OnClick(field(dialog, layout.FieldSubmit).Hwnd, f.desktop.Reveal(main, 2))

	seq := f.sequencer(30)
	h, err := seq.Run()

	require.NoError(t, err)
	assert.Equal(t, main.Hwnd, h)
	assert.Equal(t, []State{
		CheckingMainWindow, AwaitingLoginDialog, Launching, FillingCredentials, AwaitingMainWindow, Ready,
	}, seq.Visited())
	assert.Equal(t, []testutil.LaunchCall{{Path: testExePath, Show: true}}, f.launcher.LaunchCalls)
	assert.Len(t, f.processes.AliveCalls, 4)
	assert.Len(t, f.timer.Waits(), 4+2)
	assert.Len(t, f.desktop.ClickCalls, 1)
}

func TestRun_LaunchTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture()

	seq := f.sequencer(4)
	h, err := seq.Run()

	require.Error(t, err)
	assert.Equal(t, windows.NoWindow, h)

	var timeout *apperr.LaunchTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, layout.LoginDialogTitle, timeout.Title)
	assert.Equal(t, 4*time.Second, timeout.Waited)

	dialogQueries := 0
	for _, q := range f.desktop.FindTopLevelCalls {
		if q.Title == layout.LoginDialogTitle {
			dialogQueries++
		}
	}

	assert.Equal(t, 1+4, dialogQueries, "one check before launch, then one per second")
	assert.Len(t, f.timer.Waits(), 4)
	assert.Equal(t, Failed, seq.State())
	assert.Empty(t, f.desktop.SetTextCalls)
}

func TestRun_LaunchFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	cause := errors.New("file not found")
	f.launcher.WithError(cause)

	seq := f.sequencer(30)
	_, err := seq.Run()

	var launchErr *apperr.LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, testExePath, launchErr.Path)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, f.timer.Waits())
	assert.Equal(t, Failed, seq.State())
}

func TestRun_ProcessExitsWhileWaiting(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.launcher.WithPid(99)
	f.processes.ExitAfter(99, 2)

	seq := f.sequencer(30)
	_, err := seq.Run()

	require.ErrorIs(t, err, apperr.ErrProcessExited)

	var launchErr *apperr.LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, uint32(99), launchErr.Pid)
	assert.Len(t, f.timer.Waits(), 3, "stops on the first dead check instead of using the full budget")
}

func TestRun_LoginTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.desktop.Add(loginDialog())

	seq := f.sequencer(5)
	_, err := seq.Run()

	var timeout *apperr.LoginTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, layout.MainWindowClass, timeout.ClassName)
	assert.Equal(t, layout.MainWindowTitle, timeout.Title)
	assert.Equal(t, 5*time.Second, timeout.Waited)

	assert.Len(t, f.desktop.SetTextCalls, 3, "credentials are not retyped")
	assert.Len(t, f.desktop.ClickCalls, 1, "submit is not retried")
	assert.Len(t, f.timer.Waits(), 5)
	assert.Equal(t, []State{
		CheckingMainWindow, AwaitingLoginDialog, FillingCredentials, AwaitingMainWindow, Failed,
	}, seq.Visited())
}

func TestRun_UnexpectedLayout(t *testing.T) {
	t.Parallel()

	edit := func() *testutil.FakeWindow { return testutil.Window(windows.ClassEdit, "") }
	combo := func() *testutil.FakeWindow { return testutil.Window(windows.ClassComboBox, "", edit()) }
	submit := func() *testutil.FakeWindow { return testutil.Window(windows.ClassButton, layout.SubmitButtonLabel) }

	tests := []struct {
		name     string
		children []*testutil.FakeWindow
		control  string
	}{
		{"no combo box", []*testutil.FakeWindow{edit(), edit(), edit(), submit()}, layout.FieldUserIDBox},
		{"empty combo box", []*testutil.FakeWindow{testutil.Window(windows.ClassComboBox, ""), edit(), edit(), submit()}, layout.FieldUserID},
		{"missing trade password", []*testutil.FakeWindow{combo(), submit()}, layout.FieldTradePassword},
		{"missing comm password", []*testutil.FakeWindow{combo(), edit(), submit()}, layout.FieldCommPassword},
		{"submit before edits", []*testutil.FakeWindow{combo(), submit(), edit(), edit()}, layout.FieldSubmit},
		{"relabelled submit", []*testutil.FakeWindow{combo(), edit(), edit(), testutil.Window(windows.ClassButton, "登录")}, layout.FieldSubmit},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.desktop.Add(testutil.Window("#32770", layout.LoginDialogTitle, tt.children...))

			seq := f.sequencer(30)
			_, err := seq.Run()

			var layoutErr *apperr.UnexpectedLayoutError
			require.ErrorAs(t, err, &layoutErr)
			assert.Equal(t, tt.control, layoutErr.Control)
			assert.Equal(t, layout.LoginFields.Name, layoutErr.Dialog)
			assert.False(t, apperr.IsRetryable(err))

			assert.Empty(t, f.timer.Waits(), "layout errors never sleep")
			assert.Empty(t, f.desktop.SetTextCalls)
			assert.Empty(t, f.desktop.ClickCalls)
			assert.Equal(t, Failed, seq.State())
			assert.Positive(t, f.log.Count("TRACE", "Login dialog control"), "controls are dumped for diagnosis")
		})
	}
}

func TestRun_LayoutDumpMasksPasswordEdits(t *testing.T) {
	t.Parallel()

	const stale = "stale-password"

	f := newFixture()
	f.desktop.Add(testutil.Window("#32770", layout.LoginDialogTitle,
		testutil.Window(windows.ClassComboBox, "", testutil.Window(windows.ClassEdit, testUserID)),
		testutil.Window(windows.ClassEdit, stale).Password(),
		testutil.Window(windows.ClassButton, layout.SubmitButtonLabel),
	))

	_, err := f.sequencer(30).Run()

	var layoutErr *apperr.UnexpectedLayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, layout.FieldCommPassword, layoutErr.Control)

	out := f.log.Output()
	assert.Equal(t, 4, f.log.Count("TRACE", "Login dialog control"))
	assert.Contains(t, out, "text="+testUserID)
	assert.Contains(t, out, "masked=true")
	assert.NotContains(t, out, stale)
}

func TestRun_HiddenLoginDialog(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.desktop.Add(loginDialog().Hidden())

	_, err := f.sequencer(30).Run()

	var layoutErr *apperr.UnexpectedLayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Empty(t, f.desktop.SetTextCalls)
	assert.Empty(t, f.launcher.LaunchCalls)
}

func TestRun_UnencodableCredential(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.desktop.Add(loginDialog())

	seq := NewSequencer(f.log, Options{
		ExecutablePath: testExePath,
		Credentials:    Credentials{UserID: "user🙂", TradePassword: "x", CommPassword: "y"},
		Policy:         timeouts.NewPolicy(30),
	}, Dependencies{Desktop: f.desktop, Launcher: f.launcher, Timer: f.timer})

	_, err := seq.Run()

	var encErr *apperr.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Len(t, f.desktop.SetTextCalls, 1)
	assert.Empty(t, f.desktop.ClickCalls)
}

func TestRun_PasswordsNeverLogged(t *testing.T) {
	t.Parallel()

	f := newFixture()
	dialog := f.desktop.Add(loginDialog())
	f.desktop.OnClick(field(dialog, layout.FieldSubmit).Hwnd, f.desktop.Reveal(f.desktop.Prepare(mainWindow()), 1))

	_, err := f.sequencer(30).Run()
	require.NoError(t, err)

	out := f.log.Output()
	assert.NotContains(t, out, testTradePassword)
	assert.NotContains(t, out, testCommPassword)
	assert.Contains(t, out, "[REDACTED]")
}

func TestRun_OnlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.desktop.Add(mainWindow())

	seq := f.sequencer(30)
	_, err := seq.Run()
	require.NoError(t, err)

	_, err = seq.Run()
	require.Error(t, err)
	assert.Equal(t, []State{CheckingMainWindow, Ready}, seq.Visited())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AwaitingLoginDialog", AwaitingLoginDialog.String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "State(42)", State(42).String())
}

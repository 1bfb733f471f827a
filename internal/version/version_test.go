package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)

	if info.Version != "dev" {
		assert.Regexp(t, `^v?\d+\.\d+\.\d+`, info.Version, "Version should match semver pattern")
	}
}

func TestGetFullVersionFormat(t *testing.T) {
	t.Parallel()

	info := Get()
	expected := info.Version + " (commit: " + info.Commit + ", built: " + info.Date + ")"
	assert.Equal(t, expected, GetFullVersion())
	assert.Equal(t, info.Version, GetVersion())
}

func TestFillFromBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			name: "unstamped build uses vcs data",
			in:   Info{Version: "dev"},
			want: Info{Version: "v1.2.3", Commit: "0123456", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "v2.0.0", Commit: "abc1234", Date: "2026-10-01"},
			want: Info{Version: "v2.0.0", Commit: "abc1234", Date: "2026-10-01"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fillFromBuildInfo(tt.in, bi))
		})
	}
}

func TestFillFromBuildInfo_DevelVersionIgnored(t *testing.T) {
	t.Parallel()

	got := fillFromBuildInfo(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", got.Version)
}

package textenc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/htauto/internal/apperr"
	"github.com/Norgate-AV/htauto/internal/textenc"
)

func TestToNative_EmptyIsAbsent(t *testing.T) {
	t.Parallel()

	out, err := textenc.ToNative("")
	require.NoError(t, err)
	assert.Nil(t, out, "empty text should map to no value, not an empty buffer")
}

func TestToNative_EncodesGBK(t *testing.T) {
	t.Parallel()

	out, err := textenc.ToNative("用户登录")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD3, 0xC3, 0xBB, 0xA7, 0xB5, 0xC7, 0xC2, 0xBC}, out)
}

func TestToNative_ASCIIUnchanged(t *testing.T) {
	t.Parallel()

	out, err := textenc.ToNative("AfxFrameOrView42s")
	require.NoError(t, err)
	assert.Equal(t, []byte("AfxFrameOrView42s"), out)
}

func TestToNative_UnrepresentableRune(t *testing.T) {
	t.Parallel()

	_, err := textenc.ToNative("price 🚀")

	var encErr *apperr.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, apperr.ToNative, encErr.Direction)
	assert.False(t, apperr.IsRetryable(err))
}

func TestToNative_InvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := textenc.ToNative(string([]byte{0xff, 0xfe}))

	var encErr *apperr.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestFromNative_Empty(t *testing.T) {
	t.Parallel()

	s, err := textenc.FromNative(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestFromNative_InvalidSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "truncated lead byte", raw: []byte{0xB5}},
		{name: "invalid lead byte", raw: []byte{'o', 'k', 0xFF}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := textenc.FromNative(tt.raw)

			var encErr *apperr.EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, apperr.FromNative, encErr.Direction)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"用户登录",
		"网上股票交易系统5.0",
		"确定(&Y)",
		"核新加密",
		"安全信息及设置",
		"营业部公告",
		"666622916299",
		"mixed 中文 and ascii",
	}

	for _, in := range inputs {
		native, err := textenc.ToNative(in)
		require.NoError(t, err, in)

		out, err := textenc.FromNative(native)
		require.NoError(t, err, in)
		assert.Equal(t, in, out)
	}
}

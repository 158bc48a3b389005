package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Size
	}{
		{"0", 0},
		{"1024", 1024},
		{"1b", 1},
		{"1K", KB},
		{"1KB", KB},
		{"1Ki", KiB},
		{"1KiB", KiB},
		{"16MB", 16 * MB},
		{"16Mi", 16 * MiB},
		{"2G", 2 * GB},
		{"2GiB", 2 * GiB},
		{"1.5Mi", Size(1.5 * float64(MiB))},
		{" 4 MiB ", 4 * MiB},
		{"100mb", 100 * MB},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := Parse(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1XB", "-1Ki", "1.2.3M"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var z Size
	require.NoError(t, z.UnmarshalText([]byte("16Mi")))
	assert.Equal(t, 16*MiB, z)

	require.Error(t, z.UnmarshalText([]byte("bogus")))
}

func TestString(t *testing.T) {
	assert.Equal(t, "16MiB", (16 * MiB).String())
	assert.Equal(t, "2GiB", (2 * GiB).String())
	assert.Equal(t, "1KiB", KiB.String())
	assert.Equal(t, "512B", Size(512).String())
	assert.Equal(t, "1.50MiB", Size(1.5*float64(MiB)).String())
}

func TestInt(t *testing.T) {
	assert.Equal(t, 1024, KiB.Int())
}

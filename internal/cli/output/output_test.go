package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"YAML", FormatYAML},
		{"", FormatYAML},
		{"json", FormatJSON},
		{" json ", FormatJSON},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"port": 3000}))
	assert.JSONEq(t, `{"port": 3000}`, buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, map[string]int{"port": 3000}))
	assert.Equal(t, "port: 3000\n", buf.String())
}

func TestPrintDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, map[string]string{"a": "b"}))
	assert.Contains(t, buf.String(), `"a": "b"`)

	buf.Reset()
	require.NoError(t, Print(&buf, FormatYAML, map[string]string{"a": "b"}))
	assert.Equal(t, "a: b\n", buf.String())
}

package lac1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		label string
		name  string
		fail  bool
	}{
		{label: "", name: "utf-8"},
		{label: "UTF-8", name: "utf-8"},
		{label: "latin1", name: "windows-1252"},
		{label: " cp866 ", name: "ibm866"},
		{label: "klingon", fail: true},
	}
	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			cs, err := LookupCharset(test.label)
			if test.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.name, cs.Name())
		})
	}
}

func TestCharsetDecodeDropsInvalid(t *testing.T) {
	assert.Equal(t, "MD1,GO", UTF8().Decode([]byte{'M', 'D', 0xff, '1', ',', 0xfe, 'G', 'O'}))
	assert.Equal(t, "привет", UTF8().Decode([]byte("привет")))

	var nilCharset *Charset
	assert.Equal(t, "ok", nilCharset.Decode([]byte{'o', 0x80, 'k'}))
}

func TestCharsetSingleByte(t *testing.T) {
	cs, err := LookupCharset("windows-1252")
	require.NoError(t, err)

	assert.Equal(t, "café", cs.Decode([]byte{'c', 'a', 'f', 0xE9}))

	b, err := cs.Encode("café")
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, b)
}

package simulator

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, d *Device) string {
	t.Helper()
	var res []byte
	buf := make([]byte, 16)
	for {
		n, err := d.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			return string(res)
		}
		res = append(res, buf[:n]...)
	}
}

func TestDevicePrompt(t *testing.T) {
	d := New(Options{})
	_, err := d.Write([]byte{0x1B})
	require.NoError(t, err)
	assert.Equal(t, "\r\n>", readAll(t, d))
	assert.Equal(t, "", readAll(t, d))
}

func TestDeviceSilent(t *testing.T) {
	d := New(Options{Silent: true})
	_, err := d.Write([]byte("\x1bTR0\r"))
	require.NoError(t, err)
	assert.Equal(t, "", readAll(t, d))
	assert.Equal(t, []string{"\x1b", "TR0"}, d.Commands())
}

func TestDeviceRegisters(t *testing.T) {
	d := New(Options{Registers: 8})
	_, err := d.Write([]byte("AL-15,AR3\rTR3\rTR9\r"))
	require.NoError(t, err)
	assert.Equal(t, "-15\r\n?\r\n", readAll(t, d))
	assert.EqualValues(t, -15, d.Register(3))

	// некорректные команды не меняют состояние
	_, err = d.Write([]byte("ALx,AR3\rAL5,XX3\rAL5,AR99\r"))
	require.NoError(t, err)
	assert.EqualValues(t, -15, d.Register(3))
}

func TestDeviceMacros(t *testing.T) {
	d := New(Options{})
	_, err := d.Write([]byte("MD20,GO\r\nMD3,WA10\rTM-1\r"))
	require.NoError(t, err)
	assert.Equal(t, "MD3,WA10\r\nMD20,GO\r\n>", readAll(t, d))

	def, ok := d.Macro(20)
	require.True(t, ok)
	assert.Equal(t, "MD20,GO", def)
}

func TestDeviceParameters(t *testing.T) {
	d := New(Options{})
	_, err := d.Write([]byte("TK1\r"))
	require.NoError(t, err)
	assert.Equal(t, "SP1=9600\r\nSP2=1\r\nSP3=0\r\n>", readAll(t, d))
}

func TestDeviceFailWrites(t *testing.T) {
	d := New(Options{FailWritesAfter: 2})
	_, err := d.Write([]byte("TR0\r"))
	require.NoError(t, err)

	n, err := d.Write([]byte("TR1\r"))
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"TR0"}, d.Commands())
}

func TestDeviceCloseReopen(t *testing.T) {
	d := NewDemo()
	require.NoError(t, d.Close())
	assert.True(t, d.Closed())

	_, err := d.Write([]byte("TR0\r"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	_, err = d.Read(make([]byte, 4))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	d.Reopen()
	assert.False(t, d.Closed())
	_, err = d.Write([]byte("TR5\r"))
	require.NoError(t, err)
	assert.Equal(t, "1234\r\n", readAll(t, d))
}

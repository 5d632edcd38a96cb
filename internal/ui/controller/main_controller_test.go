package controller

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/infrastructure/driver"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/simulator"
	"lac1tool/internal/ui/viewmodel"
)

type outcome struct {
	op  models.Operation
	res *maintenance.Result
	err error
}

func newController(t *testing.T, device *simulator.Device) (*MainController, chan outcome, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewFileProfileRepository(filepath.Join(dir, "profiles.json"))
	require.NoError(t, err)

	log := logger.NewStdLoggerTo(io.Discard, "", false)
	conn := connection.NewConnectionService(driver.NewSimulatorDialer(device, driver.Options{}), repo, log)
	maint := maintenance.NewService(conn, maintenance.NewGuard(filepath.Join(dir, "locks")), log)

	c := NewMainController(viewmodel.NewMainViewModel(), conn, maint)
	done := make(chan outcome, 1)
	c.SetOnDone(func(op models.Operation, res *maintenance.Result, err error) {
		done <- outcome{op: op, res: res, err: err}
	})
	c.ViewModel().ConnectionString = "COM7"
	return c, done, dir
}

func wait(t *testing.T, done <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-done:
		return o
	case <-time.After(10 * time.Second):
		t.Fatal("операция не завершилась")
		return outcome{}
	}
}

func TestStartBackup(t *testing.T) {
	c, done, dir := newController(t, simulator.NewDemo())
	path := filepath.Join(dir, c.DefaultBackupName())

	require.NoError(t, c.StartBackup(path))
	o := wait(t, done)
	require.NoError(t, o.err)
	assert.Equal(t, models.OperationBackup, o.op)
	require.NotNil(t, o.res)

	vm := c.ViewModel()
	assert.False(t, vm.IsBusy)
	assert.Equal(t, models.StatusBackupCompleted, vm.Status)
	assert.Contains(t, vm.LogText(), ">>> TR511")
	assert.Contains(t, vm.ConnectionList, "COM7")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "--- MACROS (TM-1) ---"))
}

func TestStartRestoreFailure(t *testing.T) {
	c, done, dir := newController(t, simulator.New(simulator.Options{}))

	require.NoError(t, c.StartRestore(filepath.Join(dir, "missing.txt")))
	o := wait(t, done)
	require.Error(t, o.err)
	assert.Equal(t, models.ErrFileAccess, models.KindOf(o.err))
	assert.Equal(t, models.StatusError, c.ViewModel().Status)
	assert.False(t, c.ViewModel().IsBusy)
}

func TestStartValidation(t *testing.T) {
	c, _, dir := newController(t, simulator.New(simulator.Options{}))

	assert.Error(t, c.StartBackup(""))

	c.ViewModel().ConnectionString = ""
	assert.Error(t, c.StartBackup(filepath.Join(dir, "b.txt")))

	c.ViewModel().ConnectionString = "COM7"
	c.ViewModel().BaudRate = "fast"
	assert.Error(t, c.StartBackup(filepath.Join(dir, "b.txt")))

	c.ViewModel().BaudRate = "9600"
	c.ViewModel().IsBusy = true
	err := c.StartBackup(filepath.Join(dir, "b.txt"))
	assert.Equal(t, models.ErrBusy, models.KindOf(err))
}

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		input, baud string
		want        models.ConnectionProfile
		wantErr     bool
	}{
		{input: "COM3", baud: "19200", want: models.ConnectionProfile{ConnectionType: models.ConnectionCOM, ComName: "COM3", BaudRate: 19200}},
		{input: " /dev/ttyUSB0 ", baud: "", want: models.ConnectionProfile{ConnectionType: models.ConnectionCOM, ComName: "/dev/ttyUSB0"}},
		{input: "192.168.1.50:4001", want: models.ConnectionProfile{ConnectionType: models.ConnectionTCP, IPAddress: "192.168.1.50", TCPPort: 4001}},
		{input: "tcp://bridge", want: models.ConnectionProfile{ConnectionType: models.ConnectionTCP, IPAddress: "bridge", TCPPort: defaultBridgePort}},
		{input: "bridge:0", wantErr: true},
		{input: ":4001", wantErr: true},
		{input: "COM1", baud: "-5", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConnectionString(tt.input, tt.baud)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectConnectionAppliesProfileBaud(t *testing.T) {
	c, _, _ := newController(t, simulator.New(simulator.Options{}))
	require.NoError(t, c.connService.SaveProfile(&models.ConnectionProfile{
		Name: "COM9", ConnectionType: models.ConnectionCOM, ComName: "COM9", BaudRate: 38400,
	}))

	c.SelectConnection("COM9")
	assert.Equal(t, "38400", c.ViewModel().BaudRate)
	assert.Equal(t, "COM9", c.ViewModel().ConnectionString)
}

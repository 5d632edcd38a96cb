package maintenance

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/infrastructure/driver"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/simulator"
)

type sinkRecorder struct {
	mu       sync.Mutex
	statuses []string
	entries  []models.LogEntry
	progress []float64
}

func (r *sinkRecorder) Progress(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, f)
}

func (r *sinkRecorder) Log(e models.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *sinkRecorder) Status(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *sinkRecorder) errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []string
	for _, e := range r.entries {
		if e.Level == models.LogError {
			res = append(res, e.Message)
		}
	}
	return res
}

type fixture struct {
	dir     string
	device  *simulator.Device
	conn    *connection.ConnectionService
	service *Service
}

func newFixture(t *testing.T, device *simulator.Device) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewFileProfileRepository(filepath.Join(dir, "profiles.json"))
	require.NoError(t, err)

	log := logger.NewStdLoggerTo(io.Discard, "", false)
	dialer := driver.NewSimulatorDialer(device, driver.Options{})
	conn := connection.NewConnectionService(dialer, repo, log)
	return &fixture{
		dir:     dir,
		device:  device,
		conn:    conn,
		service: NewService(conn, NewGuard(filepath.Join(dir, "locks")), log),
	}
}

var simProfile = models.ConnectionProfile{ComName: "SIM", BaudRate: 9600}

func TestBackup(t *testing.T) {
	f := newFixture(t, simulator.NewDemo())
	path := filepath.Join(f.dir, DefaultBackupName(time.Now()))
	sink := &sinkRecorder{}

	res, err := f.service.Backup(context.Background(), simProfile, path, sink)
	require.NoError(t, err)

	_, err = uuid.Parse(res.OperationID)
	assert.NoError(t, err)
	assert.Equal(t, models.OperationBackup, res.Operation)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "--- MACROS (TM-1) ---\n"))
	assert.Contains(t, text, "--- SYSTEM PARAMETERS (TK1) ---\n")
	assert.Contains(t, text, "TR5: 1234\n")
	assert.True(t, strings.HasSuffix(text, "TR511: 42\n"))

	assert.Equal(t, []string{
		models.StatusConnecting,
		"Backing up macros...",
		"Backing up system parameters...",
		"Backing up registers...",
		models.StatusBackupCompleted,
	}, sink.statuses)
	assert.Len(t, sink.progress, 512)
	assert.Empty(t, sink.errors())
	assert.True(t, f.device.Closed())

	saved, err := f.conn.FindProfile("SIM")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.False(t, saved.LastUsed.IsZero())
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	src := newFixture(t, simulator.NewDemo())
	path := filepath.Join(src.dir, "backup.txt")
	_, err := src.service.Backup(context.Background(), simProfile, path, nil)
	require.NoError(t, err)

	dst := newFixture(t, simulator.New(simulator.Options{}))
	sink := &sinkRecorder{}
	_, err = dst.service.Restore(context.Background(), simProfile, path, sink)
	require.NoError(t, err)

	assert.EqualValues(t, 1234, dst.device.Register(5))
	assert.EqualValues(t, 42, dst.device.Register(511))
	def, ok := dst.device.Macro(10)
	require.True(t, ok)
	assert.Equal(t, "MD10,PM,MN,SA1000,SV200000,MA4000,GO", def)

	assert.Contains(t, sink.statuses, "Restoring...")
	assert.Equal(t, models.StatusRestoreCompleted, sink.statuses[len(sink.statuses)-1])
	assert.Equal(t, 1.0, sink.progress[len(sink.progress)-1])
}

func TestRestoreMissingFile(t *testing.T) {
	f := newFixture(t, simulator.New(simulator.Options{}))
	sink := &sinkRecorder{}

	_, err := f.service.Restore(context.Background(), simProfile, filepath.Join(f.dir, "nope.txt"), sink)
	require.Error(t, err)
	assert.Equal(t, models.ErrFileAccess, models.KindOf(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, f.device.Commands(), "device must not be touched")
	assert.Equal(t, []string{models.StatusError}, sink.statuses)
	assert.Len(t, sink.errors(), 1)
}

func TestBackupUnwritablePath(t *testing.T) {
	f := newFixture(t, simulator.New(simulator.Options{}))
	path := filepath.Join(f.dir, "missing-dir", "backup.txt")

	_, err := f.service.Backup(context.Background(), simProfile, path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.KindError(models.ErrFileAccess)))
	assert.True(t, f.device.Closed(), "port must be closed on failure")
}

func TestBackupDeviceNotResponding(t *testing.T) {
	f := newFixture(t, simulator.New(simulator.Options{Silent: true}))
	sink := &sinkRecorder{}

	_, err := f.service.Backup(context.Background(), simProfile, filepath.Join(f.dir, "b.txt"), sink)
	require.Error(t, err)
	assert.Equal(t, models.ErrDeviceNotResponding, models.KindOf(err))
	assert.True(t, f.device.Closed())
	assert.Equal(t, models.StatusError, sink.statuses[len(sink.statuses)-1])
	assert.Len(t, sink.errors(), 1)

	_, statErr := os.Stat(filepath.Join(f.dir, "b.txt"))
	assert.True(t, os.IsNotExist(statErr), "no file without a device")
}

func TestBackupIOFailureKeepsPartialFile(t *testing.T) {
	f := newFixture(t, simulator.New(simulator.Options{FailWritesAfter: 10}))
	path := filepath.Join(f.dir, "partial.txt")
	sink := &sinkRecorder{}

	_, err := f.service.Backup(context.Background(), simProfile, path, sink)
	require.Error(t, err)
	assert.Equal(t, models.ErrIOFailure, models.KindOf(err))
	assert.Len(t, sink.errors(), 1, "error logged once")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--- REGISTERS (TR0 to TR511) ---")
}

func TestGuardBusy(t *testing.T) {
	f := newFixture(t, simulator.NewDemo())
	release, err := f.service.guard.Acquire(models.OperationRestore, "SIM")
	require.NoError(t, err)

	_, err = f.service.Backup(context.Background(), simProfile, filepath.Join(f.dir, "b.txt"), nil)
	require.Error(t, err)
	assert.Equal(t, models.ErrBusy, models.KindOf(err))
	assert.Empty(t, f.device.Commands())

	release()
	_, err = f.service.Backup(context.Background(), simProfile, filepath.Join(f.dir, "b.txt"), nil)
	assert.NoError(t, err)
}

func TestGuardAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	g1 := NewGuard(dir)
	g2 := NewGuard(dir)

	release, err := g1.Acquire(models.OperationBackup, "/dev/ttyUSB0")
	require.NoError(t, err)

	_, err = g2.Acquire(models.OperationBackup, "/dev/ttyUSB0")
	assert.True(t, errors.Is(err, models.KindError(models.ErrBusy)))

	other, err := g2.Acquire(models.OperationBackup, "/dev/ttyUSB1")
	require.NoError(t, err)
	other()

	release()
	again, err := g2.Acquire(models.OperationBackup, "/dev/ttyUSB0")
	require.NoError(t, err)
	again()
}

func TestDefaultBackupName(t *testing.T) {
	tests := []struct {
		ts   time.Time
		want string
	}{
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local), "lac1_backup_2024-01-02_03-04-05.txt"},
		{time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local), "lac1_backup_2024-03-09_14-05-07.txt"},
		{time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local), "lac1_backup_2023-12-31_23-59-59.txt"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, DefaultBackupName(test.ts))
	}
}

func TestLockName(t *testing.T) {
	assert.Equal(t, "lac1-dev_ttyUSB0.lock", LockName("/dev/ttyUSB0"))
	assert.Equal(t, "lac1-10_0_0_5_4001.lock", LockName("10.0.0.5:4001"))
	assert.Equal(t, "lac1-COM3.lock", LockName("COM3"))
}

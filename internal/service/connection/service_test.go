package connection

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
)

// mockDialer - мок диалера для тестирования
type mockDialer struct {
	OnDial func(ctx context.Context, p models.ConnectionProfile) (ports.Controller, error)
}

func (m *mockDialer) Dial(ctx context.Context, p models.ConnectionProfile) (ports.Controller, error) {
	return m.OnDial(ctx, p)
}

type nopController struct{}

func (nopController) Backup(context.Context, io.Writer, ports.ProgressSink) error  { return nil }
func (nopController) Restore(context.Context, io.Reader, ports.ProgressSink) error { return nil }
func (nopController) Close() error                                                 { return nil }

func newService(t *testing.T, dialer ports.ControllerDialer) *ConnectionService {
	t.Helper()
	repo, err := storage.NewFileProfileRepository(filepath.Join(t.TempDir(), "profiles.json"))
	require.NoError(t, err)
	s := NewConnectionService(dialer, repo, logger.NewStdLoggerTo(io.Discard, "", false))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestConnectSavesProfile(t *testing.T) {
	s := newService(t, &mockDialer{OnDial: func(_ context.Context, p models.ConnectionProfile) (ports.Controller, error) {
		return nopController{}, nil
	}})

	ctrl, err := s.Connect(context.Background(), models.ConnectionProfile{ComName: "COM3", BaudRate: 9600})
	require.NoError(t, err)
	require.NotNil(t, ctrl)

	p, err := s.FindProfile("COM3")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 9600, p.BaudRate)
	assert.Equal(t, s.now(), p.LastUsed)
}

func TestConnectFailureDoesNotSave(t *testing.T) {
	dialErr := &models.OperationError{Kind: models.ErrDeviceNotResponding, Err: errors.New("no prompt")}
	s := newService(t, &mockDialer{OnDial: func(context.Context, models.ConnectionProfile) (ports.Controller, error) {
		return nil, dialErr
	}})

	_, err := s.Connect(context.Background(), models.ConnectionProfile{ComName: "COM3"})
	assert.Equal(t, dialErr, err)

	profiles, err := s.LoadProfiles()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestGetSystemPorts(t *testing.T) {
	s := newService(t, &mockDialer{})
	s.listDetailed = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
			{Name: "/dev/ttyACM0"},
		}, nil
	}

	s.goos = "linux"

	all, err := s.GetSystemPorts(true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/dev/ttyACM0", all[0].Name)
	assert.Equal(t, "/dev/ttyUSB0 [USB 0403:6001 FT232R]", all[2].Description())

	filtered, err := s.GetSystemPorts(false)
	require.NoError(t, err)
	var names []string
	for _, p := range filtered {
		names = append(names, p.Name)
	}
	assert.NotContains(t, names, "/dev/ttyS0")
	assert.Contains(t, names, "/dev/ttyUSB0")
}

func TestGetSystemPortsFallback(t *testing.T) {
	s := newService(t, &mockDialer{})
	s.listDetailed = func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("not supported")
	}
	s.listNames = func() ([]string, error) {
		return []string{"COM4", "COM1"}, nil
	}

	list, err := s.GetSystemPorts(true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "COM1", list[0].Name)

	ok, err := s.PortExists("COM4")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.PortExists("COM9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCandidatesProfilesFirst(t *testing.T) {
	s := newService(t, &mockDialer{})
	s.listDetailed = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{{Name: "COM1"}, {Name: "COM3"}}, nil
	}
	require.NoError(t, s.SaveProfile(&models.ConnectionProfile{ComName: "COM3"}))

	got, err := s.Candidates(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"COM3", "COM1"}, got)
}

func TestFilterPorts(t *testing.T) {
	tests := []struct {
		goos string
		in   []string
		want []string
	}{
		{
			goos: "linux",
			in:   []string{"/dev/ttyS0", "/dev/ttyUSB0", "/dev/ttyACM1"},
			want: []string{"/dev/ttyUSB0", "/dev/ttyACM1"},
		},
		{
			goos: "darwin",
			in: []string{
				"/dev/cu.Bluetooth-Incoming-Port",
				"/dev/tty.Bluetooth-Incoming-Port",
				"/dev/cu.usbserial-1420",
				"/dev/tty.usbserial-1420",
				"/dev/tty.other",
			},
			want: []string{"/dev/cu.usbserial-1420", "/dev/tty.other"},
		},
		{
			goos: "windows",
			in:   []string{"COM1", "COM3"},
			want: []string{"COM1", "COM3"},
		},
	}
	for _, test := range tests {
		t.Run(test.goos, func(t *testing.T) {
			assert.Equal(t, test.want, FilterPorts(test.goos, test.in))
		})
	}
}

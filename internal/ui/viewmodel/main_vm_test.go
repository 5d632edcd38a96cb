package viewmodel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lac1tool/internal/domain/models"
)

func TestUpdateUIState(t *testing.T) {
	vm := NewMainViewModel()
	assert.Equal(t, models.StatusReady, vm.Status)
	assert.False(t, vm.BackupEnabled, "no port selected")
	assert.True(t, vm.ScanEnabled)

	vm.ConnectionString = "COM3"
	vm.UpdateUIState()
	assert.True(t, vm.BackupEnabled)
	assert.True(t, vm.RestoreEnabled)
	assert.False(t, vm.CancelEnabled)

	vm.BeginOperation(models.OperationBackup)
	assert.False(t, vm.BackupEnabled)
	assert.False(t, vm.RestoreEnabled)
	assert.False(t, vm.ConnectionEnabled)
	assert.True(t, vm.CancelEnabled)

	vm.SetProgress(0.5)
	assert.Equal(t, 50, vm.Progress)
	vm.EndOperation()
	assert.Equal(t, 0, vm.Progress)
	assert.True(t, vm.BackupEnabled)
}

func TestSetProgressClamp(t *testing.T) {
	vm := NewMainViewModel()
	vm.SetProgress(-1)
	assert.Equal(t, 0, vm.Progress)
	vm.SetProgress(1.7)
	assert.Equal(t, 100, vm.Progress)
	vm.SetProgress(510.0 / 511)
	assert.Equal(t, 100, vm.Progress)
}

func TestAppendLogBounded(t *testing.T) {
	vm := NewMainViewModel()
	for i := 0; i < MaxLogEntries+10; i++ {
		vm.AppendLog(models.LogEntry{Message: fmt.Sprint(i)})
	}
	assert.Len(t, vm.Log, MaxLogEntries)
	assert.Equal(t, "10", vm.Log[0].Message)
	assert.Equal(t, 10, vm.LogDropped)

	vm.ClearLog()
	assert.Empty(t, vm.Log)
}

func TestLogText(t *testing.T) {
	vm := NewMainViewModel()
	ts := time.Date(2024, 1, 1, 9, 30, 5, 0, time.UTC)
	vm.AppendLog(models.LogEntry{Time: ts, Level: models.LogTX, Message: ">>> TM-1"})
	vm.AppendLog(models.LogEntry{Time: ts, Level: models.LogRX, Message: "<<< 42"})
	assert.Equal(t, "09:30:05 >>> TM-1\r\n09:30:05 <<< 42\r\n", vm.LogText())
}

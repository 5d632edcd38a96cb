package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/service/maintenance"
)

func TestBuildReportLinesSuccess(t *testing.T) {
	r := OperationReport{
		Operation: models.OperationBackup,
		Address:   "COM3",
		Status:    models.StatusBackupCompleted,
		Result: &maintenance.Result{
			OperationID: "op-1",
			Operation:   models.OperationBackup,
			Path:        `C:\backups\a.txt`,
			Duration:    1500 * time.Millisecond,
		},
		Log: []models.LogEntry{
			{Level: models.LogTX, Message: ">>> TM-1"},
			{Level: models.LogRX, Message: "<<< TM-1 Response Captured"},
			{Level: models.LogTX, Message: ">>> TK1"},
		},
	}

	text := FormatKeyValueText(BuildReportLines(r))
	assert.Contains(t, text, "Операция         : Резервное копирование\n")
	assert.Contains(t, text, "Файл             : C:\\backups\\a.txt\n")
	assert.Contains(t, text, "Длительность     : 1.5s\n")
	assert.Contains(t, text, "Отправлено команд: 2\n")
	assert.NotContains(t, text, "Ошибка")
}

func TestBuildReportLinesFailure(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)
	r := OperationReport{
		Operation: models.OperationRestore,
		Status:    models.StatusError,
		Err:       &models.OperationError{Kind: models.ErrDeviceNotResponding, Err: errors.New("no prompt")},
		Log: []models.LogEntry{
			{Time: at, Level: models.LogError, Message: "Error: first"},
			{Time: at, Level: models.LogError, Message: "Error: second"},
		},
	}

	lines := BuildReportLines(r)
	text := FormatKeyValueText(lines)
	assert.Contains(t, text, "Восстановление")
	assert.Contains(t, text, models.ErrDeviceNotResponding.String())

	// многострочное значение выравнивается под первую строку
	idx := strings.Index(text, "15:04:05 Error: first\n")
	require.True(t, idx > 0)
	rest := text[idx+len("15:04:05 Error: first\n"):]
	assert.True(t, strings.HasPrefix(rest, strings.Repeat(" ", len([]rune("Отправлено команд: ")))+"15:04:05 Error: second\n"), rest)
}

func TestToWindowsText(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\nc", ToWindowsText("a\nb\r\nc"))
}

func TestGenerateReportFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "lac1_report_backup_20240102_150405.txt", GenerateReportFileName(models.OperationBackup, at))
	assert.Equal(t, "lac1_report_operation_20240102_150405.txt", GenerateReportFileName("", at))
}

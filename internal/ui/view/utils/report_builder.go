package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/ui/viewmodel"
)

// kv представляет пару ключ-значение для построения отчета
type kv struct {
	Key   string
	Value string
}

// OperationReport - итог одной операции для окна отчета.
type OperationReport struct {
	Operation models.Operation
	Address   string
	Result    *maintenance.Result
	Err       error
	Status    string
	Log       []models.LogEntry
}

// BuildReportLines собирает строки отчета об операции
func BuildReportLines(r OperationReport) []kv {
	var lines []kv

	lines = append(lines, kv{"Операция", operationTitle(r.Operation)})
	lines = append(lines, kv{"Подключение", r.Address})
	lines = append(lines, kv{"Итог", r.Status})
	if r.Result != nil {
		lines = append(lines, kv{"Файл", r.Result.Path})
		lines = append(lines, kv{"Длительность", r.Result.Duration.Round(time.Millisecond).String()})
		lines = append(lines, kv{"ID операции", r.Result.OperationID})
	}
	if r.Err != nil {
		lines = append(lines, kv{"Тип ошибки", models.KindOf(r.Err).String()})
		lines = append(lines, kv{"Ошибка", r.Err.Error()})
	}

	var tx, errs []string
	for _, e := range r.Log {
		switch e.Level {
		case models.LogTX:
			tx = append(tx, e.Message)
		case models.LogError:
			errs = append(errs, viewmodel.FormatLogEntry(e))
		}
	}
	lines = append(lines, kv{"Отправлено команд", fmt.Sprintf("%d", len(tx))})
	appendIfNotEmpty(&lines, "Ошибки в журнале", strings.Join(errs, "\n"))

	return lines
}

func operationTitle(op models.Operation) string {
	switch op {
	case models.OperationBackup:
		return "Резервное копирование"
	case models.OperationRestore:
		return "Восстановление"
	default:
		return string(op)
	}
}

func appendIfNotEmpty(lines *[]kv, key, value string) {
	if value != "" {
		*lines = append(*lines, kv{key, value})
	}
}

// FormatKeyValueText форматирует данные отчета в текстовый вид с выравниванием
func FormatKeyValueText(lines []kv) string {
	maxKeyLen := 0
	for _, l := range lines {
		keyLen := utf8.RuneCountInString(l.Key)
		if keyLen > maxKeyLen {
			maxKeyLen = keyLen
		}
	}

	var b strings.Builder

	for _, l := range lines {
		keyPad := maxKeyLen - utf8.RuneCountInString(l.Key)
		prefix := l.Key + strings.Repeat(" ", keyPad) + ": "

		valueLines := strings.Split(normalizeNewlines(l.Value), "\n")

		b.WriteString(prefix)
		b.WriteString(valueLines[0])
		b.WriteString("\n")

		// продолжение значения выравнивается под первую строку
		for i := 1; i < len(valueLines); i++ {
			b.WriteString(strings.Repeat(" ", utf8.RuneCountInString(prefix)))
			b.WriteString(valueLines[i])
			b.WriteString("\n")
		}
	}

	return b.String()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// ToWindowsText конвертирует новые строки в Windows-формат
func ToWindowsText(s string) string {
	return strings.ReplaceAll(normalizeNewlines(s), "\n", "\r\n")
}

// GenerateReportFileName генерирует имя файла отчета вида
// "lac1_report_backup_20240102_150405.txt".
func GenerateReportFileName(op models.Operation, t time.Time) string {
	if op == "" {
		op = "operation"
	}
	return fmt.Sprintf("lac1_report_%s_%s.txt", op, t.Format("20060102_150405"))
}

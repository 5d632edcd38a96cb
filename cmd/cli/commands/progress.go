package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/ui/viewmodel"
)

const barScale = 1000

// consoleSink выводит ход операции в консоль. В терминале прогресс
// рисуется полосой, журнал уходит в логгер; иначе журнал печатается в out.
type consoleSink struct {
	mu      sync.Mutex
	out     io.Writer
	bar     *pb.ProgressBar
	verbose bool
	status  string
	errors  int
}

func newConsoleSink(out io.Writer, withBar, verbose bool) *consoleSink {
	s := &consoleSink{out: out, verbose: verbose}
	if withBar {
		s.bar = pb.New(barScale)
		s.bar.SetTemplateString(`{{string . "prefix"}} {{bar . }} {{percent . }}`)
		s.bar.SetWriter(out)
		s.bar.Start()
	}
	return s
}

func (s *consoleSink) Progress(fraction float64) {
	if s.bar == nil {
		return
	}
	s.bar.SetCurrent(int64(fraction * barScale))
}

func (s *consoleSink) Log(e models.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Level == models.LogError {
		s.errors++
	}
	if !s.verbose && (e.Level == models.LogTX || e.Level == models.LogRX) {
		return
	}
	if s.bar != nil && e.Level != models.LogError {
		return
	}
	fmt.Fprintln(s.out, viewmodel.FormatLogEntry(e))
}

func (s *consoleSink) Status(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
	if s.bar != nil {
		s.bar.Set("prefix", text)
	}
}

// Finish останавливает полосу прогресса и печатает итоговое состояние
// и число ошибок в журнале, если они были.
func (s *consoleSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Finish()
	}
	if s.status != "" {
		fmt.Fprintln(s.out, s.status)
	}
	if s.errors > 0 {
		fmt.Fprintf(s.out, "Errors logged: %d\n", s.errors)
	}
}

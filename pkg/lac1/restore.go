package lac1

import (
	"context"
	"fmt"
	"io"
)

// Restore читает файл резервной копии целиком и воспроизводит его:
// строки макросов отправляются как есть, регистры - командой AL<v>,AR<n>.
// Параметры (TK1) не восстанавливаются. Неподходящие строки пропускаются
// молча. Ошибка обмена прерывает воспроизведение; уже отправленное не
// откатывается.
func (c *Conn) Restore(ctx context.Context, r io.Reader, obs Observer) error {
	obs = orNop(obs)
	if err := c.restore(ctx, r, obs); err != nil {
		obs.Log(logEntry(LevelError, "Error: "+err.Error()))
		return err
	}
	return nil
}

func (c *Conn) restore(ctx context.Context, r io.Reader, obs Observer) error {
	lines, err := ReadLines(r)
	if err != nil {
		return ioError("read backup", err)
	}
	script := Plan(lines)
	obs.Log(logEntry(LevelInfo, fmt.Sprintf("Restoring (%d lines, %d candidate commands)...", len(script.Lines), script.Candidates)))

	t := c.cfg.Timing
	processed := 0
	for _, l := range script.Lines {
		switch l.Kind {
		case LineHeader:
			obs.Log(logEntry(LevelInfo, "Section: "+l.Section.String()))
			continue
		case LineMacro:
			if err := c.send(ctx, l.Command, obs); err != nil {
				return err
			}
			if err := sleep(ctx, t.MacroPace); err != nil {
				return ioError(l.Command, err)
			}
		case LineRegisterWrite:
			if err := c.send(ctx, l.Command, obs); err != nil {
				return err
			}
			if err := sleep(ctx, t.RegisterWritePace); err != nil {
				return ioError(l.Command, err)
			}
		}
		processed++
		obs.Progress(script.Fraction(processed))
	}
	return nil
}

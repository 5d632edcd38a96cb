package lac1

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type dump struct {
	cmd    string
	header string
	title  string
	limit  int
}

// Backup снимает макросы (TM-1), системные параметры (TK1) и регистры
// TR0..TR(N-1) и пишет их в w тремя секциями. При ошибке обмена операция
// прерывается; уже записанная часть остаётся в w.
func (c *Conn) Backup(ctx context.Context, w io.Writer, obs Observer) error {
	obs = orNop(obs)
	if err := c.backup(ctx, w, obs); err != nil {
		obs.Log(logEntry(LevelError, "Error: "+err.Error()))
		return err
	}
	return nil
}

func (c *Conn) backup(ctx context.Context, w io.Writer, obs Observer) error {
	t := c.cfg.Timing
	dumps := []dump{
		{cmd: cmdDumpMacros, header: HeaderMacros, title: "macros", limit: c.cfg.Limits.MacroDump},
		{cmd: cmdDumpParams, header: HeaderParameters, title: "system parameters", limit: c.cfg.Limits.ParameterDump},
	}

	for _, d := range dumps {
		obs.Log(logEntry(LevelInfo, fmt.Sprintf("Backing up %s (%s)...", d.title, d.cmd)))
		if err := c.send(ctx, d.cmd, obs); err != nil {
			return err
		}
		if err := sleep(ctx, t.DumpWait); err != nil {
			return ioError(d.cmd, err)
		}
		raw, err := c.capture(ctx, d.limit)
		if err != nil {
			return ioError(d.cmd, err)
		}
		obs.Log(logEntry(LevelRX, "<<< "+d.cmd+" Response Captured"))
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", d.header, c.charset.Decode(raw)); err != nil {
			return ioError("write backup", err)
		}
	}

	count := c.cfg.Limits.Registers
	header := registersHeader(count)
	obs.Log(logEntry(LevelInfo, fmt.Sprintf("Backing up registers (TR0 to TR%d)...", count-1)))
	if _, err := fmt.Fprintln(w, header); err != nil {
		return ioError("write backup", err)
	}

	last := float64(count - 1)
	for i := 0; i < count; i++ {
		cmd := ReadRegisterCmd(i)
		if err := c.send(ctx, cmd, obs); err != nil {
			return err
		}
		if err := sleep(ctx, t.RegisterPace); err != nil {
			return ioError(cmd, err)
		}
		raw, err := c.readLine(ctx)
		if err != nil {
			return ioError(cmd, err)
		}
		value := strings.TrimSpace(c.charset.Decode(raw))
		obs.Log(logEntry(LevelRX, "<<< "+value))
		if _, err := fmt.Fprintln(w, RegisterLine(i, value)); err != nil {
			return ioError("write backup", err)
		}
		if last > 0 {
			obs.Progress(float64(i) / last)
		} else {
			obs.Progress(1)
		}
	}
	return nil
}

// registersHeader - заголовок секции регистров для count регистров.
func registersHeader(count int) string {
	if count == DefaultLimits().Registers {
		return HeaderRegisters
	}
	return fmt.Sprintf("%s (TR0 to TR%d) ---", markerRegisters, count-1)
}

package lac1

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// errReadTimeout - чтение не вернуло данных за ReadTimeout.
var errReadTimeout = errors.New("read timeout")

// Conn - открытое соединение с LAC-1 после успешного рукопожатия.
// Принадлежит одной операции, между горутинами не делится.
type Conn struct {
	cfg     Config
	charset *Charset

	mu     sync.Mutex
	port   Port
	r      *bufio.Reader
	closed bool
}

// Handshake проверяет, что контроллер отвечает, на уже открытом канале:
// пауза Settle, ESC, пауза ResetWait, одно чтение до Limits.Handshake байт.
// Без '>' в ответе канал закрывается и возвращается ErrDeviceNotResponding.
func Handshake(ctx context.Context, port Port, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	cs, err := LookupCharset(cfg.Charset)
	if err != nil {
		port.Close()
		return nil, newError(KindConnectionUnavailable, cfg.Address(), err)
	}

	c := &Conn{
		cfg:     cfg,
		charset: cs,
		port:    port,
		r:       bufio.NewReader(timeoutReader{port}),
	}

	if err := c.handshake(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) handshake(ctx context.Context) error {
	t := c.cfg.Timing
	if err := c.port.SetReadTimeout(t.ReadTimeout); err != nil {
		return newError(KindConnectionUnavailable, c.cfg.Address(), err)
	}
	if err := sleep(ctx, t.Settle); err != nil {
		return ioError("ESC", err)
	}
	if err := c.write([]byte{esc}); err != nil {
		return ioError("ESC", err)
	}
	if err := sleep(ctx, t.ResetWait); err != nil {
		return ioError("ESC", err)
	}
	resp, err := c.capture(ctx, c.cfg.Limits.Handshake)
	if err != nil {
		return ioError("ESC", err)
	}
	c.cfg.logf("<< RX: %q", resp)
	if !bytes.ContainsRune(resp, prompt) {
		return newError(KindDeviceNotResponding, c.cfg.Address(), nil)
	}
	return nil
}

// Config возвращает итоговые параметры соединения.
func (c *Conn) Config() Config {
	return c.cfg
}

// Close закрывает канал. Повторный вызов ничего не делает.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}

// send кодирует и отправляет команду с завершающим CR.
func (c *Conn) send(ctx context.Context, cmd string, obs Observer) error {
	if err := ctx.Err(); err != nil {
		return ioError(cmd, err)
	}
	data, err := c.charset.Encode(frame(cmd))
	if err != nil {
		return ioError(cmd, err)
	}
	obs.Log(logEntry(LevelTX, ">>> "+cmd))
	if err := c.write(data); err != nil {
		return ioError(cmd, err)
	}
	return nil
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	c.cfg.logf(">> TX: %q", data)
	n, err := c.port.Write(data)
	if err != nil {
		return err
	}
	if n < len(data) {
		return io.ErrShortWrite
	}
	return nil
}

// capture читает до max байт; чтение, завершившееся по таймауту, означает
// конец ответа. Признака конца у TM-1/TK1 нет, поэтому захват best-effort.
func (c *Conn) capture(ctx context.Context, max int) ([]byte, error) {
	buf := make([]byte, max)
	n := 0
	for n < max {
		if err := ctx.Err(); err != nil {
			return buf[:n], err
		}
		m, err := c.r.Read(buf[n:])
		n += m
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				break
			}
			return buf[:n], err
		}
	}
	return buf[:n], nil
}

// readLine читает до '\n' включительно или до таймаута.
func (c *Conn) readLine(ctx context.Context) ([]byte, error) {
	var line []byte
	for {
		if err := ctx.Err(); err != nil {
			return line, err
		}
		b, err := c.r.ReadByte()
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				return line, nil
			}
			return line, err
		}
		line = append(line, b)
		if b == '\n' {
			return line, nil
		}
	}
}

// timeoutReader превращает пустое чтение в errReadTimeout, чтобы bufio.Reader
// не крутился на нулевых чтениях.
type timeoutReader struct {
	p Port
}

func (t timeoutReader) Read(b []byte) (int, error) {
	n, err := t.p.Read(b)
	if err == nil && n == 0 && len(b) > 0 {
		return 0, errReadTimeout
	}
	return n, err
}

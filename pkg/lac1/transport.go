package lac1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"go.bug.st/serial"
)

// Типы подключения (как в профилях подключения).
const (
	ConnectionCOM int32 = 0 // локальный COM/tty
	ConnectionTCP int32 = 6 // прозрачный TCP-мост (ser2net и т.п.)
)

const (
	defaultBaudRate = 9600
	dialTimeout     = 3 * time.Second
)

// Config определяет параметры подключения к LAC-1.
type Config struct {
	ConnectionType int32            `json:"connectionType"`      // 0 - COM, 6 - TCP
	ComName        string           `json:"comName,omitempty"`   // COM Port Name
	BaudRate       int32            `json:"baudRate,omitempty"`  // COM Speed
	IPAddress      string           `json:"ipAddress,omitempty"` // TCP IP
	TCPPort        int32            `json:"tcpPort,omitempty"`   // TCP Port
	Charset        string           `json:"charset,omitempty"`   // кодировка текста контроллера
	Timing         Timing           `json:"timing"`
	Limits         Limits           `json:"limits"`
	Logger         func(msg string) `json:"-"`
}

// Port - канал до контроллера. Read по истечении таймаута возвращает 0 байт
// без ошибки, как go.bug.st/serial.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = defaultBaudRate
	}
	c.Timing = c.Timing.withDefaults()
	c.Limits = c.Limits.withDefaults()
	return c
}

// Address возвращает человекочитаемый адрес подключения.
func (c Config) Address() string {
	if c.ConnectionType == ConnectionTCP {
		return net.JoinHostPort(c.IPAddress, strconv.Itoa(int(c.TCPPort)))
	}
	return c.ComName
}

func (c Config) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger(fmt.Sprintf(format, args...))
	}
}

// Open открывает канал, выполняет рукопожатие и возвращает готовое соединение.
func Open(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	if _, err := LookupCharset(cfg.Charset); err != nil {
		return nil, newError(KindConnectionUnavailable, cfg.Address(), err)
	}
	port, err := openPort(ctx, cfg)
	if err != nil {
		return nil, newError(KindConnectionUnavailable, cfg.Address(), err)
	}
	return Handshake(ctx, port, cfg)
}

func openPort(ctx context.Context, cfg Config) (Port, error) {
	switch cfg.ConnectionType {
	case ConnectionCOM:
		if cfg.ComName == "" {
			return nil, errors.New("не указан COM-порт")
		}
		mode := &serial.Mode{
			BaudRate: int(cfg.BaudRate),
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(cfg.ComName, mode)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия COM-порта: %w", err)
		}
		cfg.logf("COM %s открыт (%d 8N1)", cfg.ComName, cfg.BaudRate)
		return port, nil

	case ConnectionTCP:
		d := net.Dialer{Timeout: dialTimeout}
		conn, err := d.DialContext(ctx, "tcp", cfg.Address())
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения TCP: %w", err)
		}
		cfg.logf("TCP %s подключен", cfg.Address())
		return &tcpPort{conn: conn}, nil

	default:
		return nil, fmt.Errorf("неизвестный тип подключения: %d", cfg.ConnectionType)
	}
}

// tcpPort приводит net.Conn к поведению последовательного порта:
// таймаут чтения - это 0 байт без ошибки.
type tcpPort struct {
	conn    net.Conn
	timeout time.Duration
}

func (p *tcpPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *tcpPort) Read(b []byte) (int, error) {
	if p.timeout > 0 {
		if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
			return 0, err
		}
	}
	n, err := p.conn.Read(b)
	var ne net.Error
	if err != nil && errors.As(err, &ne) && ne.Timeout() {
		return n, nil
	}
	return n, err
}

func (p *tcpPort) Write(b []byte) (int, error) {
	if err := p.conn.SetWriteDeadline(time.Now().Add(dialTimeout)); err != nil {
		return 0, err
	}
	return p.conn.Write(b)
}

func (p *tcpPort) Close() error {
	return p.conn.Close()
}

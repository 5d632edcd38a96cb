// Package simulator - программная модель контроллера LAC-1 для тестов и
// режима --simulate. Реализует lac1.Port без реального порта.
package simulator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrWriteFailed возвращается из Write после исчерпания FailWritesAfter.
var ErrWriteFailed = errors.New("simulator: write failed")

// Options настраивает поведение устройства.
type Options struct {
	// Silent - устройство ничего не отвечает (нет приглашения).
	Silent bool
	// FailWritesAfter > 0: запись команды с этим номером (с 1) и все
	// последующие завершаются ошибкой.
	FailWritesAfter int
	// Registers - число регистров, по умолчанию 512.
	Registers int
}

// Device - модель LAC-1: таблица макросов, параметры и регистры.
type Device struct {
	mu sync.Mutex

	opts      Options
	macros    map[int]string
	params    []string
	registers []int64

	line     []byte
	out      bytes.Buffer
	commands []string
	closed   bool
	timeout  time.Duration
}

// New создаёт устройство с пустой таблицей макросов и нулевыми регистрами.
func New(opts Options) *Device {
	if opts.Registers <= 0 {
		opts.Registers = 512
	}
	return &Device{
		opts:      opts,
		macros:    make(map[int]string),
		registers: make([]int64, opts.Registers),
		params: []string{
			"SP1=9600",
			"SP2=1",
			"SP3=0",
		},
	}
}

// NewDemo возвращает устройство с несколькими макросами и регистрами,
// чтобы резервная копия не была пустой.
func NewDemo() *Device {
	d := New(Options{})
	d.SetMacro(0, "MD0,MF,RM,SQ2000,AL0,AR10")
	d.SetMacro(10, "MD10,PM,MN,SA1000,SV200000,MA4000,GO")
	d.SetMacro(20, "MD20,WA500,MC10")
	d.SetRegister(0, 100)
	d.SetRegister(5, 1234)
	d.SetRegister(511, 42)
	return d
}

// SetMacro задаёт макрос n; def - полная строка определения (MD<n>,...).
func (d *Device) SetMacro(n int, def string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.macros[n] = def
}

// Macro возвращает определение макроса n.
func (d *Device) Macro(n int) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	def, ok := d.macros[n]
	return def, ok
}

func (d *Device) SetRegister(i int, v int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= 0 && i < len(d.registers) {
		d.registers[i] = v
	}
}

func (d *Device) Register(i int) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.registers) {
		return 0
	}
	return d.registers[i]
}

// Commands возвращает принятые команды (без CR) в порядке поступления.
// ESC записывается как "\x1b".
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// Reopen снова делает порт доступным после Close, сохраняя макросы и
// регистры. Неотправленный ответ и недописанная команда сбрасываются.
func (d *Device) Reopen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = false
	d.line = d.line[:0]
	d.out.Reset()
}

// Closed сообщает, был ли порт закрыт.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// SetReadTimeout запоминает таймаут; ответы формируются сразу, поэтому
// пустое чтение возвращается без ожидания.
func (d *Device) SetReadTimeout(t time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = t
	return nil
}

// Read отдаёт накопленный ответ. Нет данных - 0 байт без ошибки, как
// последовательный порт по таймауту.
func (d *Device) Read(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, io.ErrClosedPipe
	}
	if d.out.Len() == 0 {
		return 0, nil
	}
	return d.out.Read(b)
}

// Write принимает байты команд; команда исполняется по CR.
func (d *Device) Write(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, io.ErrClosedPipe
	}
	for i, c := range b {
		switch c {
		case 0x1B:
			if err := d.accept("\x1b"); err != nil {
				return i, err
			}
			d.line = d.line[:0]
			d.respond("\r\n>")
		case '\r':
			cmd := string(d.line)
			d.line = d.line[:0]
			if err := d.accept(cmd); err != nil {
				return i, err
			}
			d.exec(cmd)
		case '\n':
		default:
			d.line = append(d.line, c)
		}
	}
	return len(b), nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Device) accept(cmd string) error {
	if d.opts.FailWritesAfter > 0 && len(d.commands)+1 >= d.opts.FailWritesAfter {
		return ErrWriteFailed
	}
	d.commands = append(d.commands, cmd)
	return nil
}

func (d *Device) respond(s string) {
	if d.opts.Silent {
		return
	}
	d.out.WriteString(s)
}

func (d *Device) exec(cmd string) {
	switch {
	case cmd == "TM-1":
		d.respond(d.macroTable() + "\r\n>")
	case cmd == "TK1":
		d.respond(strings.Join(d.params, "\r\n") + "\r\n>")
	case strings.HasPrefix(cmd, "TR"):
		i, err := strconv.Atoi(cmd[2:])
		if err != nil || i < 0 || i >= len(d.registers) {
			d.respond("?\r\n")
			return
		}
		d.respond(strconv.FormatInt(d.registers[i], 10) + "\r\n")
	case strings.HasPrefix(cmd, "AL"):
		d.load(cmd)
	case strings.HasPrefix(cmd, "MD"):
		if n, ok := macroNumber(cmd); ok {
			d.macros[n] = cmd
		}
	}
}

// load исполняет AL<v>,AR<n>.
func (d *Device) load(cmd string) {
	al, ar, ok := strings.Cut(cmd, ",")
	if !ok || !strings.HasPrefix(ar, "AR") {
		return
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(al, "AL"), 10, 64)
	if err != nil {
		return
	}
	i, err := strconv.Atoi(strings.TrimPrefix(ar, "AR"))
	if err != nil || i < 0 || i >= len(d.registers) {
		return
	}
	d.registers[i] = v
}

func (d *Device) macroTable() string {
	nums := make([]int, 0, len(d.macros))
	for n := range d.macros {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	lines := make([]string, 0, len(nums))
	for _, n := range nums {
		lines = append(lines, d.macros[n])
	}
	return strings.Join(lines, "\r\n")
}

func macroNumber(def string) (int, bool) {
	rest := strings.TrimPrefix(def, "MD")
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// String - краткое описание для журналов.
func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fmt.Sprintf("LAC-1 simulator (%d macros, %d registers)", len(d.macros), len(d.registers))
}

package lac1

import (
	"context"
	"time"
)

// Timing задаёт все паузы протокола. Контроллер не сообщает о готовности,
// поэтому обмен держится на фиксированных задержках.
type Timing struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout" json:"readTimeout" yaml:"read_timeout"`                      // таймаут одного чтения
	Settle            time.Duration `mapstructure:"settle" json:"settle" yaml:"settle"`                                      // пауза после открытия порта
	ResetWait         time.Duration `mapstructure:"reset_wait" json:"resetWait" yaml:"reset_wait"`                           // пауза после ESC
	DumpWait          time.Duration `mapstructure:"dump_wait" json:"dumpWait" yaml:"dump_wait"`                              // пауза после TM-1/TK1
	RegisterPace      time.Duration `mapstructure:"register_pace" json:"registerPace" yaml:"register_pace"`                  // пауза после TR<n>
	MacroPace         time.Duration `mapstructure:"macro_pace" json:"macroPace" yaml:"macro_pace"`                           // пауза после строки макроса
	RegisterWritePace time.Duration `mapstructure:"register_write_pace" json:"registerWritePace" yaml:"register_write_pace"` // пауза после AL..,AR..
}

// DefaultTiming - задержки, с которыми LAC-1 успевает отвечать.
func DefaultTiming() Timing {
	return Timing{
		ReadTimeout:       1 * time.Second,
		Settle:            2 * time.Second,
		ResetWait:         500 * time.Millisecond,
		DumpWait:          500 * time.Millisecond,
		RegisterPace:      50 * time.Millisecond,
		MacroPace:         100 * time.Millisecond,
		RegisterWritePace: 50 * time.Millisecond,
	}
}

// withDefaults подставляет значения по умолчанию только для ReadTimeout:
// нулевые паузы допустимы (симулятор), нулевой таймаут чтения - нет.
func (t Timing) withDefaults() Timing {
	if t.ReadTimeout <= 0 {
		t.ReadTimeout = DefaultTiming().ReadTimeout
	}
	return t
}

// Limits задаёт объёмы чтения.
type Limits struct {
	Handshake     int `mapstructure:"handshake" json:"handshake" yaml:"handshake"`
	MacroDump     int `mapstructure:"macro_dump" json:"macroDump" yaml:"macro_dump"`
	ParameterDump int `mapstructure:"parameter_dump" json:"parameterDump" yaml:"parameter_dump"`
	Registers     int `mapstructure:"registers" json:"registers" yaml:"registers"`
}

func DefaultLimits() Limits {
	return Limits{
		Handshake:     100,
		MacroDump:     8192,
		ParameterDump: 4096,
		Registers:     512,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Handshake <= 0 {
		l.Handshake = d.Handshake
	}
	if l.MacroDump <= 0 {
		l.MacroDump = d.MacroDump
	}
	if l.ParameterDump <= 0 {
		l.ParameterDump = d.ParameterDump
	}
	if l.Registers <= 0 {
		l.Registers = d.Registers
	}
	return l
}

// sleep ждёт d или отмены контекста.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package lac1

import (
	"strconv"
	"strings"
)

const (
	esc    = 0x1B
	cr     = '\r'
	prompt = '>'

	cmdDumpMacros = "TM-1"
	cmdDumpParams = "TK1"

	macroPrefix    = "MD"
	registerPrefix = "TR"
)

// Заголовки секций файла резервной копии.
const (
	HeaderMacros     = "--- MACROS (TM-1) ---"
	HeaderParameters = "--- SYSTEM PARAMETERS (TK1) ---"
	HeaderRegisters  = "--- REGISTERS (TR0 to TR511) ---"

	markerMacros     = "--- MACROS"
	markerParameters = "--- SYSTEM PARAMETERS"
	markerRegisters  = "--- REGISTERS"
)

// frame добавляет к команде завершающий CR.
func frame(cmd string) string {
	return cmd + string(cr)
}

// ReadRegisterCmd - TR<n>
func ReadRegisterCmd(index int) string {
	return registerPrefix + strconv.Itoa(index)
}

// LoadRegisterCmd - AL<v>,AR<n>: загрузить значение в регистр.
func LoadRegisterCmd(value, index string) string {
	return "AL" + value + ",AR" + index
}

// MacroCmd убирает эхо приглашения из строки макроса.
func MacroCmd(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), string(prompt)))
}

// RegisterLine форматирует строку секции REGISTERS.
func RegisterLine(index int, value string) string {
	return ReadRegisterCmd(index) + ": " + value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

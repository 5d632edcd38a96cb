package lac1

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Section - секция файла резервной копии и одновременно режим восстановления.
type Section int

const (
	SectionNone Section = iota
	SectionMacros
	SectionParameters
	SectionRegisters
)

func (s Section) String() string {
	switch s {
	case SectionMacros:
		return "macros"
	case SectionParameters:
		return "system parameters"
	case SectionRegisters:
		return "registers"
	default:
		return "none"
	}
}

// LineKind - результат классификации строки.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineHeader
	LineMacro
	LineRegisterWrite
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineMacro:
		return "macro"
	case LineRegisterWrite:
		return "register-write"
	default:
		return "ignored"
	}
}

// Line - классифицированная строка файла.
type Line struct {
	Kind    LineKind
	Section Section // для LineHeader - новая секция, иначе текущая
	Text    string  // строка без пробелов по краям
	Command string  // команда для LineMacro и LineRegisterWrite (без CR)
	// Только для LineRegisterWrite.
	Register string
	Value    string
}

// ClassifyLine определяет, что делать со строкой в режиме mode.
// Заголовок секции распознаётся в любом режиме. Строка регистра
// воспроизводится, только если и номер, и значение - десятичные цифры.
func ClassifyLine(mode Section, raw string) Line {
	text := strings.TrimSpace(raw)
	l := Line{Kind: LineIgnored, Section: mode, Text: text}

	switch {
	case strings.HasPrefix(text, markerMacros):
		l.Kind, l.Section = LineHeader, SectionMacros
		return l
	case strings.HasPrefix(text, markerParameters):
		l.Kind, l.Section = LineHeader, SectionParameters
		return l
	case strings.HasPrefix(text, markerRegisters):
		l.Kind, l.Section = LineHeader, SectionRegisters
		return l
	}

	if text == "" {
		return l
	}

	switch mode {
	case SectionMacros:
		if !strings.HasPrefix(text, macroPrefix) && !strings.HasPrefix(text, string(prompt)) {
			return l
		}
		// одиночное приглашение ">" уходит пустой командой (только CR)
		l.Kind, l.Command = LineMacro, MacroCmd(text)

	case SectionRegisters:
		if !strings.HasPrefix(text, registerPrefix) {
			return l
		}
		head, tail, ok := strings.Cut(text, ":")
		if !ok {
			return l
		}
		index := strings.TrimSpace(strings.TrimPrefix(head, registerPrefix))
		value := strings.TrimSpace(tail)
		if !isDigits(index) || !isDigits(value) {
			return l
		}
		l.Kind = LineRegisterWrite
		l.Register, l.Value = index, value
		l.Command = LoadRegisterCmd(value, index)
	}
	return l
}

// isCandidate - строка похожа на команду; используется только для оценки
// прогресса, поэтому проверка грубая.
func isCandidate(text string) bool {
	return strings.HasPrefix(text, macroPrefix) ||
		strings.HasPrefix(text, string(prompt)) ||
		strings.HasPrefix(text, registerPrefix)
}

// Script - файл, разобранный за один проход.
type Script struct {
	Lines      []Line
	Candidates int // знаменатель прогресса
}

// Plan классифицирует строки файла, переключая режим по заголовкам.
func Plan(lines []string) Script {
	s := Script{Lines: make([]Line, 0, len(lines))}
	mode := SectionNone
	for _, raw := range lines {
		l := ClassifyLine(mode, raw)
		if l.Kind == LineHeader {
			mode = l.Section
		}
		if isCandidate(l.Text) {
			s.Candidates++
		}
		s.Lines = append(s.Lines, l)
	}
	return s
}

// Commands возвращает команды, которые будут отправлены, по порядку.
func (s Script) Commands() []string {
	var res []string
	for _, l := range s.Lines {
		if l.Kind == LineMacro || l.Kind == LineRegisterWrite {
			res = append(res, l.Command)
		}
	}
	return res
}

// Fraction - прогресс после processed обработанных строк, в пределах [0,1].
func (s Script) Fraction(processed int) float64 {
	if s.Candidates <= 0 {
		return 1
	}
	f := float64(processed) / float64(s.Candidates)
	if f > 1 {
		return 1
	}
	return f
}

// ReadLines читает текст целиком; концом строки считается \n, \r\n или \r.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(scanAnyEOL)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func scanAnyEOL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

package lac1

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const defaultCharset = "utf-8"

// Charset перекодирует текст контроллера. Байты, которые не удаётся
// декодировать, молча отбрасываются.
type Charset struct {
	name string
	enc  encoding.Encoding // nil для utf-8
}

// LookupCharset находит кодировку по метке ("utf-8", "windows-1252", "ibm866"...).
func LookupCharset(label string) (*Charset, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultCharset
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("неизвестная кодировка %q", label)
	}
	if name == defaultCharset {
		return &Charset{name: name}, nil
	}
	return &Charset{name: name, enc: enc}, nil
}

// UTF8 - кодировка по умолчанию.
func UTF8() *Charset {
	return &Charset{name: defaultCharset}
}

func (c *Charset) Name() string {
	return c.name
}

func dropIllFormed() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	}))
}

// Decode переводит байты устройства в строку, выбрасывая всё, что не декодируется.
func (c *Charset) Decode(b []byte) string {
	if c == nil || c.enc == nil {
		s, _, err := transform.Bytes(dropIllFormed(), b)
		if err != nil {
			return strings.ToValidUTF8(string(b), "")
		}
		return string(s)
	}
	t := transform.Chain(c.enc.NewDecoder(), dropIllFormed())
	s, _, err := transform.Bytes(t, b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "")
	}
	return string(s)
}

// Encode переводит строку в кодировку устройства.
func (c *Charset) Encode(s string) ([]byte, error) {
	if c == nil || c.enc == nil {
		return []byte(s), nil
	}
	res, _, err := transform.Bytes(encoding.ReplaceUnsupported(c.enc.NewEncoder()), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования в %s: %w", c.name, err)
	}
	return res, nil
}

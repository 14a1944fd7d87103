package savestate

import (
	"bytes"
	stderrors "errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/wowa/pkg/errors"
)

// Document is an evaluated SavedVariables file.
type Document struct {
	globals *Table
}

// Global returns the value assigned to a global name.
func (d *Document) Global(name string) (Value, bool) {
	return d.globals.Get(name)
}

// Globals returns every assigned global in source order.
func (d *Document) Globals() []Entry {
	return d.globals.Entries()
}

// Parse reads and evaluates a SavedVariables file. The filename is used in
// error messages only.
func Parse(filename string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "failed to read %s", filename)
	}
	return ParseBytes(filename, data)
}

// ParseString evaluates source held in a string.
func ParseString(filename, src string) (*Document, error) {
	return ParseBytes(filename, []byte(src))
}

// ParseBytes evaluates source held in a byte slice.
func ParseBytes(filename string, data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	ast, err := parser.ParseBytes(filename, data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "failed to parse %s", filename).
			WithDetail("file", filename)
	}

	doc := &Document{globals: NewTable()}
	for _, a := range ast.Assignments {
		v, err := evalValue(a.Value)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "invalid value for %s at %s", a.Name, a.Pos).
				WithDetail("file", filename)
		}
		doc.globals.Set(String(a.Name), v)
	}
	return doc, nil
}

func evalValue(v *valueAST) (Value, error) {
	switch {
	case v.Nil:
		return Nil, nil
	case v.True:
		return Bool(true), nil
	case v.False:
		return Bool(false), nil
	case v.Number != nil:
		n, err := parseNumber(*v.Number)
		if err != nil {
			return Nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "invalid number %q at %s", *v.Number, v.Pos)
		}
		return Number(n), nil
	case v.Str != nil:
		s, err := unquote(*v.Str)
		if err != nil {
			return Nil, errors.Wrapf(err, errors.ErrMalformedSaveState, "invalid string at %s", v.Pos)
		}
		return String(s), nil
	case v.Long != nil:
		return String(unquoteLong(*v.Long)), nil
	case v.Table != nil:
		return evalTable(v.Table)
	}
	return Nil, nil
}

func evalTable(t *tableAST) (Value, error) {
	table := NewTable()
	for _, f := range t.Fields {
		val, err := evalValue(f.Value)
		if err != nil {
			return Nil, err
		}
		switch {
		case f.Key != nil:
			key, err := evalValue(f.Key)
			if err != nil {
				return Nil, err
			}
			if key.IsNil() {
				return Nil, errors.New(errors.ErrMalformedSaveState, "table index is nil")
			}
			table.Set(key, val)
		case f.Name != nil:
			table.Set(String(*f.Name), val)
		default:
			table.Append(val)
		}
	}
	return TableValue(table), nil
}

func parseNumber(s string) (float64, error) {
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		if neg {
			return -float64(u), nil
		}
		return float64(u), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	var numErr *strconv.NumError
	if stderrors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		// overflow yields +-Inf, which is what the client meant
		return f, nil
	}
	return f, err
}

// unquoteLong strips the long bracket delimiters. A newline directly after
// the opening bracket is not part of the string, and every CR, CRLF or LFCR
// in the body reads as LF.
func unquoteLong(s string) string {
	level := strings.Index(s[1:], "[")
	body := s[level+2 : len(s)-level-2]
	switch {
	case strings.HasPrefix(body, "\r\n"), strings.HasPrefix(body, "\n\r"):
		body = body[2:]
	case strings.HasPrefix(body, "\n"), strings.HasPrefix(body, "\r"):
		body = body[1:]
	}
	if strings.IndexByte(body, '\r') < 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\r' && c != '\n' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('\n')
		if i+1 < len(body) && body[i+1] != c && (body[i+1] == '\r' || body[i+1] == '\n') {
			i++
		}
	}
	return b.String()
}

// unquote decodes a quoted Lua string with its escape sequences.
func unquote(s string) (string, error) {
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New(errors.ErrMalformedSaveState, "unfinished escape sequence")
		}
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\', '"', '\'':
			b.WriteByte(e)
		case '\n':
			b.WriteByte('\n')
			if i+1 < len(body) && body[i+1] == '\r' {
				i++
			}
		case '\r':
			b.WriteByte('\n')
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 >= len(body) {
				return "", errors.New(errors.ErrMalformedSaveState, "invalid hex escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", errors.Wrap(err, errors.ErrMalformedSaveState, "invalid hex escape")
			}
			b.WriteByte(byte(v))
			i += 2
		case 'z':
			for i+1 < len(body) && strings.ContainsRune(" \t\n\r\f\v", rune(body[i+1])) {
				i++
			}
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			if i+1 >= len(body) || body[i+1] != '{' || end < 0 {
				return "", errors.New(errors.ErrMalformedSaveState, "invalid unicode escape")
			}
			v, err := strconv.ParseUint(body[i+2:i+end], 16, 32)
			if err != nil || v > utf8.MaxRune {
				return "", errors.New(errors.ErrMalformedSaveState, "invalid unicode escape")
			}
			b.WriteRune(rune(v))
			i += end
		default:
			if e < '0' || e > '9' {
				return "", errors.Newf(errors.ErrMalformedSaveState, "invalid escape sequence \\%c", e)
			}
			j := i
			for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '9' {
				j++
			}
			v, err := strconv.Atoi(body[i:j])
			if err != nil || v > 255 {
				return "", errors.New(errors.ErrMalformedSaveState, "decimal escape too large")
			}
			b.WriteByte(byte(v))
			i = j - 1
		}
	}
	return b.String(), nil
}

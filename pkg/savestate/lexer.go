package savestate

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token types produced by luaLexer. Whitespace and comments are dropped
// while scanning and never reach the parser.
const (
	tokenIdent lexer.TokenType = iota + 1
	tokenNumber
	tokenString
	tokenLongString
	tokenPunct
)

var luaSymbols = map[string]lexer.TokenType{
	"EOF":        lexer.EOF,
	"Ident":      tokenIdent,
	"Number":     tokenNumber,
	"String":     tokenString,
	"LongString": tokenLongString,
	"Punct":      tokenPunct,
}

// luaDefinition scans the literal subset of Lua in a single pass over the
// input. SavedVariables files reach tens of megabytes, so it avoids the
// per-token regular expressions of participle's generic lexers.
type luaDefinition struct{}

var luaLexer lexer.Definition = luaDefinition{}

func (luaDefinition) Symbols() map[string]lexer.TokenType { return luaSymbols }

func (d luaDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(data))
}

func (d luaDefinition) LexBytes(filename string, input []byte) (lexer.Lexer, error) {
	return d.LexString(filename, string(input))
}

func (luaDefinition) LexString(filename, input string) (lexer.Lexer, error) {
	return &luaScanner{src: input, filename: filename, line: 1}, nil
}

type luaScanner struct {
	src       string
	filename  string
	pos       int
	line      int
	lineStart int
}

func (s *luaScanner) position(offset int) lexer.Position {
	return lexer.Position{
		Filename: s.filename,
		Offset:   offset,
		Line:     s.line,
		Column:   offset - s.lineStart + 1,
	}
}

func (s *luaScanner) errorf(offset int, format string, args ...interface{}) error {
	return &lexer.Error{Msg: fmt.Sprintf(format, args...), Pos: s.position(offset)}
}

// advance moves to end, counting the newlines in between.
func (s *luaScanner) advance(end int) {
	for i := s.pos; i < end; i++ {
		if s.src[i] == '\n' {
			s.line++
			s.lineStart = i + 1
		}
	}
	s.pos = end
}

func (s *luaScanner) Next() (lexer.Token, error) {
	if err := s.skipSpaceAndComments(); err != nil {
		return lexer.Token{}, err
	}
	if s.pos >= len(s.src) {
		return lexer.EOFToken(s.position(s.pos)), nil
	}

	start := s.pos
	pos := s.position(start)
	var (
		typ lexer.TokenType
		end int
		err error
	)

	switch c := s.src[start]; {
	case c == '[':
		if level, ok := longOpen(s.src, start); ok {
			typ = tokenLongString
			end, err = s.longEnd(start, level)
		} else {
			typ, end = tokenPunct, start+1
		}
	case c == '"' || c == '\'':
		typ = tokenString
		end, err = s.stringEnd(start)
	case isDigit(c) || (c == '.' || c == '-') && startsNumber(s.src, start):
		typ, end = tokenNumber, numberEnd(s.src, start)
	case isIdentStart(c):
		end = start + 1
		for end < len(s.src) && isIdentPart(s.src[end]) {
			end++
		}
		typ = tokenIdent
	case strings.IndexByte("={}],;", c) >= 0:
		typ, end = tokenPunct, start+1
	default:
		return lexer.Token{}, s.errorf(start, "unexpected character %q", c)
	}
	if err != nil {
		return lexer.Token{}, err
	}

	s.advance(end)
	return lexer.Token{Type: typ, Value: s.src[start:end], Pos: pos}, nil
}

func (s *luaScanner) skipSpaceAndComments() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.pos++
			s.line++
			s.lineStart = s.pos
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.pos++
		case c == '-' && strings.HasPrefix(s.src[s.pos:], "--"):
			body := s.pos + 2
			if level, ok := longOpen(s.src, body); ok {
				end, err := s.longEnd(body, level)
				if err != nil {
					return err
				}
				s.advance(end)
				continue
			}
			end := strings.IndexByte(s.src[body:], '\n')
			if end < 0 {
				s.pos = len(s.src)
				return nil
			}
			s.pos = body + end
		default:
			return nil
		}
	}
	return nil
}

// longOpen reports whether a long bracket opens at i and returns its level.
func longOpen(src string, i int) (int, bool) {
	if i >= len(src) || src[i] != '[' {
		return 0, false
	}
	j := i + 1
	for j < len(src) && src[j] == '=' {
		j++
	}
	if j < len(src) && src[j] == '[' {
		return j - i - 1, true
	}
	return 0, false
}

// longEnd returns the offset just past the bracket closing the one at start.
func (s *luaScanner) longEnd(start, level int) (int, error) {
	closing := "]" + strings.Repeat("=", level) + "]"
	body := start + level + 2
	idx := strings.Index(s.src[body:], closing)
	if idx < 0 {
		return 0, s.errorf(start, "unfinished long string")
	}
	return body + idx + len(closing), nil
}

// stringEnd returns the offset just past the quoted string at start. Escape
// sequences are validated later by unquote.
func (s *luaScanner) stringEnd(start int) (int, error) {
	quote := s.src[start]
	for i := start + 1; i < len(s.src); i++ {
		switch c := s.src[i]; c {
		case quote:
			return i + 1, nil
		case '\n':
			return 0, s.errorf(start, "unfinished string")
		case '\\':
			i++
			if i < len(s.src) && s.src[i] == 'z' {
				for i+1 < len(s.src) && isSpace(s.src[i+1]) {
					i++
				}
			}
		}
	}
	return 0, s.errorf(start, "unfinished string")
}

func startsNumber(src string, i int) bool {
	if src[i] == '-' {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
	}
	return i < len(src) && isDigit(src[i])
}

// numberEnd scans -?(0x<hex> | <digits>[.<digits>] | .<digits>)[e[+-]<digits>].
func numberEnd(src string, i int) int {
	if src[i] == '-' {
		i++
	}
	if i+1 < len(src) && src[i] == '0' && (src[i+1] == 'x' || src[i+1] == 'X') {
		i += 2
		for i < len(src) && isHexDigit(src[i]) {
			i++
		}
		return i
	}
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool   { return isDigit(c) || (c|0x20) >= 'a' && (c|0x20) <= 'f' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20) >= 'a' && (c|0x20) <= 'z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
func isSpace(c byte) bool      { return strings.IndexByte(" \t\n\r\f\v", c) >= 0 }

package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/util"
)

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	diag      *util.Reporter
}

func NewLexer(source []rune, fileIndex int, diag *util.Reporter) *Lexer {
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, diag: diag,
	}
}

// Next returns the next token. Malformed literals are reported and still
// returned; characters that start no token are reported and skipped.
func (l *Lexer) Next() token.Token {
	for {
		l.skipWhitespaceAndComments()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine)
		}

		ch := l.peek()
		if isLetter(ch) || ch == '_' {
			l.advance()
			return l.identifierOrKeyword(startPos, startCol, startLine)
		}
		if isDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine)
		}

		l.advance()
		switch ch {
		case '(': return l.makeToken(token.LParen, "", startPos, startCol, startLine)
		case ')': return l.makeToken(token.RParen, "", startPos, startCol, startLine)
		case '{': return l.makeToken(token.LBrace, "", startPos, startCol, startLine)
		case '}': return l.makeToken(token.RBrace, "", startPos, startCol, startLine)
		case '[': return l.makeToken(token.LBracket, "", startPos, startCol, startLine)
		case ']': return l.makeToken(token.RBracket, "", startPos, startCol, startLine)
		case ';': return l.makeToken(token.Semi, "", startPos, startCol, startLine)
		case ',': return l.makeToken(token.Comma, "", startPos, startCol, startLine)
		case ':': return l.makeToken(token.Colon, "", startPos, startCol, startLine)
		case '?': return l.makeToken(token.Question, "", startPos, startCol, startLine)
		case '.': return l.makeToken(token.Dot, "", startPos, startCol, startLine)
		case '*': return l.makeToken(token.Star, "", startPos, startCol, startLine)
		case '/': return l.makeToken(token.Slash, "", startPos, startCol, startLine)
		case '%': return l.makeToken(token.Rem, "", startPos, startCol, startLine)
		case '!': return l.matchThen('=', token.Neq, token.Not, startPos, startCol, startLine)
		case '=': return l.matchThen('=', token.EqEq, token.Eq, startPos, startCol, startLine)
		case '<': return l.matchThen('=', token.Lte, token.Lt, startPos, startCol, startLine)
		case '>': return l.matchThen('=', token.Gte, token.Gt, startPos, startCol, startLine)
		case '&': return l.matchThen('&', token.AndAnd, token.And, startPos, startCol, startLine)
		case '|': return l.matchThen('|', token.OrOr, token.Or, startPos, startCol, startLine)
		case '+': return l.matchThen('+', token.Inc, token.Plus, startPos, startCol, startLine)
		case '-':
			if l.match('>') {
				return l.makeToken(token.Arrow, "", startPos, startCol, startLine)
			}
			return l.matchThen('-', token.Dec, token.Minus, startPos, startCol, startLine)
		case '"':
			return l.stringLiteral(startPos, startCol, startLine)
		case '\'':
			return l.charLiteral(startPos, startCol, startLine)
		}

		l.diag.Error(l.makeToken(token.EOF, "", startPos, startCol, startLine), "invalid character '%c'", ch)
	}
}

func isLetter(ch rune) bool { return ch < unicode.MaxASCII && unicode.IsLetter(ch) }
func isDigit(ch rune) bool  { return ch >= '0' && ch <= '9' }

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) matchThen(expected rune, thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.advance()
		case '/':
			if l.peekNext() == '*' {
				l.blockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) blockComment() {
	startTok := l.makeToken(token.EOF, "", l.pos, l.column, l.line)
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.diag.Error(startTok, "premature end of comment")
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for isLetter(l.peek()) || isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Ident, value, startPos, startCol, startLine)

	if tokType, isKeyword := token.KeywordMap[value]; isKeyword {
		tok.Type = tokType
		tok.Value = ""
	}
	return tok
}

// numberLiteral scans a decimal constant. The value must fit in a 32-bit
// signed integer.
func (l *Lexer) numberLiteral(startPos, startCol, startLine int) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	valueStr := string(l.source[startPos:l.pos])
	tok := l.makeToken(token.Number, valueStr, startPos, startCol, startLine)

	val, err := strconv.ParseInt(valueStr, 10, 32)
	if err != nil {
		l.diag.Error(tok, "integer constant too large")
		tok.Value = "0"
		return tok
	}
	tok.Value = strconv.FormatInt(val, 10)
	return tok
}

// scanQuoted collects the raw text up to the closing quote. A backslash
// always takes the next character with it. It reports false if a newline or
// the end of input comes first.
func (l *Lexer) scanQuoted(quote rune) (string, bool) {
	var sb strings.Builder
	for !l.isAtEnd() && l.peek() != '\n' {
		c := l.advance()
		if c == quote {
			return sb.String(), true
		}
		sb.WriteRune(c)
		if c == '\\' && !l.isAtEnd() && l.peek() != '\n' {
			sb.WriteRune(l.advance())
		}
	}
	return sb.String(), false
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) token.Token {
	raw, ok := l.scanQuoted('"')
	tok := l.makeToken(token.String, "", startPos, startCol, startLine)
	if !ok {
		l.diag.Error(tok, "premature end of string constant")
		return tok
	}
	value, msg := decodeEscapes(raw)
	if msg != "" {
		l.diag.Error(tok, msg)
	}
	tok.Value = value
	return tok
}

// charLiteral produces a Character token whose value is the decimal code of
// the character.
func (l *Lexer) charLiteral(startPos, startCol, startLine int) token.Token {
	raw, ok := l.scanQuoted('\'')
	tok := l.makeToken(token.Character, "0", startPos, startCol, startLine)
	if !ok {
		l.diag.Error(tok, "premature end of character constant")
		return tok
	}
	value, msg := decodeEscapes(raw)
	switch {
	case msg != "":
		l.diag.Error(tok, msg)
	case len(value) == 0:
		l.diag.Error(tok, "empty character constant")
	case len(value) != 1:
		l.diag.Error(tok, "multi-character character constant")
	default:
		tok.Value = strconv.Itoa(int(int8(value[0])))
	}
	return tok
}

var simpleEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'b': '\b', 'f': '\f', 'v': '\v', 'a': '\a',
	'\\': '\\', '\'': '\'', '"': '"', '?': '?',
}

// decodeEscapes turns the body of a literal into its bytes. On failure it
// returns the diagnostic to report.
func decodeEscapes(raw string) (string, string) {
	var out []byte
	s := []byte(raw)
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", "unknown escape sequence"
		}
		c := s[i]
		if b, ok := simpleEscapes[c]; ok {
			out = append(out, b)
			continue
		}

		val, digits := 0, 0
		switch {
		case c >= '0' && c <= '7':
			for digits < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
				val = val*8 + int(s[i]-'0')
				i++
				digits++
			}
		case c == 'x':
			i++
			for i < len(s) && isHex(s[i]) {
				val = val*16 + hexValue(s[i])
				if val > 0xff {
					return "", "escape sequence out of range"
				}
				i++
				digits++
			}
			if digits == 0 {
				return "", "unknown escape sequence"
			}
		default:
			return "", "unknown escape sequence"
		}
		if val > 0xff {
			return "", "escape sequence out of range"
		}
		out = append(out, byte(val))
		i--
	}
	return string(out), ""
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) int {
	switch {
	case c >= 'a':
		return int(c-'a') + 10
	case c >= 'A':
		return int(c-'A') + 10
	}
	return int(c - '0')
}

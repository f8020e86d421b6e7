package parser

import (
	"errors"
	"strconv"
	"strings"

	"spice/internal/diag"
	"spice/internal/token"
)

// IntWidth is the suffix of an integer literal.
type IntWidth uint8

const (
	WidthInt IntWidth = iota
	WidthShort
	WidthLong
)

var errLiteralRange = errors.New("literal out of range")

// parseIntLiteral decodes 42, 42s, 42l, 0x2A, 0h2A, 0b101 and 0o17.
func parseIntLiteral(text string) (int64, IntWidth, error) {
	width := WidthInt
	switch {
	case strings.HasSuffix(text, "s") || strings.HasSuffix(text, "S"):
		width = WidthShort
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L"):
		width = WidthLong
		text = text[:len(text)-1]
	}
	base := 10
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X', 'h', 'H':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 10 {
			text = text[2:]
		}
	}
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, width, err
	}
	switch width {
	case WidthShort:
		if u > 0xFFFF {
			return 0, width, errLiteralRange
		}
		return int64(int16(uint16(u))), width, nil //nolint:gosec // two's complement wrap is intended
	case WidthInt:
		if u > 0xFFFFFFFF {
			return 0, width, errLiteralRange
		}
		return int64(int32(uint32(u))), width, nil //nolint:gosec // two's complement wrap is intended
	default:
		return int64(u), width, nil //nolint:gosec // two's complement wrap is intended
	}
}

// unescape resolves backslash escapes inside a string or char literal body.
func unescape(body string) (string, bool) {
	if !strings.Contains(body, `\`) {
		return body, true
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\\', '\'', '"':
			sb.WriteByte(body[i])
		case 'x':
			if i+3 > len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			sb.WriteByte(byte(v))
			i += 2
		default:
			return "", false
		}
	}
	return sb.String(), true
}

func (p *Parser) unquote(tok token.Token) (string, bool) {
	s, ok := unescape(tok.Text[1 : len(tok.Text)-1])
	if !ok {
		return "", p.fail(diag.SynBadLiteral, "invalid escape sequence in string literal")
	}
	return s, true
}

func (p *Parser) unquoteChar(tok token.Token) (byte, bool) {
	s, ok := unescape(tok.Text[1 : len(tok.Text)-1])
	if !ok || len(s) != 1 {
		return 0, p.fail(diag.SynBadLiteral, "a char literal must hold exactly one byte")
	}
	return s[0], true
}

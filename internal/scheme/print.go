package scheme

import (
	"math"
	"strconv"
	"strings"
)

// Display renders v for humans: strings without quotes, Unspecified as nothing.
func Display(v Value) string {
	var sb strings.Builder
	printValue(&sb, v, false)
	return sb.String()
}

// Write renders v so the reader can read it back where possible.
func Write(v Value) string {
	var sb strings.Builder
	printValue(&sb, v, true)
	return sb.String()
}

func printValue(sb *strings.Builder, v Value, quoted bool) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("#<nil>")
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Real:
		sb.WriteString(formatReal(float64(x)))
	case Bool:
		if x {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case Str:
		if quoted {
			writeQuotedString(sb, string(x))
		} else {
			sb.WriteString(string(x))
		}
	case Symbol:
		sb.WriteString(string(x))
	case empty:
		sb.WriteString("()")
	case unspecified:
		if quoted {
			sb.WriteString("#<unspecified>")
		}
	case *Builtin:
		sb.WriteString("#<procedure ")
		sb.WriteString(x.Name)
		sb.WriteByte('>')
	case *Lambda:
		if x.Name == "" {
			sb.WriteString("#<lambda>")
		} else {
			sb.WriteString("#<procedure ")
			sb.WriteString(x.Name)
			sb.WriteByte('>')
		}
	case *Pair:
		printList(sb, x, quoted)
	default:
		sb.WriteString("#<" + v.kind() + ">")
	}
}

func printList(sb *strings.Builder, p *Pair, quoted bool) {
	if sym, ok := p.Car.(Symbol); ok {
		if inner, ok := p.Cdr.(*Pair); ok && inner.Cdr == Nil {
			if prefix, abbrev := quoteAbbrev[sym]; abbrev {
				sb.WriteString(prefix)
				printValue(sb, inner.Car, quoted)
				return
			}
		}
	}
	sb.WriteByte('(')
	var cur Value = p
	first := true
	for {
		switch c := cur.(type) {
		case *Pair:
			if !first {
				sb.WriteByte(' ')
			}
			printValue(sb, c.Car, quoted)
			first = false
			cur = c.Cdr
			continue
		case empty:
		default:
			sb.WriteString(" . ")
			printValue(sb, c, quoted)
		}
		break
	}
	sb.WriteByte(')')
}

var quoteAbbrev = map[Symbol]string{
	"quote":            "'",
	"quasiquote":       "`",
	"unquote":          ",",
	"unquote-splicing": ",@",
}

func formatReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	case math.IsNaN(f):
		return "+nan.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func writeQuotedString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
}

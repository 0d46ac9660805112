package scheme

import (
	"strconv"
	"strings"
)

// Reader turns source text into data. It works on bytes; non-ASCII runes
// only ever appear inside symbols and strings, where they are copied as is.
type Reader struct {
	src string
	off int
}

// NewReader creates a reader over src.
func NewReader(src string) *Reader {
	return &Reader{src: src}
}

// ReadAll reads every datum until end of input.
func (r *Reader) ReadAll() ([]Value, error) {
	var out []Value
	for {
		r.skipAtmosphere()
		if r.eof() {
			return out, nil
		}
		v, err := r.Read()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// Read reads one datum.
func (r *Reader) Read() (Value, error) {
	r.skipAtmosphere()
	if r.eof() {
		return nil, errorf("unexpected end of input")
	}
	ch := r.src[r.off]
	switch ch {
	case '(', '[':
		r.off++
		return r.readList(closerFor(ch))
	case ')', ']':
		r.off++
		return nil, errorf("unexpected '%c'", ch)
	case '\'':
		r.off++
		return r.readQuoted("quote")
	case '`':
		r.off++
		return r.readQuoted("quasiquote")
	case ',':
		r.off++
		if !r.eof() && r.src[r.off] == '@' {
			r.off++
			return r.readQuoted("unquote-splicing")
		}
		return r.readQuoted("unquote")
	case '"':
		r.off++
		return r.readString()
	case '#':
		return r.readHash()
	}
	return r.readAtom(), nil
}

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return ')'
}

func (r *Reader) readQuoted(name string) (Value, error) {
	v, err := r.Read()
	if err != nil {
		return nil, err
	}
	return List(Symbol(name), v), nil
}

func (r *Reader) readList(closer byte) (Value, error) {
	var items []Value
	var tail Value = Nil
	for {
		r.skipAtmosphere()
		if r.eof() {
			return nil, errorf("unexpected end of input in list")
		}
		ch := r.src[r.off]
		if ch == closer {
			r.off++
			break
		}
		if ch == ')' || ch == ']' {
			return nil, errorf("mismatched '%c'", ch)
		}
		if ch == '.' && r.isDelimiter(r.off+1) {
			if len(items) == 0 {
				return nil, errorf("'.' at start of list")
			}
			r.off++
			v, err := r.Read()
			if err != nil {
				return nil, err
			}
			tail = v
			r.skipAtmosphere()
			if r.eof() || r.src[r.off] != closer {
				return nil, errorf("expected '%c' after dotted tail", closer)
			}
			r.off++
			break
		}
		v, err := r.Read()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	out := tail
	for i := len(items) - 1; i >= 0; i-- {
		out = Cons(items[i], out)
	}
	return out, nil
}

func (r *Reader) readString() (Value, error) {
	var sb strings.Builder
	for !r.eof() {
		ch := r.src[r.off]
		r.off++
		switch ch {
		case '"':
			return Str(sb.String()), nil
		case '\\':
			if r.eof() {
				return nil, errorf("unterminated string")
			}
			esc := r.src[r.off]
			r.off++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '"':
				sb.WriteByte(esc)
			case '\n':
				// продолжение строки
			default:
				return nil, errorf("unknown escape '\\%c' in string", esc)
			}
		default:
			sb.WriteByte(ch)
		}
	}
	return nil, errorf("unterminated string")
}

func (r *Reader) readHash() (Value, error) {
	tok := r.token()
	switch tok {
	case "#t", "#true":
		return True, nil
	case "#f", "#false":
		return False, nil
	}
	return nil, errorf("unsupported syntax %q", tok)
}

func (r *Reader) readAtom() Value {
	tok := r.token()
	if n, ok := parseNumber(tok); ok {
		return n
	}
	return Symbol(tok)
}

func parseNumber(tok string) (Value, bool) {
	if tok == "" || tok == "+" || tok == "-" || tok == "." || tok == "..." {
		return nil, false
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Int(i), true
	}
	c := tok[0]
	if (c < '0' || c > '9') && c != '-' && c != '+' && c != '.' {
		return nil, false
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Real(f), true
	}
	return nil, false
}

func (r *Reader) token() string {
	start := r.off
	for !r.eof() && !r.isDelimiter(r.off) {
		r.off++
	}
	return r.src[start:r.off]
}

func (r *Reader) isDelimiter(off int) bool {
	if off >= len(r.src) {
		return true
	}
	switch r.src[off] {
	case ' ', '\t', '\n', '\r', '\f', '(', ')', '[', ']', '"', ';', '\'':
		return true
	}
	return false
}

func (r *Reader) skipAtmosphere() {
	for !r.eof() {
		switch r.src[r.off] {
		case ' ', '\t', '\n', '\r', '\f':
			r.off++
		case ';':
			for !r.eof() && r.src[r.off] != '\n' {
				r.off++
			}
		default:
			return
		}
	}
}

func (r *Reader) eof() bool {
	return r.off >= len(r.src)
}

package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксис escape-регионов
	SynInfo                   Code = 2000
	SynUnexpectedEOF          Code = 2001
	SynBadIntroducer          Code = 2002
	SynUnmatchedDelimiter     Code = 2003
	SynMissingCloseIntroducer Code = 2004

	// Ошибки вычислителя
	EvalInfo  Code = 3000
	EvalError Code = 3001

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002

	// Командная строка
	CLINoInput Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	SynInfo:                   "Syntax information",
	SynUnexpectedEOF:          "Unexpected end of input",
	SynBadIntroducer:          "Introducer not followed by an open delimiter",
	SynUnmatchedDelimiter:     "Unmatched delimiter",
	SynMissingCloseIntroducer: "Closing delimiter not followed by the introducer",
	EvalInfo:                  "Evaluator information",
	EvalError:                 "Evaluator error",
	IOLoadFileError:           "I/O load file error",
	IOWriteError:              "I/O write error",
	CLINoInput:                "No input files",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EVL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CLI%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// IsSyntax reports whether the code belongs to the escape-region syntax class.
func (c Code) IsSyntax() bool {
	return c >= SynInfo && c < EvalInfo
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// сканер таблицы символов
	ScanUnterminatedLiteral Code = 1001
	ScanRawStringParens     Code = 1002
	ScanBadLiteral          Code = 1003
	ScanUnclosedGroup       Code = 1004
	ScanNoGroups            Code = 1005

	// построение таблицы
	PunDuplicateLiteral Code = 2001
	PunMalformedEntry   Code = 2002
	PunPatchNotFound    Code = 2003
	PunInvariant        Code = 2004
	PunEmptyTable       Code = 2005
	PunNonASCII         Code = 2006

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		ScanUnterminatedLiteral: "Unterminated string literal",
		ScanRawStringParens:     "Raw string parenthesis not found",
		ScanBadLiteral:          "Entry literal is neither a string nor a raw string",
		ScanUnclosedGroup:       "Symbol array is not closed",
		ScanNoGroups:            "No symbol arrays found",
		PunDuplicateLiteral:     "Duplicate punctuator literal",
		PunMalformedEntry:       "Malformed token entry",
		PunPatchNotFound:        "Parent row for child group not found",
		PunInvariant:            "Table invariant violated",
		PunEmptyTable:           "No punctuators to compile",
		PunNonASCII:             "Character cannot be written to the target format",
		IOLoadFileError:         "I/O load file error",
		IOWriteFileError:        "I/O write file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PUN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
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

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

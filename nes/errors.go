package nes

import (
	"errors"
	"fmt"
)

// Errors reported by Parse. Callers match them with errors.Is; the returned
// value is always a *ParseError carrying the offset where decoding stopped.
var (
	ErrEmptyInput                     = errors.New("there is no content to parse")
	ErrTooShortForHeader              = errors.New("content is too short to parse a header")
	ErrInvalidMagic                   = errors.New("invalid magic bytes")
	ErrInvalidPadding                 = errors.New("invalid padding bytes")
	ErrInsufficientBytesForTrainer    = errors.New("not enough bytes to read trainer")
	ErrInsufficientBytesForProgramROM = errors.New("not enough bytes to read PRG ROM")
	ErrInsufficientBytesForCHRROM     = errors.New("not enough bytes to read CHR ROM")
	ErrInsufficientBytesForInstROM    = errors.New("not enough bytes to read PlayChoice INST-ROM")
	ErrInsufficientBytesForPROM       = errors.New("not enough bytes to read PlayChoice PROM")
	ErrAllocationFailure              = errors.New("failed to allocate memory for ROM")
)

// Section names a region of an iNES image.
type Section int

const (
	SectionHeader Section = iota
	SectionTrainer
	SectionPRGROM
	SectionCHRROM
	SectionInstROM
	SectionPROM
	SectionTitle
)

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionTrainer:
		return "trainer"
	case SectionPRGROM:
		return "PRG ROM"
	case SectionCHRROM:
		return "CHR ROM"
	case SectionInstROM:
		return "INST-ROM"
	case SectionPROM:
		return "PROM"
	case SectionTitle:
		return "title"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// ParseError describes why and where an image was rejected.
type ParseError struct {
	Section Section
	Offset  int // byte offset of the section in the input
	Need    int // bytes the section requires, 0 when not a length failure
	Have    int // bytes available from Offset
	Err     error
}

func (e *ParseError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("%s at offset 0x%x: %v (need %d bytes, have %d)", e.Section, e.Offset, e.Err, e.Need, e.Have)
	}
	return fmt.Sprintf("%s at offset 0x%x: %v", e.Section, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

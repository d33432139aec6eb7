package nes

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// PaddingMode selects how header bytes 11-15 are validated.
type PaddingMode int

const (
	// PaddingLenient copies the padding verbatim. Many dumps keep a ripper
	// name there.
	PaddingLenient PaddingMode = iota
	// PaddingStrict rejects any non-zero padding byte.
	PaddingStrict
)

func (m PaddingMode) String() string {
	switch m {
	case PaddingLenient:
		return "lenient"
	case PaddingStrict:
		return "strict"
	}
	return fmt.Sprintf("padding(%d)", int(m))
}

// ParsePaddingMode converts "lenient" or "strict" into a PaddingMode.
func ParsePaddingMode(s string) (PaddingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return PaddingLenient, nil
	case "strict":
		return PaddingStrict, nil
	}
	return PaddingLenient, fmt.Errorf("unknown padding mode %q (use lenient or strict)", s)
}

// Config controls a Parse call. The zero value is lenient with no size limit.
type Config struct {
	Padding PaddingMode
	// MaxSize caps the bytes the header may ask the parser to allocate for
	// trainer, PRG, CHR and PlayChoice sections. 0 means no cap.
	MaxSize int
}

// PlayChoice holds the PlayChoice-10 blocks stored after CHR ROM.
type PlayChoice struct {
	INSTROM [0x2000]byte
	PROM    [32]byte
}

// PROMData returns the first 16 bytes of the PROM block.
func (p *PlayChoice) PROMData() []byte {
	return p.PROM[:16]
}

// PROMCounterOut returns the last 16 bytes of the PROM block.
func (p *PlayChoice) PROMCounterOut() []byte {
	return p.PROM[16:]
}

// Rom is a decoded iNES image. Absent sections are nil.
// https://www.nesdev.org/wiki/INES
type Rom struct {
	Header     Header
	Trainer    []byte // 512 bytes when Header.HasTrainer
	PRGROM     []byte // always set, empty when the header declares 0 banks
	CHRROM     []byte // nil when the board uses CHR RAM
	PlayChoice *PlayChoice
	Title      []byte // at most 127 bytes of whatever trails the last section
}

// ParseDefault parses data with the lenient default Config.
func ParseDefault(data []byte) (*Rom, error) {
	return Parse(data, Config{})
}

// Parse decodes an iNES image. It either returns a fully populated Rom or a
// *ParseError, never both. The Rom owns copies of every section.
func Parse(data []byte, cfg Config) (*Rom, error) {
	if len(data) == 0 {
		return nil, &ParseError{Section: SectionHeader, Err: ErrEmptyInput}
	}
	c := newCursor(data)
	h, err := decodeHeader(c, cfg.Padding)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("header: %s", h)
	if cfg.MaxSize > 0 {
		if n := allocSize(h); n > cfg.MaxSize {
			return nil, &ParseError{Section: SectionHeader, Offset: c.off, Need: n, Have: cfg.MaxSize, Err: ErrAllocationFailure}
		}
	}

	rom := &Rom{Header: h}
	if rom.Trainer, err = decodeTrainer(c, h); err != nil {
		return nil, err
	}
	if rom.PRGROM, err = decodePRGROM(c, h); err != nil {
		return nil, err
	}
	// zero means we have no CHR ROM
	if h.CHRROMBanks != 0 {
		if rom.CHRROM, err = decodeCHRROM(c, h); err != nil {
			return nil, err
		}
	}
	if h.HasPlayChoice() {
		if rom.PlayChoice, err = decodePlayChoice(c); err != nil {
			return nil, err
		}
	}
	rom.Title = decodeTitle(c)
	return rom, nil
}

func allocSize(h Header) int {
	n := h.PRGROMSize() + h.CHRROMSize()
	if h.HasTrainer() {
		n += trainerSizeBytes
	}
	if h.HasPlayChoice() {
		n += instROMSizeBytes + promSizeBytes
	}
	return n
}

func decodeTrainer(c *cursor, h Header) ([]byte, error) {
	if !h.HasTrainer() {
		return nil, nil
	}
	glog.V(1).Infof("trainer is enabled")
	off := c.off
	b, err := c.take(SectionTrainer, trainerSizeBytes, ErrInsufficientBytesForTrainer)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("trainer: offset=0x%x size=%d", off, len(b))
	return b, nil
}

// decodePRGROM copies PRG ROM. A bank count of 0 yields an empty, non-nil slice.
func decodePRGROM(c *cursor, h Header) ([]byte, error) {
	off := c.off
	b, err := c.take(SectionPRGROM, h.PRGROMSize(), ErrInsufficientBytesForProgramROM)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("PRG ROM: offset=0x%x size=%d", off, len(b))
	return b, nil
}

func decodeCHRROM(c *cursor, h Header) ([]byte, error) {
	off := c.off
	b, err := c.take(SectionCHRROM, h.CHRROMSize(), ErrInsufficientBytesForCHRROM)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("CHR ROM: offset=0x%x size=%d", off, len(b))
	return b, nil
}

// decodePlayChoice reads INST-ROM then PROM. Both are required once the
// flag is set.
func decodePlayChoice(c *cursor) (*PlayChoice, error) {
	p := &PlayChoice{}
	off := c.off
	if err := c.takeInto(SectionInstROM, p.INSTROM[:], ErrInsufficientBytesForInstROM); err != nil {
		return nil, err
	}
	if err := c.takeInto(SectionPROM, p.PROM[:], ErrInsufficientBytesForPROM); err != nil {
		return nil, err
	}
	glog.V(2).Infof("PlayChoice: offset=0x%x size=%d", off, c.off-off)
	return p, nil
}

// decodeTitle takes up to 127 trailing bytes. It returns nil when nothing is
// left.
func decodeTitle(c *cursor) []byte {
	if c.remaining() == 0 {
		return nil
	}
	off := c.off
	b := c.rest(titleMaxBytes)
	glog.V(2).Infof("%s: offset=0x%x size=%d", SectionTitle, off, len(b))
	return b
}

// Name returns the title up to its first NUL byte, without trailing blanks.
func (r *Rom) Name() string {
	t := r.Title
	if i := bytes.IndexByte(t, 0); i >= 0 {
		t = t[:i]
	}
	return strings.TrimRight(string(t), " \t\r\n")
}

// Size returns the bytes covered by header and ROM sections, excluding the title.
func (r *Rom) Size() int {
	n := inesHeaderSizeBytes + len(r.Trainer) + len(r.PRGROM) + len(r.CHRROM)
	if r.PlayChoice != nil {
		n += instROMSizeBytes + promSizeBytes
	}
	return n
}

// Equal reports whether r and o hold the same sections with the same content.
// An absent section never equals a present one, even an empty one.
func (r *Rom) Equal(o *Rom) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Header != o.Header {
		return false
	}
	if !sameSection(r.Trainer, o.Trainer) || !sameSection(r.PRGROM, o.PRGROM) ||
		!sameSection(r.CHRROM, o.CHRROM) || !sameSection(r.Title, o.Title) {
		return false
	}
	if (r.PlayChoice == nil) != (o.PlayChoice == nil) {
		return false
	}
	return r.PlayChoice == nil || *r.PlayChoice == *o.PlayChoice
}

func sameSection(a, b []byte) bool {
	return (a == nil) == (b == nil) && bytes.Equal(a, b)
}

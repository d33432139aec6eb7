package nes

import "fmt"

const (
	chrROMSizeUnit      int = 0x2000 // 8 KB
	prgROMSizeUnit      int = 0x4000 // 16 KB
	prgRAMSizeUnit      int = 0x2000 // 8 KB
	inesHeaderSizeBytes int = 16     // The valid INES header has 16 bytes
	trainerSizeBytes    int = 512
	instROMSizeBytes    int = 0x2000
	promSizeBytes       int = 32
	titleMaxBytes       int = 127

	msDOSEOF byte = 0x1A
)

// Magic is the signature every iNES image opens with: "NES" followed by the
// MS-DOS end-of-file byte.
var Magic = [4]byte{'N', 'E', 'S', msDOSEOF}

// Flags 6 bits.
const (
	flag6Vertical   byte = 1 << 0
	flag6Battery    byte = 1 << 1
	flag6Trainer    byte = 1 << 2
	flag6FourScreen byte = 1 << 3
)

// Flags 7 bits.
const (
	flag7VSUnisystem byte = 1 << 0
	flag7PlayChoice  byte = 1 << 1
)

// MirrorMode is the nametable arrangement wired on the board.
type MirrorMode int

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorFourScreen
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("mirror(%d)", int(m))
}

// TVSystem is the video standard from flags 9.
type TVSystem int

const (
	NTSC TVSystem = iota
	PAL
)

func (t TVSystem) String() string {
	if t == PAL {
		return "PAL"
	}
	return "NTSC"
}

// Header is the fixed 16-byte iNES descriptor.
// https://www.nesdev.org/wiki/INES
type Header struct {
	Magic       [4]byte
	PRGROMBanks byte // 16 KB units
	CHRROMBanks byte // 8 KB units, 0 means the board uses CHR RAM
	Flags6      byte // https://www.nesdev.org/wiki/INES#Flags_6
	Flags7      byte // https://www.nesdev.org/wiki/INES#Flags_7
	Flags8      byte // https://www.nesdev.org/wiki/INES#Flags_8
	Flags9      byte // https://www.nesdev.org/wiki/INES#Flags_9
	Flags10     byte // https://www.nesdev.org/wiki/INES#Flags_10
	Padding     [5]byte
}

// decodeHeader reads the first 16 bytes of data. The magic check runs before
// any other field is looked at.
func decodeHeader(c *cursor, mode PaddingMode) (Header, error) {
	var h Header
	var raw [16]byte
	if err := c.takeInto(SectionHeader, raw[:], ErrTooShortForHeader); err != nil {
		return h, err
	}
	copy(h.Magic[:], raw[0:4])
	if h.Magic != Magic {
		return Header{}, &ParseError{Section: SectionHeader, Err: ErrInvalidMagic}
	}
	h.PRGROMBanks = raw[4]
	h.CHRROMBanks = raw[5]
	h.Flags6 = raw[6]
	h.Flags7 = raw[7]
	h.Flags8 = raw[8]
	h.Flags9 = raw[9]
	h.Flags10 = raw[10]
	copy(h.Padding[:], raw[11:16])
	if mode == PaddingStrict {
		for i, b := range h.Padding {
			if b != 0 {
				return Header{}, &ParseError{Section: SectionHeader, Offset: 11 + i, Err: ErrInvalidPadding}
			}
		}
	}
	return h, nil
}

// HasTrainer reports whether a 512-byte trainer precedes PRG ROM.
func (h Header) HasTrainer() bool {
	return h.Flags6&flag6Trainer != 0
}

// HasPlayChoice reports whether the PlayChoice-10 INST-ROM and PROM follow CHR ROM.
func (h Header) HasPlayChoice() bool {
	return h.Flags7&flag7PlayChoice != 0
}

func (h Header) IsVSUnisystem() bool {
	return h.Flags7&flag7VSUnisystem != 0
}

// HasBattery reports battery-backed PRG RAM at $6000-$7FFF.
func (h Header) HasBattery() bool {
	return h.Flags6&flag6Battery != 0
}

func (h Header) HasFourScreen() bool {
	return h.Flags6&flag6FourScreen != 0
}

func (h Header) Mirroring() MirrorMode {
	if h.HasFourScreen() {
		return MirrorFourScreen
	}
	if h.Flags6&flag6Vertical != 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

// Mapper combines the upper nibble of flags 7 with the upper nibble of flags 6.
func (h Header) Mapper() byte {
	return h.Flags7&0xF0 | h.Flags6>>4
}

func (h Header) TVSystem() TVSystem {
	return TVSystem(h.Flags9 & 0x01)
}

// PRGRAMBanks returns the PRG RAM size in 8 KB units. A zero value in the
// header means one bank for compatibility.
func (h Header) PRGRAMBanks() int {
	if h.Flags8 == 0 {
		return 1
	}
	return int(h.Flags8)
}

func (h Header) PRGRAMSize() int {
	return h.PRGRAMBanks() * prgRAMSizeUnit
}

func (h Header) PRGROMSize() int {
	return int(h.PRGROMBanks) * prgROMSizeUnit
}

func (h Header) CHRROMSize() int {
	return int(h.CHRROMBanks) * chrROMSizeUnit
}

// UsesCHRRAM reports that the image carries no CHR ROM section.
func (h Header) UsesCHRRAM() bool {
	return h.CHRROMBanks == 0
}

// HasRipperPadding reports non-zero bytes in 11-15, usually a ripper's tag.
func (h Header) HasRipperPadding() bool {
	for _, b := range h.Padding {
		if b != 0 {
			return true
		}
	}
	return false
}

func (h Header) String() string {
	return fmt.Sprintf("prg(%d), chr(%d), flags(%02x, %02x, %02x, %02x, %02x), mapper(%d)",
		h.PRGROMBanks, h.CHRROMBanks, h.Flags6, h.Flags7, h.Flags8, h.Flags9, h.Flags10, h.Mapper())
}

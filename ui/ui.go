// Package ui renders parsed ROMs for the terminal.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jyane/ines/nes"
)

type styles struct {
	name   lipgloss.Style
	key    lipgloss.Style
	value  lipgloss.Style
	absent lipgloss.Style
	err    lipgloss.Style
	offset lipgloss.Style
}

func newStyles() styles {
	return styles{
		name:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(4)),
		key:    lipgloss.NewStyle().Width(14).Foreground(lipgloss.ANSIColor(6)),
		value:  lipgloss.NewStyle().Bold(true),
		absent: lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		err:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		offset: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
	}
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func banks(n int, unit string, size int) string {
	return fmt.Sprintf("%d x %s (%d bytes)", n, unit, size)
}

// Report renders a key/value summary of rom under the heading name.
func Report(name string, rom *nes.Rom) string {
	s := newStyles()
	h := rom.Header

	chr := s.absent.Render("none, uses CHR RAM")
	if rom.CHRROM != nil {
		chr = s.value.Render(banks(int(h.CHRROMBanks), "8k", len(rom.CHRROM)))
	}
	title := s.absent.Render("none")
	if rom.Title != nil {
		title = s.value.Render(fmt.Sprintf("%q", rom.Name()))
	}
	padding := s.value.Render("zero")
	if h.HasRipperPadding() {
		padding = s.value.Render(fmt.Sprintf("% x", h.Padding[:]))
	}

	rows := []struct {
		key   string
		value string
	}{
		{"mapper", s.value.Render(fmt.Sprintf("%d", h.Mapper()))},
		{"mirroring", s.value.Render(h.Mirroring().String())},
		{"PRG ROM", s.value.Render(banks(int(h.PRGROMBanks), "16k", len(rom.PRGROM)))},
		{"CHR ROM", chr},
		{"PRG RAM", s.value.Render(fmt.Sprintf("%dk", h.PRGRAMSize()/1024))},
		{"trainer", s.value.Render(yn(rom.Trainer != nil))},
		{"battery", s.value.Render(yn(h.HasBattery()))},
		{"VS system", s.value.Render(yn(h.IsVSUnisystem()))},
		{"PlayChoice", s.value.Render(yn(rom.PlayChoice != nil))},
		{"TV system", s.value.Render(h.TVSystem().String())},
		{"padding", padding},
		{"title", title},
	}

	lines := []string{s.name.Render(name)}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(r.key), r.value))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Error renders a failure for name. Parse errors show the offending offset.
func Error(name string, err error) string {
	s := newStyles()
	var b strings.Builder
	b.WriteString(s.err.Render(name))
	b.WriteString(" ")
	var pe *nes.ParseError
	if !errors.As(err, &pe) {
		b.WriteString(err.Error())
		return b.String()
	}
	b.WriteString(s.offset.Render(fmt.Sprintf("[%s @ 0x%04x]", pe.Section, pe.Offset)))
	b.WriteString(" ")
	b.WriteString(pe.Err.Error())
	if pe.Need > 0 {
		fmt.Fprintf(&b, " (need %d bytes, have %d)", pe.Need, pe.Have)
	}
	return b.String()
}

package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jyane/ines/nes"
)

func newTestRom(t *testing.T, title string) *nes.Rom {
	t.Helper()
	data := make([]byte, 16+0x4000+0x2000)
	copy(data, nes.Magic[:])
	data[4] = 1
	data[5] = 1
	data[6] = 0x03 // vertical, battery
	data[11] = 'R'
	data = append(data, title...)
	rom, err := nes.ParseDefault(data)
	if err != nil {
		t.Fatal(err)
	}
	return rom
}

func TestReport(t *testing.T) {
	out := Report("smb.nes", newTestRom(t, "Super Mario Bros."))
	for _, want := range []string{
		"smb.nes",
		"vertical",
		"1 x 16k (16384 bytes)",
		"1 x 8k (8192 bytes)",
		`"Super Mario Bros."`,
		"52 00 00 00 00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q in:\n%s", want, out)
		}
	}
}

func TestReportAbsentSections(t *testing.T) {
	data := make([]byte, 16)
	copy(data, nes.Magic[:])
	rom, err := nes.ParseDefault(data)
	if err != nil {
		t.Fatal(err)
	}
	out := Report("blank.nes", rom)
	for _, want := range []string{"none, uses CHR RAM", "0 x 16k (0 bytes)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q in:\n%s", want, out)
		}
	}
}

func TestError(t *testing.T) {
	_, err := nes.ParseDefault([]byte("NES\x1a\x02\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	out := Error("short.nes", err)
	for _, want := range []string{"[PRG ROM @ 0x0010]", "not enough bytes to read PRG ROM (need 32768 bytes, have 0)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Error(): got=%q, want it to contain %q", out, want)
		}
	}
	if strings.Count(out, "0x") != 1 {
		t.Errorf("Error() repeats the offset: %q", out)
	}
	if !strings.Contains(out, "short.nes") {
		t.Errorf("Error() missing name in %q", out)
	}

	out = Error("gone.nes", fmt.Errorf("failed to open"))
	if strings.Contains(out, "@") {
		t.Errorf("Error() rendered an offset for a non-parse error: %q", out)
	}
}

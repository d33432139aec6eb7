package integration

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/jyane/ines/nes"
	"github.com/jyane/ines/romfile"
	"github.com/jyane/ines/ui"
)

// buildRom lays out a complete image: header, trainer, one PRG bank, one CHR
// bank, PlayChoice blocks and a title.
func buildRom(title string) []byte {
	data := make([]byte, 16)
	copy(data, nes.Magic[:])
	data[4] = 1
	data[5] = 1
	data[6] = 0x04 | 0x01 // trainer, vertical
	data[7] = 0x02        // PlayChoice-10
	data = append(data, bytes.Repeat([]byte{0xEA}, 512)...)
	data = append(data, bytes.Repeat([]byte{0x4C}, 0x4000)...)
	data = append(data, bytes.Repeat([]byte{0x55}, 0x2000)...)
	data = append(data, bytes.Repeat([]byte{0x11}, 0x2000)...)
	data = append(data, bytes.Repeat([]byte{0x22}, 32)...)
	return append(data, title...)
}

func TestOSFileEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pc10.nes")
	if err := os.WriteFile(path, buildRom("Punch-Out!!"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := romfile.NewOSLoader().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	rom, err := nes.ParseDefault(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(rom.Trainer) != 512 || len(rom.PRGROM) != 0x4000 || len(rom.CHRROM) != 0x2000 {
		t.Errorf("sections: got trainer=%d prg=%d chr=%d", len(rom.Trainer), len(rom.PRGROM), len(rom.CHRROM))
	}
	if rom.PlayChoice == nil || rom.PlayChoice.PROM[31] != 0x22 {
		t.Error("PlayChoice blocks were not decoded")
	}
	if rom.Name() != "Punch-Out!!" {
		t.Errorf("Name(): got=%q, want=%q", rom.Name(), "Punch-Out!!")
	}
	if rom.Size()+len(rom.Title) != len(data) {
		t.Errorf("Size(): got=%d, want=%d", rom.Size(), len(data)-len(rom.Title))
	}
}

func TestZippedRomEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("Punch-Out!! (USA).nes")
	if err != nil {
		t.Fatal(err)
	}
	f.Write(buildRom("Punch-Out!!"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "roms/punchout.zip", buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := romfile.NewLoader(fs).Load("roms/punchout.zip")
	if err != nil {
		t.Fatal(err)
	}
	rom, err := nes.Parse(data, nes.Config{Padding: nes.PaddingStrict})
	if err != nil {
		t.Fatal(err)
	}
	out := ui.Report("punchout.zip", rom)
	for _, want := range []string{"vertical", `"Punch-Out!!"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q in:\n%s", want, out)
		}
	}
}

func TestTruncatedFileEndToEnd(t *testing.T) {
	full := buildRom("")
	fs := afero.NewMemMapFs()
	// cut inside the PROM block
	if err := afero.WriteFile(fs, "cut.nes", full[:len(full)-5], 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := romfile.NewLoader(fs).Load("cut.nes")
	if err != nil {
		t.Fatal(err)
	}
	rom, err := nes.ParseDefault(data)
	if rom != nil {
		t.Fatalf("rom: got=%+v, want=nil", rom)
	}
	if !errors.Is(err, nes.ErrInsufficientBytesForPROM) {
		t.Fatalf("err: got=%v, want=%v", err, nes.ErrInsufficientBytesForPROM)
	}
	var le *romfile.LoadError
	if errors.As(err, &le) {
		t.Error("parse failure reported as a load failure")
	}
}

// Package romfile reads ROM images from disk, unpacking common archive
// formats on the way.
package romfile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/golang/glog"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

var (
	ErrIsDirectory    = errors.New("is a directory")
	ErrNoROMInArchive = errors.New("no ROM found in archive")
	ErrTooLarge       = errors.New("file exceeds size limit")
)

// romExt is the member extension preferred inside archives.
const romExt = ".nes"

// LoadError reports a failure to obtain a file's bytes. It is never a
// parse failure.
type LoadError struct {
	Op   string // stat, open, read or extract
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads whole files into memory.
type Loader struct {
	Fs afero.Fs
	// MaxSize caps the bytes returned by Load, after decompression. 0 means
	// no cap.
	MaxSize int64
}

// NewLoader creates a Loader reading from fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{Fs: fs}
}

// NewOSLoader creates a Loader reading from the host filesystem.
func NewOSLoader() *Loader {
	return NewLoader(afero.NewOsFs())
}

// Load returns the contents of path. Archives (.zip, .7z, .rar, .gz, .xz,
// .lz4) are unpacked and the first .nes member is returned.
func (l *Loader) Load(path string) ([]byte, error) {
	fi, err := l.Fs.Stat(path)
	if err != nil {
		return nil, &LoadError{Op: "stat", Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &LoadError{Op: "stat", Path: path, Err: ErrIsDirectory}
	}
	f, err := l.Fs.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var data []byte
	op := "extract"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		data, err = l.readZip(f, fi.Size())
	case ".7z":
		data, err = l.readSevenZip(f, fi.Size())
	case ".rar":
		data, err = l.readRar(f)
	case ".gz":
		data, err = l.readGzip(f)
	case ".xz":
		data, err = l.readXz(f)
	case ".lz4":
		data, err = l.readAll(lz4.NewReader(f))
	default:
		op = "read"
		data, err = l.readAll(f)
	}
	if err != nil {
		return nil, &LoadError{Op: op, Path: path, Err: err}
	}
	glog.V(1).Infof("loaded %s (%d bytes)", path, len(data))
	return data, nil
}

// readAll reads r to EOF, honouring MaxSize.
func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.MaxSize <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, l.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > l.MaxSize {
		return nil, ErrTooLarge
	}
	return b, nil
}

// pickMember returns the index of the first .nes name, or of the only name
// when there is exactly one. It returns -1 otherwise.
func pickMember(names []string) int {
	for i, n := range names {
		if strings.EqualFold(filepath.Ext(n), romExt) {
			return i
		}
	}
	if len(names) == 1 {
		return 0
	}
	return -1
}

func (l *Loader) readZip(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	var files []*zip.File
	var names []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
		names = append(names, f.Name)
	}
	i := pickMember(names)
	if i < 0 {
		return nil, ErrNoROMInArchive
	}
	rc, err := files[i].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	glog.V(2).Infof("zip member %s", names[i])
	return l.readAll(rc)
}

func (l *Loader) readSevenZip(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	var files []*sevenzip.File
	var names []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
		names = append(names, f.Name)
	}
	i := pickMember(names)
	if i < 0 {
		return nil, ErrNoROMInArchive
	}
	rc, err := files[i].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	glog.V(2).Infof("7z member %s", names[i])
	return l.readAll(rc)
}

// readRar streams the archive once. It returns the first .nes member, or the
// only member when the archive holds a single file. A non-.nes member over
// MaxSize only fails the load when it is the one returned.
func (l *Loader) readRar(r io.Reader) ([]byte, error) {
	rr, err := rardecode.NewReader(r)
	if err != nil {
		return nil, err
	}
	var first []byte
	var firstErr error
	files := 0
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.IsDir {
			continue
		}
		if strings.EqualFold(filepath.Ext(hdr.Name), romExt) {
			glog.V(2).Infof("rar member %s", hdr.Name)
			return l.readAll(rr)
		}
		if files == 0 {
			first, firstErr = l.readAll(rr)
			if firstErr != nil && !errors.Is(firstErr, ErrTooLarge) {
				return nil, firstErr
			}
		}
		files++
	}
	if files != 1 {
		return nil, ErrNoROMInArchive
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return first, nil
}

func (l *Loader) readGzip(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return l.readAll(zr)
}

func (l *Loader) readXz(r io.Reader) ([]byte, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return l.readAll(zr)
}

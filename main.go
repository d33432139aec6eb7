package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/jyane/ines/nes"
	"github.com/jyane/ines/romfile"
	"github.com/jyane/ines/ui"
)

var (
	padding     = flag.String("padding", "lenient", "header padding policy: lenient or strict")
	maxSize     = flag.Int("max-size", 0, "reject ROMs whose sections need more than this many bytes (0 = no limit)")
	maxFileSize = flag.Int64("max-file-size", 0, "reject files larger than this many bytes after decompression (0 = no limit)")
	info        = flag.Bool("info", false, "print a full report instead of the title")
	jobs        = flag.Int("jobs", runtime.GOMAXPROCS(0), "number of files parsed in parallel")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
)

const (
	exitOK             = 0
	exitInvalidUsage   = 1
	exitFailedParse    = 1
	exitFailedReadFile = 2
)

type options struct {
	cfg  nes.Config
	info bool
	jobs int
}

type result struct {
	rom *nes.Rom
	err error
	// loaded is false when the file could not be read.
	loaded bool
}

// parseAll loads and parses every path, at most jobs at a time. Each call owns
// its buffers, so results only meet again in the returned slice.
func parseAll(loader *romfile.Loader, paths []string, opts options) []result {
	results := make([]result, len(paths))
	var g errgroup.Group
	if opts.jobs < 1 {
		opts.jobs = 1
	}
	g.SetLimit(opts.jobs)
	for i, path := range paths {
		g.Go(func() error {
			data, err := loader.Load(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].loaded = true
			results[i].rom, results[i].err = nes.Parse(data, opts.cfg)
			glog.V(1).Infof("%s: parsed %d bytes, err=%v", path, len(data), results[i].err)
			return nil
		})
	}
	// goroutines record failures in results and always return nil
	_ = g.Wait()
	return results
}

// run prints one line (or report) per path in argument order and returns the
// process exit code.
func run(loader *romfile.Loader, paths []string, opts options, stdout, stderr io.Writer) int {
	code := exitOK
	for i, r := range parseAll(loader, paths, opts) {
		if r.err != nil {
			fmt.Fprintln(stderr, ui.Error(paths[i], r.err))
			if !r.loaded {
				code = exitFailedReadFile
			} else if code == exitOK {
				code = exitFailedParse
			}
			continue
		}
		if opts.info {
			fmt.Fprintln(stdout, ui.Report(paths[i], r.rom))
			continue
		}
		fmt.Fprintln(stdout, r.rom.Name())
	}
	return code
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <filename>...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(mainWithCode())
}

func mainWithCode() int {
	defer glog.Flush()
	if flag.NArg() < 1 {
		flag.Usage()
		return exitInvalidUsage
	}
	mode, err := nes.ParsePaddingMode(*padding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidUsage
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	loader := romfile.NewOSLoader()
	loader.MaxSize = *maxFileSize
	opts := options{
		cfg:  nes.Config{Padding: mode, MaxSize: *maxSize},
		info: *info,
		jobs: *jobs,
	}
	return run(loader, flag.Args(), opts, os.Stdout, os.Stderr)
}

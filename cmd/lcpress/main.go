// Command lcpress compresses and decompresses files with the pyramid
// byte-pair codec.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pborman/options"

	"github.com/mangoglass/pyramid"
)

func main() {
	if err := run(); err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	opts := &struct {
		Compress   string       `getopt:"-c --compress FILE    Compress FILE with the byte-pair codec"`
		Decompress string       `getopt:"-d --decompress FILE  Decompress a .lc FILE produced by -c"`
		Help       options.Help `getopt:"-h --help              Display help"`
	}{}
	options.RegisterAndParse(opts)

	switch {
	case opts.Compress != "" && opts.Decompress != "":
		return fmt.Errorf("exactly one of -c or -d is required, got both: %w", pyramid.ErrArgument)
	case opts.Compress != "":
		return dispatchCompress(opts.Compress)
	case opts.Decompress != "":
		return dispatchDecompress(opts.Decompress)
	default:
		return fmt.Errorf("exactly one of -c FILE or -d FILE is required: %w", pyramid.ErrArgument)
	}
}

func dispatchCompress(path string) error {
	outPath, stats, err := pyramid.Compress(path)
	if err != nil {
		return err
	}

	if isInteractive() {
		inSize, outSize := fileSize(path), fileSize(outPath)
		fmt.Fprintf(os.Stderr, "%s -> %s (%d -> %d bytes; hits %d, misses %d, dictionary headers %d)\n",
			path, outPath, inSize, outSize, stats.HitBytes, stats.MissBytes, stats.HeaderBytes)
	}

	fmt.Println(outPath)
	return nil
}

func dispatchDecompress(path string) error {
	outPath, err := pyramid.Decompress(path)
	if err != nil {
		return err
	}

	if isInteractive() {
		inSize, outSize := fileSize(path), fileSize(outPath)
		fmt.Fprintf(os.Stderr, "%s -> %s (%d -> %d bytes)\n", path, outPath, inSize, outSize)
	}

	fmt.Println(outPath)
	return nil
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// exitCode maps an error's kind (§7) to a distinct process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, pyramid.ErrArgument):
		return 2
	case errors.Is(err, pyramid.ErrProtocol):
		return 3
	case errors.Is(err, pyramid.ErrIO):
		return 4
	default:
		return 1
	}
}

package pyramid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Compress runs the layered pipeline of spec §4.7 over srcPath: build a
// dictionary collection, encode all chunks into a temp file, and keep
// treating the result as the new input for as long as each pass shrinks
// the data. The first pass that would enlarge it is discarded, and the
// layer count is prepended to produce the final "<stem>.lc" file. The
// returned EncodeStats sum the hit/miss/dictionary-header byte totals
// across every layer that survived into the final output.
func Compress(srcPath string) (string, EncodeStats, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return "", EncodeStats{}, argumentErrorf("source file %q does not exist", srcPath)
	}

	dir := filepath.Dir(srcPath)
	stem := stemName(srcPath)

	curPath := srcPath
	curOwned := false
	layers := 0
	var totalStats EncodeStats

	for layers < maxLayers {
		tmpPath, layerStats, err := encodeLayer(curPath, dir, stem, layers+1)
		if err != nil {
			return "", EncodeStats{}, err
		}

		shrank, err := fileIsLarger(curPath, tmpPath)
		if err != nil {
			return "", EncodeStats{}, err
		}

		if !shrank {
			if err := os.Remove(tmpPath); err != nil {
				return "", EncodeStats{}, ioErrorf("remove %q: %v", tmpPath, err)
			}
			break
		}

		if curOwned {
			if err := os.Remove(curPath); err != nil {
				return "", EncodeStats{}, ioErrorf("remove %q: %v", curPath, err)
			}
		}
		curPath = tmpPath
		curOwned = true
		layers++
		totalStats.add(layerStats)
	}

	finalPath, err := finalizeCompressed(curPath, dir, stem, layers)
	if err != nil {
		return "", EncodeStats{}, err
	}
	if curOwned {
		if err := os.Remove(curPath); err != nil {
			return "", EncodeStats{}, ioErrorf("remove %q: %v", curPath, err)
		}
	}
	return finalPath, totalStats, nil
}

// encodeLayer builds a dictionary pair per chunk of path and encodes the
// whole file into a fresh "<stem>.tmpN" file, returning its path and the
// accumulated byte-category accounting across all of its chunks.
func encodeLayer(path, dir, stem string, n int) (string, EncodeStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", EncodeStats{}, ioErrorf("stat %q: %v", path, err)
	}
	size := uint64(info.Size())

	f, err := os.Open(path)
	if err != nil {
		return "", EncodeStats{}, ioErrorf("open %q: %v", path, err)
	}
	defer f.Close()

	tmpPath := filepath.Join(dir, fmt.Sprintf("%s.tmp%d", stem, n))
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", EncodeStats{}, ioErrorf("create %q: %v", tmpPath, err)
	}
	w := bufio.NewWriter(out)

	var offset uint64
	var stats EncodeStats
	for offset < size {
		chunkSize := uint64(chunkMaxSize)
		if size-offset < chunkSize {
			chunkSize = size - offset
		}

		even, odd, err := BuildDictionaryPair(path, offset, chunkSize)
		if err != nil {
			out.Close()
			return "", EncodeStats{}, err
		}
		frame, chunkStats, err := EncodeChunk(f, offset, even, odd)
		if err != nil {
			out.Close()
			return "", EncodeStats{}, err
		}
		if _, err := w.Write(frame); err != nil {
			out.Close()
			return "", EncodeStats{}, ioErrorf("write %q: %v", tmpPath, err)
		}
		stats.add(chunkStats)

		offset += chunkSize
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return "", EncodeStats{}, ioErrorf("flush %q: %v", tmpPath, err)
	}
	if err := out.Close(); err != nil {
		return "", EncodeStats{}, ioErrorf("close %q: %v", tmpPath, err)
	}
	return tmpPath, stats, nil
}

// finalizeCompressed prepends the one-byte layer count to path's content
// and writes the result to "<stem>.lc".
func finalizeCompressed(path, dir, stem string, layers int) (string, error) {
	if layers > maxLayers {
		return "", argumentErrorf("layer count %d exceeds the single-byte cap of %d", layers, maxLayers)
	}

	finalPath := filepath.Join(dir, stem+".lc")
	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Remove(finalPath); err != nil {
			return "", ioErrorf("remove existing %q: %v", finalPath, err)
		}
	}

	out, err := os.Create(finalPath)
	if err != nil {
		return "", ioErrorf("create %q: %v", finalPath, err)
	}
	defer out.Close()

	if _, err := out.Write([]byte{byte(layers)}); err != nil {
		return "", ioErrorf("write layer count to %q: %v", finalPath, err)
	}

	in, err := os.Open(path)
	if err != nil {
		return "", ioErrorf("open %q: %v", path, err)
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", ioErrorf("copy %q into %q: %v", path, finalPath, err)
	}
	return finalPath, nil
}

// Decompress reverses Compress: read the leading layer count, then unwind
// exactly that many chunk-encoded passes, finally restoring the original
// inner filename (with a "_decompressed" suffix inserted if that name is
// already taken).
func Decompress(srcPath string) (string, error) {
	if _, err := os.Stat(srcPath); err != nil {
		return "", argumentErrorf("source file %q does not exist", srcPath)
	}

	dir := filepath.Dir(srcPath)
	innerName := strings.TrimSuffix(filepath.Base(srcPath), ".lc")
	stem := stemName(srcPath)

	f, err := os.Open(srcPath)
	if err != nil {
		return "", ioErrorf("open %q: %v", srcPath, err)
	}

	var header [1]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		f.Close()
		return "", protocolErrorf("truncated layer-count header: %v", err)
	}
	layers := int(header[0])

	if layers == 0 {
		defer f.Close()
		outPath := uniquePath(filepath.Join(dir, innerName))
		out, err := os.Create(outPath)
		if err != nil {
			return "", ioErrorf("create %q: %v", outPath, err)
		}
		defer out.Close()
		if _, err := io.Copy(out, f); err != nil {
			return "", ioErrorf("copy into %q: %v", outPath, err)
		}
		return outPath, nil
	}

	curPath := ""
	var curReader io.ReadCloser = f

	for i := 0; i < layers; i++ {
		decoded, err := DecodeAllChunks(curReader)
		curReader.Close()
		if err != nil {
			return "", err
		}
		if curPath != "" {
			if err := os.Remove(curPath); err != nil {
				return "", ioErrorf("remove %q: %v", curPath, err)
			}
		}

		tmpPath := filepath.Join(dir, fmt.Sprintf("%s.tmp%d", stem, i+1))
		if err := os.WriteFile(tmpPath, decoded, 0o644); err != nil {
			return "", ioErrorf("write %q: %v", tmpPath, err)
		}
		curPath = tmpPath

		if i+1 < layers {
			nf, err := os.Open(tmpPath)
			if err != nil {
				return "", ioErrorf("open %q: %v", tmpPath, err)
			}
			curReader = nf
		}
	}

	outPath := uniquePath(filepath.Join(dir, innerName))
	if err := os.Rename(curPath, outPath); err != nil {
		return "", ioErrorf("rename %q to %q: %v", curPath, outPath, err)
	}
	return outPath, nil
}

// stemName returns path's file name with its final extension stripped,
// the way the temp-file and ".lc" naming scheme is built.
func stemName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// uniquePath returns path unchanged if it doesn't already exist, or with
// a "_decompressed" suffix inserted before the extension if it does.
func uniquePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_decompressed" + ext
}

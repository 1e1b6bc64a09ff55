package pyramid

import (
	"bytes"
	"io"
	"os"
)

// EncodeStats accumulates the byte-category totals behind the CLI's
// human-readable compression summary: how many source bytes were folded
// into dictionary hits, how many survived as raw miss bytes, and how many
// bytes the dictionary headers themselves cost on the wire.
type EncodeStats struct {
	HitBytes    uint64
	MissBytes   uint64
	HeaderBytes uint64
}

// add accumulates other's counters into s.
func (s *EncodeStats) add(other EncodeStats) {
	s.HitBytes += other.HitBytes
	s.MissBytes += other.MissBytes
	s.HeaderBytes += other.HeaderBytes
}

// EncodeChunk runs the two-pass encoder over one chunk of file, starting
// at offset, against the dictionary pair (even, odd), and returns the
// finalised framed chunk: a 4-byte big-endian total length, the even and
// odd dictionary headers, then the bit-packed body; plus the byte-category
// accounting for that chunk.
//
// The first (dry) pass computes usage counts and rewinds; PurgeUnused then
// prunes both dictionaries so only referenced indices are serialised; the
// second (real) pass re-runs the identical loop and emits bytes.
func EncodeChunk(file *os.File, offset uint64, even, odd *Dictionary) ([]byte, EncodeStats, error) {
	dicts := [2]*Dictionary{even, odd}

	if err := runEncodeLoop(file, offset, dicts, true, nil, nil); err != nil {
		return nil, EncodeStats{}, err
	}
	even.PurgeUnused()
	odd.PurgeUnused()

	body := &bytes.Buffer{}
	stats := EncodeStats{HeaderBytes: uint64(even.SizeInBytes() + odd.SizeInBytes())}
	if err := runEncodeLoop(file, offset, dicts, false, body, &stats); err != nil {
		return nil, EncodeStats{}, err
	}

	header := make([]byte, 0, even.SizeInBytes()+odd.SizeInBytes())
	header = append(header, even.Serialize()...)
	header = append(header, odd.Serialize()...)

	total := uint64(4 + len(header) + body.Len())
	lenBytes, err := encodeBE(total, 4)
	if err != nil {
		return nil, EncodeStats{}, err
	}

	frame := make([]byte, 0, total)
	frame = append(frame, lenBytes...)
	frame = append(frame, header...)
	frame = append(frame, body.Bytes()...)
	return frame, stats, nil
}

// runEncodeLoop streams dicts[0].Coverage() bytes of file starting at
// offset through the alternating-phase hit/miss state machine of spec
// §4.5. When dry is true no bytes are emitted; hits are translated into
// IncrementUsage calls instead (stats is unused and may be nil). When dry
// is false, hits and miss runs are written to out and stats.HitBytes/
// MissBytes are accumulated accordingly.
func runEncodeLoop(file *os.File, offset uint64, dicts [2]*Dictionary, dry bool, out *bytes.Buffer, stats *EncodeStats) error {
	if _, err := file.Seek(int64(offset), io.SeekStart); err != nil {
		return ioErrorf("seek to %d: %v", offset, err)
	}

	coverage := dicts[0].Coverage()
	var read uint64
	phase := 0
	var hits []byte
	var miss []byte
	var window [2]byte

	flushHits := func(source *Dictionary) error {
		switch {
		case len(hits) >= 2:
			if dry {
				for _, tok := range hits {
					if err := source.IncrementUsage(tok & 0x7F); err != nil {
						return err
					}
				}
			} else {
				stats.MissBytes += uint64(flushMissRun(out, &miss))
				stats.HitBytes += uint64(elemBytes * len(hits))
				out.Write(hits)
			}
		case len(hits) == 1:
			idx := hits[0] & 0x7F
			pair, err := source.Get(idx)
			if err != nil {
				return err
			}
			miss = append(miss, pair[0], pair[1])
		}
		hits = hits[:0]
		return nil
	}

	for read < coverage {
		if coverage-read < 2 {
			break
		}
		if _, err := io.ReadFull(file, window[:]); err != nil {
			return ioErrorf("read chunk body at %d: %v", offset+read, err)
		}
		read += 2

		if idx, ok := dicts[phase].Lookup(window); ok {
			hits = append(hits, 0x80|idx)
			continue
		}

		if err := flushHits(dicts[phase]); err != nil {
			return err
		}
		if _, err := file.Seek(-1, io.SeekCurrent); err != nil {
			return ioErrorf("rewind: %v", err)
		}
		read--
		if !dry {
			miss = append(miss, window[0])
		}
		phase ^= 1
	}

	if err := flushHits(dicts[phase]); err != nil {
		return err
	}

	if !dry && coverage-read == 1 {
		var tail [1]byte
		if _, err := io.ReadFull(file, tail[:]); err != nil {
			return ioErrorf("read chunk tail byte: %v", err)
		}
		miss = append(miss, tail[0])
	}

	if !dry {
		stats.MissBytes += uint64(flushMissRun(out, &miss))
	}
	return nil
}

// flushMissRun emits the accumulated miss buffer to out using the
// miss-run framing of spec §4.5, then clears it and returns the number of
// raw data bytes written (excluding the run's own length framing). A
// no-op returning 0 on an empty buffer.
func flushMissRun(out *bytes.Buffer, miss *[]byte) int {
	m := len(*miss)
	if m == 0 {
		return 0
	}
	if m < valuesHalf {
		out.WriteByte(0x40 | byte(m))
	} else {
		n := bytesToRepresent(uint64(m))
		out.WriteByte(n)
		lenBytes, _ := encodeBE(uint64(m), n)
		out.Write(lenBytes)
	}
	out.Write(*miss)
	*miss = (*miss)[:0]
	return m
}

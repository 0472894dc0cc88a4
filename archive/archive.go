package archive

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"scnpack"
)

// entrySize is the fixed width of one directory record: a u32 offset, a u32
// size, and 8 reserved zero bytes.
const entrySize = 16

// Entry is one directory record: a script's byte range within the
// decompressed archive payload.
type Entry struct {
	Offset uint32
	Size   uint32
}

// DefaultKnownBad names script indices that the reference tool's own
// scenario_pack.rs special-cases as "expected to fail parsing" (entry 352 in
// Cross Channel: Final Complete's sn.bin) so their parse error is logged at
// INFO rather than ERROR. Callers packaging a different title's archive
// should pass their own set.
var DefaultKnownBad = map[int]bool{352: true}

// SplitDirectory reads the directory at the front of a decompressed archive
// payload and returns each entry alongside its raw script bytes. Per the
// format, entry 0's offset equals the total directory size (16 * n), which
// is also the loop bound: the directory is self-describing, with no separate
// count field.
func SplitDirectory(data []byte) ([]Entry, [][]byte, error) {
	if len(data) < 4 {
		return nil, nil, errShortInput(len(data))
	}
	dirSize := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24

	var entries []Entry
	var scripts [][]byte
	for offset := uint32(0); offset < dirSize; offset += entrySize {
		if int(offset+8) > len(data) {
			return nil, nil, errShortInput(len(data))
		}
		entryOffset := u32le(data, offset)
		entrySizeVal := u32le(data, offset+4)
		if int(entryOffset+entrySizeVal) > len(data) {
			return nil, nil, errShortInput(len(data))
		}
		entries = append(entries, Entry{Offset: entryOffset, Size: entrySizeVal})
		scripts = append(scripts, data[entryOffset:entryOffset+entrySizeVal])
	}
	return entries, scripts, nil
}

func u32le(data []byte, offset uint32) uint32 {
	return uint32(data[offset]) | uint32(data[offset+1])<<8 |
		uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
}

// BuildDirectory assembles the directory-plus-concatenated-scripts payload
// from each script's already-serialized bytes, in entry order. script_start
// begins at 16*n (the directory's own size) and runs a prefix sum, matching
// the reference tool's recompile_scripts fold.
func BuildDirectory(scripts [][]byte) []byte {
	n := len(scripts)
	directory := make([]byte, 0, entrySize*n)
	concat := make([]byte, 0)
	scriptStart := uint32(entrySize * n)
	for _, s := range scripts {
		directory = appendU32LE(directory, scriptStart)
		directory = appendU32LE(directory, uint32(len(s)))
		directory = append(directory, make([]byte, 8)...)
		concat = append(concat, s...)
		scriptStart += uint32(len(s))
	}
	return append(directory, concat...)
}

func appendU32LE(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// DecodedScript pairs one archive entry with its parse result. Err is
// non-nil for a script that only partially parsed; Script is still the best
// partial result available, mirroring scnpack.Parse's own (partial, error)
// contract.
type DecodedScript struct {
	Index  int
	Name   string
	Script *scnpack.Script
	Err    error
}

// ParseArchive parses every script in a decompressed archive payload,
// fanning out one goroutine per script bounded by GOMAXPROCS (the Go idiom
// for the reference tool's rayon-based par_iter). Unlike errgroup's usual
// fail-fast Wait, a per-script error never aborts the batch: each goroutine
// records its own result into its own slot, so one corrupt script never
// hides the rest. knownBad indices have their parse error logged at INFO
// instead of ERROR; pass nil to use DefaultKnownBad.
func ParseArchive(data []byte, quirks scnpack.Quirks, knownBad map[int]bool) ([]DecodedScript, error) {
	if knownBad == nil {
		knownBad = DefaultKnownBad
	}
	_, scripts, err := SplitDirectory(data)
	if err != nil {
		return nil, err
	}

	results := make([]DecodedScript, len(scripts))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, raw := range scripts {
		i, raw := i, raw
		g.Go(func() error {
			name := fmt.Sprintf("%04d", i)
			log.Debug("parsing script", "script", name)
			script, perr := scnpack.Parse(raw, quirks)
			if perr != nil {
				if knownBad[i] {
					log.Info("script did not parse correctly; this is expected", "script", name)
				} else {
					log.Error("error decoding script", "script", name, "size", len(raw), "err", perr)
				}
			}
			results[i] = DecodedScript{Index: i, Name: name, Script: script, Err: perr}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("parsed scripts in archive", "count", len(results))
	return results, nil
}

// emitResult is the per-slot outcome of emitting one script, gathered by
// Recompile before folding them into the directory in order.
type emitResult struct {
	name string
	data []byte
}

// Recompile serializes each script independently (one goroutine per script,
// bounded by GOMAXPROCS, via the same errgroup.Group.SetLimit pattern
// ParseArchive uses) and then folds the results into a directory plus
// concatenated script bytes, in the original order. The fold itself is
// inherently sequential state (each entry's offset depends on every prior
// entry's length), so only the per-script Emit is parallel. Unlike
// ParseArchive, a failed Emit does abort the batch via errgroup's fail-fast
// Wait: a script that can't be serialized has no partial result worth
// keeping.
func Recompile(names []string, scripts []*scnpack.Script) ([]byte, error) {
	if len(names) != len(scripts) {
		return nil, fmt.Errorf("archive: %d names for %d scripts", len(names), len(scripts))
	}

	results := make([]emitResult, len(scripts))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, script := range scripts {
		i, script := i, script
		g.Go(func() error {
			log.Debug("serializing script", "script", names[i])
			data, err := script.Emit()
			if err != nil {
				return fmt.Errorf("archive: serializing %s: %w", names[i], err)
			}
			results[i] = emitResult{name: names[i], data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	serialized := make([][]byte, len(results))
	for i, r := range results {
		serialized[i] = r.data
	}
	return BuildDirectory(serialized), nil
}

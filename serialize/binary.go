// Package serialize reads and writes the hypergraph's binary wire
// format and reads (load-only) two JSON schemas, dispatching on the
// first non-whitespace byte (spec §4.C).
package serialize

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/rs/zerolog/log"
)

func debug(args ...any) {
	log.Debug().Msg("[Serialize] " + fmt.Sprint(args...))
}

// Magic and Version identify the binary format (spec §4.C): the
// little-endian bytes of the ASCII string "HGR1".
const (
	Magic   uint32 = 0x31524748
	Version uint32 = 1
)

// Save writes store to w in the binary format, byte-exact to spec
// §4.C: magic, version, N, M, per-edge size+vertices, has_labels flag,
// and (always, per spec) the label vector.
func Save(w io.Writer, store *hypergraph.Store) error {
	bw := bufio.NewWriter(w)

	n := uint64(store.NumVertices())
	m := uint64(store.NumEdges())

	if err := writeAll(bw, Magic, Version, n, m); err != nil {
		return err
	}

	for e := uint64(0); e < m; e++ {
		verts, err := store.Hyperedge(uint32(e))
		if err != nil {
			return fmt.Errorf("%w: reading edge %d: %v", hyperlperr.ErrIO, e, err)
		}
		if err := writeAll(bw, uint64(len(verts))); err != nil {
			return err
		}
		for _, v := range verts {
			if err := writeAll(bw, uint64(v)); err != nil {
				return err
			}
		}
	}

	if err := writeAll(bw, uint8(1)); err != nil {
		return err
	}
	for _, lab := range store.Labels() {
		if err := writeAll(bw, lab); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing output: %v", hyperlperr.ErrIO, err)
	}
	debug(fmt.Sprintf("saved hypergraph: N=%d M=%d", n, m))
	return nil
}

// writeAll encodes each value in order as little-endian fixed-width
// fields and writes them to w, wrapping any failure as hyperlperr.ErrIO.
func writeAll(w io.Writer, values ...any) error {
	for _, v := range values {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: %v", hyperlperr.ErrIO, err)
		}
	}
	return nil
}

// LoadBinary reads the binary format from r into a new Store.
// Unrecognized magic/version, truncation, or a structural precondition
// violation during reconstruction all surface as hyperlperr.ErrFormat.
func LoadBinary(r io.Reader) (*hypergraph.Store, error) {
	br := bufio.NewReader(r)

	var magic, version uint32
	var n, m uint64
	if err := readAll(br, &magic, &version, &n, &m); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%x", hyperlperr.ErrFormat, magic)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", hyperlperr.ErrFormat, version)
	}

	store := hypergraph.New(uint32(n))
	for e := uint64(0); e < m; e++ {
		var size uint64
		if err := readAll(br, &size); err != nil {
			return nil, err
		}
		verts := make([]uint32, size)
		for i := range verts {
			var v uint64
			if err := readAll(br, &v); err != nil {
				return nil, err
			}
			verts[i] = uint32(v)
		}
		if _, err := store.AddHyperedge(verts); err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", hyperlperr.ErrFormat, e, err)
		}
	}

	var hasLabels uint8
	if err := readAll(br, &hasLabels); err != nil {
		return nil, err
	}
	if hasLabels != 0 {
		labels := make([]int32, n)
		for i := range labels {
			if err := readAll(br, &labels[i]); err != nil {
				return nil, err
			}
		}
		if err := store.SetLabels(labels); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}

	debug(fmt.Sprintf("loaded hypergraph: N=%d M=%d", n, m))
	return store, nil
}

// readAll decodes each destination in order as little-endian
// fixed-width fields, wrapping EOF/truncation and any other read
// failure as hyperlperr.ErrFormat (truncation is a format error per
// spec §4.C, not a generic I/O error).
func readAll(r io.Reader, dests ...any) error {
	for _, d := range dests {
		if err := binary.Read(r, binary.LittleEndian, d); err != nil {
			return fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}
	return nil
}

// SaveFile opens path for writing and calls Save.
func SaveFile(path string, store *hypergraph.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", hyperlperr.ErrIO, path, err)
	}
	defer f.Close()
	if err := Save(f, store); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadFile opens path and dispatches to LoadAny.
func LoadFile(path string) (*hypergraph.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", hyperlperr.ErrIO, path, err)
	}
	defer f.Close()
	store, err := LoadAny(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

package serialize

import (
	"bufio"
	"fmt"
	"io"
	"unicode"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
)

// jsonReader is a minimal hand-rolled streaming reader for the two
// supported JSON schemas (spec §4.C). encoding/json's Decoder cannot
// preserve the first-seen-order vertex-id assignment the
// HyperNetX-like schema needs, so tokens are read by hand the same way
// the original's JsonIn helper does.
type jsonReader struct {
	br *bufio.Reader
}

func (j *jsonReader) skipWS() error {
	for {
		b, err := j.br.Peek(1)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
		if !unicode.IsSpace(rune(b[0])) {
			return nil
		}
		if _, err := j.br.Discard(1); err != nil {
			return fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}
}

func (j *jsonReader) expect(ch byte) error {
	if err := j.skipWS(); err != nil {
		return err
	}
	b, err := j.br.ReadByte()
	if err != nil || b != ch {
		return fmt.Errorf("%w: expected %q", hyperlperr.ErrFormat, ch)
	}
	return nil
}

func (j *jsonReader) tryConsume(ch byte) (bool, error) {
	if err := j.skipWS(); err != nil {
		return false, err
	}
	b, err := j.br.Peek(1)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
	}
	if b[0] == ch {
		_, _ = j.br.Discard(1)
		return true, nil
	}
	return false, nil
}

func (j *jsonReader) parseString() (string, error) {
	if err := j.skipWS(); err != nil {
		return "", err
	}
	if b, err := j.br.ReadByte(); err != nil || b != '"' {
		return "", fmt.Errorf("%w: expected string", hyperlperr.ErrFormat)
	}
	var out []byte
	for {
		b, err := j.br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("%w: unterminated string", hyperlperr.ErrFormat)
		}
		if b == '"' {
			break
		}
		if b == '\\' {
			e, err := j.br.ReadByte()
			if err != nil {
				return "", fmt.Errorf("%w: bad escape", hyperlperr.ErrFormat)
			}
			switch e {
			case '"', '\\', '/':
				out = append(out, e)
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", fmt.Errorf("%w: unsupported escape %q", hyperlperr.ErrFormat, e)
			}
			continue
		}
		out = append(out, b)
	}
	return string(out), nil
}

func (j *jsonReader) parseUint() (uint64, error) {
	if err := j.skipWS(); err != nil {
		return 0, err
	}
	var v uint64
	sawDigit := false
	for {
		b, err := j.br.Peek(1)
		if err != nil || b[0] < '0' || b[0] > '9' {
			break
		}
		v = v*10 + uint64(b[0]-'0')
		sawDigit = true
		_, _ = j.br.Discard(1)
	}
	if !sawDigit {
		return 0, fmt.Errorf("%w: expected unsigned integer", hyperlperr.ErrFormat)
	}
	return v, nil
}

// skipValue consumes and discards one JSON value (object, array,
// string, or bare token) without interpreting it. Used for fields this
// schema reader does not need (node-data attributes, hypergraph-data).
func (j *jsonReader) skipValue() error {
	if err := j.skipWS(); err != nil {
		return err
	}
	b, err := j.br.Peek(1)
	if err != nil {
		return fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
	}
	switch b[0] {
	case '"':
		_, err := j.parseString()
		return err
	case '{':
		return j.skipBracketed('{', '}')
	case '[':
		return j.skipBracketed('[', ']')
	default:
		for {
			b, err := j.br.Peek(1)
			if err != nil {
				return nil
			}
			c := b[0]
			if unicode.IsSpace(rune(c)) || c == ',' || c == '}' || c == ']' {
				return nil
			}
			_, _ = j.br.Discard(1)
		}
	}
}

func (j *jsonReader) skipBracketed(open, close byte) error {
	depth := 0
	for {
		b, err := j.br.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: unterminated value", hyperlperr.ErrFormat)
		}
		switch b {
		case open:
			depth++
		case close:
			depth--
		case '"':
			for {
				c, err := j.br.ReadByte()
				if err != nil {
					return fmt.Errorf("%w: unterminated string while skipping", hyperlperr.ErrFormat)
				}
				if c == '\\' {
					if _, err := j.br.ReadByte(); err != nil {
						return fmt.Errorf("%w: bad escape while skipping", hyperlperr.ErrFormat)
					}
					continue
				}
				if c == '"' {
					break
				}
			}
		}
		if depth == 0 {
			return nil
		}
	}
}

// LoadJSON reads one of the two load-only JSON schemas (spec §4.C)
// from r: dense (num_vertices/edges/labels) or HyperNetX-like
// (type/node-data/edge-dict, vertex ids assigned in first-seen order).
func LoadJSON(r io.Reader) (*hypergraph.Store, error) {
	j := &jsonReader{br: bufio.NewReader(r)}

	if err := j.skipWS(); err != nil {
		return nil, err
	}
	ok, err := j.tryConsume('{')
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: expected '{'", hyperlperr.ErrFormat)
	}

	var numVertices uint64
	var denseEdges [][]uint32
	var labels []int32

	sawHyperNetX := false
	idmap := map[string]uint32{}
	var idOrder []string
	ensureID := func(sid string) uint32 {
		if id, ok := idmap[sid]; ok {
			return id
		}
		id := uint32(len(idOrder))
		idmap[sid] = id
		idOrder = append(idOrder, sid)
		return id
	}
	var hnEdges [][]uint32

	first := true
	for {
		if err := j.skipWS(); err != nil {
			return nil, err
		}
		closed, err := j.tryConsume('}')
		if err != nil {
			return nil, err
		}
		if closed {
			break
		}
		if !first {
			if err := j.expect(','); err != nil {
				return nil, err
			}
		}
		key, err := j.parseString()
		if err != nil {
			return nil, err
		}
		if err := j.expect(':'); err != nil {
			return nil, err
		}

		switch key {
		case "num_vertices", "vertices", "numVertices":
			v, err := j.parseUint()
			if err != nil {
				return nil, err
			}
			if v == 0 {
				return nil, fmt.Errorf("%w: num_vertices must be > 0", hyperlperr.ErrFormat)
			}
			numVertices = v

		case "edges", "hyperedges":
			edges, err := j.parseDenseEdges()
			if err != nil {
				return nil, err
			}
			denseEdges = edges

		case "labels":
			ls, err := j.parseLabels()
			if err != nil {
				return nil, err
			}
			labels = ls

		case "type":
			v, err := j.parseString()
			if err != nil {
				return nil, err
			}
			if v == "hypergraph" {
				sawHyperNetX = true
			}

		case "hypergraph-data":
			if err := j.skipValue(); err != nil {
				return nil, err
			}

		case "node-data":
			if err := j.expect('{'); err != nil {
				return nil, err
			}
			ndFirst := true
			for {
				closed, err := j.tryConsume('}')
				if err != nil {
					return nil, err
				}
				if closed {
					break
				}
				if !ndFirst {
					if err := j.expect(','); err != nil {
						return nil, err
					}
				}
				nid, err := j.parseString()
				if err != nil {
					return nil, err
				}
				ensureID(nid)
				if err := j.expect(':'); err != nil {
					return nil, err
				}
				if err := j.skipValue(); err != nil {
					return nil, err
				}
				ndFirst = false
			}
			sawHyperNetX = true

		case "edge-dict":
			if err := j.expect('{'); err != nil {
				return nil, err
			}
			edFirst := true
			for {
				closed, err := j.tryConsume('}')
				if err != nil {
					return nil, err
				}
				if closed {
					break
				}
				if !edFirst {
					if err := j.expect(','); err != nil {
						return nil, err
					}
				}
				if _, err := j.parseString(); err != nil { // edge id, unused
					return nil, err
				}
				if err := j.expect(':'); err != nil {
					return nil, err
				}
				if err := j.expect('['); err != nil {
					return nil, err
				}
				var evec []uint32
				arrFirst := true
				for {
					closed, err := j.tryConsume(']')
					if err != nil {
						return nil, err
					}
					if closed {
						break
					}
					if !arrFirst {
						if err := j.expect(','); err != nil {
							return nil, err
						}
					}
					nid, err := j.parseString()
					if err != nil {
						return nil, err
					}
					evec = append(evec, ensureID(nid))
					arrFirst = false
				}
				if len(evec) == 0 {
					return nil, fmt.Errorf("%w: hyperedge cannot be empty", hyperlperr.ErrFormat)
				}
				hnEdges = append(hnEdges, evec)
				edFirst = false
			}
			sawHyperNetX = true

		default:
			if err := j.skipValue(); err != nil {
				return nil, err
			}
		}
		first = false
	}

	if sawHyperNetX {
		nv := uint32(len(idOrder))
		if nv == 0 {
			return nil, fmt.Errorf("%w: no vertices found in node-data/edge-dict", hyperlperr.ErrFormat)
		}
		store := hypergraph.New(nv)
		for _, e := range hnEdges {
			if _, err := store.AddHyperedge(e); err != nil {
				return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
			}
		}
		if len(labels) > 0 {
			if uint32(len(labels)) != nv {
				return nil, fmt.Errorf("%w: labels size must equal number of vertices", hyperlperr.ErrFormat)
			}
			if err := store.SetLabels(labels); err != nil {
				return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
			}
		}
		debug(fmt.Sprintf("loaded HyperNetX-like JSON hypergraph: N=%d M=%d", nv, len(hnEdges)))
		return store, nil
	}

	if numVertices == 0 {
		return nil, fmt.Errorf("%w: missing/invalid num_vertices", hyperlperr.ErrFormat)
	}
	store := hypergraph.New(uint32(numVertices))
	for _, e := range denseEdges {
		if _, err := store.AddHyperedge(e); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}
	if len(labels) > 0 {
		if uint64(len(labels)) != numVertices {
			return nil, fmt.Errorf("%w: labels size must equal num_vertices", hyperlperr.ErrFormat)
		}
		if err := store.SetLabels(labels); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}
	debug(fmt.Sprintf("loaded dense JSON hypergraph: N=%d M=%d", numVertices, len(denseEdges)))
	return store, nil
}

func (j *jsonReader) parseDenseEdges() ([][]uint32, error) {
	if err := j.expect('['); err != nil {
		return nil, err
	}
	var edges [][]uint32
	outerFirst := true
	for {
		closed, err := j.tryConsume(']')
		if err != nil {
			return nil, err
		}
		if closed {
			break
		}
		if !outerFirst {
			if err := j.expect(','); err != nil {
				return nil, err
			}
		}
		if err := j.expect('['); err != nil {
			return nil, err
		}
		var e []uint32
		innerFirst := true
		for {
			closed, err := j.tryConsume(']')
			if err != nil {
				return nil, err
			}
			if closed {
				break
			}
			if !innerFirst {
				if err := j.expect(','); err != nil {
					return nil, err
				}
			}
			v, err := j.parseUint()
			if err != nil {
				return nil, err
			}
			e = append(e, uint32(v))
			innerFirst = false
		}
		if len(e) == 0 {
			return nil, fmt.Errorf("%w: hyperedge cannot be empty", hyperlperr.ErrFormat)
		}
		edges = append(edges, e)
		outerFirst = false
	}
	return edges, nil
}

func (j *jsonReader) parseLabels() ([]int32, error) {
	if err := j.expect('['); err != nil {
		return nil, err
	}
	var labels []int32
	first := true
	for {
		closed, err := j.tryConsume(']')
		if err != nil {
			return nil, err
		}
		if closed {
			break
		}
		if !first {
			if err := j.expect(','); err != nil {
				return nil, err
			}
		}
		v, err := j.parseUint()
		if err != nil {
			return nil, err
		}
		labels = append(labels, int32(v))
		first = false
	}
	return labels, nil
}

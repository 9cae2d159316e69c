package serialize

import (
	"bufio"
	"fmt"
	"io"
	"unicode"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
)

// LoadAny sniffs the first non-whitespace byte of r: '{' selects the
// JSON loader, anything else selects the binary loader (spec §4.C).
func LoadAny(r io.Reader) (*hypergraph.Store, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
		if !unicode.IsSpace(rune(b[0])) {
			break
		}
		if _, err := br.Discard(1); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
		}
	}

	b, err := br.Peek(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hyperlperr.ErrFormat, err)
	}
	if b[0] == '{' {
		debug("detected JSON format")
		return LoadJSON(br)
	}
	debug("detected binary format")
	return LoadBinary(br)
}

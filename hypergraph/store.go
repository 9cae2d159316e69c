// Package hypergraph implements the owning aggregate for a hypergraph:
// vertices, hyperedges, incidence lists, and the vertex label vector.
package hypergraph

import (
	"fmt"
	"sync"

	"github.com/hyperlp/hyperlp/csr"
	"github.com/rs/zerolog/log"
)

func debug(args ...any) {
	log.Debug().Msg("[Hypergraph] " + fmt.Sprint(args...))
}

// Store is the owning hypergraph aggregate. N is fixed at construction;
// hyperedges and labels may be mutated until Freeze is called, after
// which structural mutation is disallowed.
//
// Vertex ids and edge ids are both plain uint32 indices into their
// respective id spaces [0,N) and [0,M).
type Store struct {
	mu sync.RWMutex

	numVertices uint32
	edges       [][]uint32 // edges[e] = vertices of hyperedge e, insertion order
	incident    [][]uint32 // incident[v] = edge ids containing v, in insertion order
	degrees     []uint32
	edgeSizes   []uint32
	labels      []int32

	frozen bool
	flat   *csr.FlatView // cached after Freeze
}

// New returns an empty Store with n vertices. Degrees, incidence
// lists, and labels are all zero-initialized.
func New(n uint32) *Store {
	return &Store{
		numVertices: n,
		incident:    make([][]uint32, n),
		degrees:     make([]uint32, n),
		labels:      make([]int32, n),
	}
}

// NumVertices returns N.
func (s *Store) NumVertices() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numVertices
}

// NumEdges returns M, the number of hyperedges added so far.
func (s *Store) NumEdges() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint32(len(s.edges))
}

// AddHyperedge appends a new hyperedge containing the given vertices,
// in the given order. Fails if vs is empty, any id is >= N, the edge
// contains a duplicate vertex, or the store is frozen.
func (s *Store) AddHyperedge(vs []uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return 0, ErrFrozen
	}
	if len(vs) == 0 {
		return 0, fmt.Errorf("%w: hyperedge must not be empty", ErrInvalidArgument)
	}
	seen := make(map[uint32]struct{}, len(vs))
	for _, v := range vs {
		if v >= s.numVertices {
			return 0, fmt.Errorf("%w: vertex id %d out of range [0,%d)", ErrInvalidArgument, v, s.numVertices)
		}
		if _, dup := seen[v]; dup {
			return 0, fmt.Errorf("%w: duplicate vertex id %d within one hyperedge", ErrInvalidArgument, v)
		}
		seen[v] = struct{}{}
	}

	edgeID := uint32(len(s.edges))
	stored := make([]uint32, len(vs))
	copy(stored, vs)
	s.edges = append(s.edges, stored)
	s.edgeSizes = append(s.edgeSizes, uint32(len(vs)))

	for _, v := range vs {
		s.incident[v] = append(s.incident[v], edgeID)
		s.degrees[v]++
	}

	return edgeID, nil
}

// SetLabels replaces the label vector. Fails if the length doesn't
// match N or the store is frozen.
func (s *Store) SetLabels(ls []int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrFrozen
	}
	if uint32(len(ls)) != s.numVertices {
		return fmt.Errorf("%w: labels length %d does not match num_vertices %d", ErrInvalidArgument, len(ls), s.numVertices)
	}
	s.labels = make([]int32, len(ls))
	copy(s.labels, ls)
	return nil
}

// Hyperedge returns a copy of the vertices of edge e, in insertion
// order.
func (s *Store) Hyperedge(e uint32) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e >= uint32(len(s.edges)) {
		return nil, fmt.Errorf("%w: edge id %d", ErrOutOfRange, e)
	}
	out := make([]uint32, len(s.edges[e]))
	copy(out, s.edges[e])
	return out, nil
}

// IncidentEdges returns a copy of the edge ids incident to v, ordered
// by EdgeId (equivalently, by insertion order of the edges).
func (s *Store) IncidentEdges(v uint32) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v >= s.numVertices {
		return nil, fmt.Errorf("%w: vertex id %d", ErrOutOfRange, v)
	}
	out := make([]uint32, len(s.incident[v]))
	copy(out, s.incident[v])
	return out, nil
}

// Labels returns a copy of the current label vector.
func (s *Store) Labels() []int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int32, len(s.labels))
	copy(out, s.labels)
	return out
}

// Degrees returns a copy of the per-vertex degree array.
func (s *Store) Degrees() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint32, len(s.degrees))
	copy(out, s.degrees)
	return out
}

// EdgeSizes returns a copy of the per-edge size array.
func (s *Store) EdgeSizes() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint32, len(s.edgeSizes))
	copy(out, s.edgeSizes)
	return out
}

// Frozen reports whether Freeze has been called.
func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// EdgeVertices returns the raw (non-copied) backing slice for edge e's
// vertices. Intended for csr.Build via the Source interface only;
// callers must not mutate the returned slice. The caller (csr.Build)
// is only ever invoked with 0 <= e < NumEdges.
func (s *Store) EdgeVertices(e uint32) []uint32 {
	return s.edges[e]
}

// VertexIncidence returns the raw (non-copied) backing slice for v's
// incidence list. Intended for csr.Build via the Source interface
// only; callers must not mutate the returned slice.
func (s *Store) VertexIncidence(v uint32) []uint32 {
	return s.incident[v]
}

// Freeze builds and caches the flat (CSR) view of the store,
// idempotently. After the first call, structural mutations
// (AddHyperedge, SetLabels) are disallowed.
func (s *Store) Freeze() *csr.FlatView {
	s.mu.Lock()
	if s.frozen {
		flat := s.flat
		s.mu.Unlock()
		return flat
	}
	s.mu.Unlock()

	// Build reads through the Source interface, whose NumVertices and
	// NumEdges take the read lock per call; do this without holding the
	// write lock to avoid deadlocking against them. EdgeVertices and
	// VertexIncidence take no lock.
	flat := csr.Build(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.frozen {
		s.flat = flat
		s.frozen = true
	}
	debug(fmt.Sprintf("froze hypergraph: N=%d M=%d", s.numVertices, len(s.edges)))
	return s.flat
}

// WriteBackLabels overwrites the label vector unconditionally,
// bypassing the length check in SetLabels (the caller, engine.Backend,
// always supplies a slice of length N produced from this same store).
// Used only after a propagation run to copy the final vertex labels
// back into the store (§4.F step 4).
func (s *Store) WriteBackLabels(ls []int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debug(fmt.Sprintf("writing back %d labels", len(ls)))
	s.labels = ls
}

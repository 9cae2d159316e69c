// Package csr builds the compressed-sparse-row "flat view" of a
// hypergraph: two offset/value array pairs (edges->vertices and
// vertices->edges) plus per-edge sizes. It is the exclusive
// representation consumed by planner and kernel.
package csr

// Source is the minimal read-only accessor set csr.Build needs from a
// hypergraph store. hypergraph.Store implements this; csr does not
// import hypergraph, avoiding an import cycle.
type Source interface {
	NumVertices() uint32
	NumEdges() uint32
	EdgeVertices(e uint32) []uint32
	VertexIncidence(v uint32) []uint32
}

// FlatView is the CSR pair described in spec §4.B. Once built it is
// read-only for the lifetime of the graph.
type FlatView struct {
	// EdgeVertices is the concatenation of hyperedges in EdgeId order.
	EdgeVertices []uint32
	// EdgeOffsets has length M+1; EdgeOffsets[M] == len(EdgeVertices).
	EdgeOffsets []uint32
	// VertexEdges is the concatenation of incidence lists in VertexId
	// order, each incidence list sorted by EdgeId (insertion order).
	VertexEdges []uint32
	// VertexOffsets has length N+1; VertexOffsets[N] == len(VertexEdges).
	VertexOffsets []uint32
	// EdgeSizes[e] == EdgeOffsets[e+1] - EdgeOffsets[e].
	EdgeSizes []uint32
}

// Build deterministically materializes the flat view of src: hyperedge
// vertices are emitted in insertion order per edge, and incidence
// lists are emitted in the order their edges were inserted globally.
func Build(src Source) *FlatView {
	n := src.NumVertices()
	m := src.NumEdges()

	flat := &FlatView{
		EdgeOffsets:   make([]uint32, m+1),
		VertexOffsets: make([]uint32, n+1),
		EdgeSizes:     make([]uint32, m),
	}

	edgeTotal := uint32(0)
	for e := uint32(0); e < m; e++ {
		vs := src.EdgeVertices(e)
		flat.EdgeOffsets[e] = edgeTotal
		flat.EdgeSizes[e] = uint32(len(vs))
		edgeTotal += uint32(len(vs))
	}
	flat.EdgeOffsets[m] = edgeTotal
	flat.EdgeVertices = make([]uint32, 0, edgeTotal)
	for e := uint32(0); e < m; e++ {
		flat.EdgeVertices = append(flat.EdgeVertices, src.EdgeVertices(e)...)
	}

	vertexTotal := uint32(0)
	for v := uint32(0); v < n; v++ {
		es := src.VertexIncidence(v)
		flat.VertexOffsets[v] = vertexTotal
		vertexTotal += uint32(len(es))
	}
	flat.VertexOffsets[n] = vertexTotal
	flat.VertexEdges = make([]uint32, 0, vertexTotal)
	for v := uint32(0); v < n; v++ {
		flat.VertexEdges = append(flat.VertexEdges, src.VertexIncidence(v)...)
	}

	return flat
}

// Edge returns the vertex slice for edge e as stored in the flat view
// (a sub-slice, not a copy).
func (f *FlatView) Edge(e uint32) []uint32 {
	return f.EdgeVertices[f.EdgeOffsets[e]:f.EdgeOffsets[e+1]]
}

// VertexIncidence returns the edge-id slice incident to v as stored in
// the flat view (a sub-slice, not a copy).
func (f *FlatView) VertexIncidence(v uint32) []uint32 {
	return f.VertexEdges[f.VertexOffsets[v]:f.VertexOffsets[v+1]]
}

// NumEdges and NumVertices report the sizes implied by the offset
// arrays.
func (f *FlatView) NumEdges() uint32    { return uint32(len(f.EdgeOffsets) - 1) }
func (f *FlatView) NumVertices() uint32 { return uint32(len(f.VertexOffsets) - 1) }

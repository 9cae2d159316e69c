// Package genhg implements the random hypergraph generators and the
// RNG convention from the original source's hypergraph_generators
// namespace, supplementing spec.md's distilled CLI surface with the
// full generator set it only gestures at.
package genhg

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
)

// newRNG mirrors the original's make_rng(seed): seed 0 draws fresh
// entropy (there, std::random_device; here, crypto/rand) instead of
// using a fixed, reproducible seed.
func newRNG(seed uint64) *mrand.Rand {
	if seed == 0 {
		var buf [16]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing is a platform-level problem this
			// package cannot recover from or meaningfully propagate
			// as a configuration error.
			panic("genhg: crypto/rand unavailable: " + err.Error())
		}
		seed1 := binary.LittleEndian.Uint64(buf[:8])
		seed2 := binary.LittleEndian.Uint64(buf[8:])
		return mrand.New(mrand.NewPCG(seed1, seed2))
	}
	return mrand.New(mrand.NewPCG(seed, seed))
}

// sampleUniqueVertices draws k distinct vertex ids from [0,numVertices)
// uniformly at random, mirroring sample_unique_vertices.
func sampleUniqueVertices(rng *mrand.Rand, numVertices, k int) ([]uint32, error) {
	if k > numVertices {
		return nil, fmt.Errorf("%w: edge size %d exceeds number of vertices %d", hyperlperr.ErrConfig, k, numVertices)
	}
	seen := make(map[uint32]struct{}, k)
	out := make([]uint32, 0, k)
	for len(out) < k {
		v := uint32(rng.IntN(numVertices))
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// sampleUniqueFromPool draws k distinct vertex ids from pool uniformly
// at random (without replacement), mirroring sample_unique_from_pool.
func sampleUniqueFromPool(rng *mrand.Rand, pool []uint32, k int) ([]uint32, error) {
	if k > len(pool) {
		return nil, fmt.Errorf("%w: edge size %d exceeds pool size %d", hyperlperr.ErrConfig, k, len(pool))
	}
	shuffled := make([]uint32, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	out := make([]uint32, k)
	copy(out, shuffled[:k])
	return out, nil
}

func validateSizeRange(minSize, maxSize int) error {
	if minSize < 2 {
		return fmt.Errorf("%w: min_edge_size must be >= 2", hyperlperr.ErrConfig)
	}
	if maxSize < minSize {
		return fmt.Errorf("%w: max_edge_size must be >= min_edge_size", hyperlperr.ErrConfig)
	}
	return nil
}

func validateCounts(numVertices, numEdges int) error {
	if numVertices <= 0 {
		return fmt.Errorf("%w: num_vertices must be > 0", hyperlperr.ErrConfig)
	}
	if numEdges <= 0 {
		return fmt.Errorf("%w: num_edges must be > 0", hyperlperr.ErrConfig)
	}
	return nil
}

// Uniform generates a hypergraph with numEdges edges, each of a size
// drawn uniformly from [minSize,maxSize], vertices sampled without
// replacement, mirroring generate_uniform.
func Uniform(numVertices, numEdges, minSize, maxSize int, seed uint64) (*hypergraph.Store, error) {
	if err := validateCounts(numVertices, numEdges); err != nil {
		return nil, err
	}
	if err := validateSizeRange(minSize, maxSize); err != nil {
		return nil, err
	}

	store := hypergraph.New(uint32(numVertices))
	rng := newRNG(seed)
	span := maxSize - minSize + 1
	for e := 0; e < numEdges; e++ {
		k := minSize + rng.IntN(span)
		verts, err := sampleUniqueVertices(rng, numVertices, k)
		if err != nil {
			return nil, err
		}
		if _, err := store.AddHyperedge(verts); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrConfig, err)
		}
	}
	return store, nil
}

// FixedSize generates a hypergraph with numEdges edges, each exactly
// size vertices, mirroring generate_fixed_edge_size.
func FixedSize(numVertices, numEdges, size int, seed uint64) (*hypergraph.Store, error) {
	if err := validateCounts(numVertices, numEdges); err != nil {
		return nil, err
	}
	if size < 2 {
		return nil, fmt.Errorf("%w: edge_size must be >= 2", hyperlperr.ErrConfig)
	}

	store := hypergraph.New(uint32(numVertices))
	rng := newRNG(seed)
	for e := 0; e < numEdges; e++ {
		verts, err := sampleUniqueVertices(rng, numVertices, size)
		if err != nil {
			return nil, err
		}
		if _, err := store.AddHyperedge(verts); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrConfig, err)
		}
	}
	return store, nil
}

// RandomLabels assigns each vertex a label drawn uniformly from
// [0,classes), mirroring generate_random_labels.
func RandomLabels(numVertices, classes int, seed uint64) ([]int32, error) {
	if classes <= 0 {
		return nil, fmt.Errorf("%w: num_classes must be > 0", hyperlperr.ErrConfig)
	}
	rng := newRNG(seed)
	labels := make([]int32, numVertices)
	for v := range labels {
		labels[v] = int32(rng.IntN(classes))
	}
	return labels, nil
}

// partitionByModulus assigns vertex v to community v%communities,
// mirroring the "v % num_communities" deterministic mapping shared by
// PlantedPartition and HSBM.
func partitionByModulus(numVertices, communities int) [][]uint32 {
	comms := make([][]uint32, communities)
	for v := 0; v < numVertices; v++ {
		c := v % communities
		comms[c] = append(comms[c], uint32(v))
	}
	return comms
}

// PlantedPartition generates a planted-partition hypergraph: vertices
// are split into communities by v % communities, and each edge is
// drawn "intra" (weighted sample from one community, topped up from
// outside if the community is smaller than the edge) with probability
// pIntra, else drawn uniformly over the whole vertex set, mirroring
// generate_planted_partition.
func PlantedPartition(numVertices, numEdges, communities int, pIntra float64, minSize, maxSize int, seed uint64) (*hypergraph.Store, error) {
	if err := validateCounts(numVertices, numEdges); err != nil {
		return nil, err
	}
	if communities <= 0 {
		return nil, fmt.Errorf("%w: num_communities must be > 0", hyperlperr.ErrConfig)
	}
	if err := validateSizeRange(minSize, maxSize); err != nil {
		return nil, err
	}
	if pIntra < 0 || pIntra > 1 {
		return nil, fmt.Errorf("%w: p_intra must be in [0,1]", hyperlperr.ErrConfig)
	}

	store := hypergraph.New(uint32(numVertices))
	rng := newRNG(seed)
	span := maxSize - minSize + 1
	comms := partitionByModulus(numVertices, communities)

	for e := 0; e < numEdges; e++ {
		k := minSize + rng.IntN(span)
		intra := rng.Float64() < pIntra

		var verts []uint32
		var err error
		if intra {
			verts, err = plantedIntraEdge(rng, comms, k)
		} else {
			verts, err = sampleUniqueVertices(rng, numVertices, k)
		}
		if err != nil {
			return nil, err
		}
		if _, err := store.AddHyperedge(verts); err != nil {
			return nil, fmt.Errorf("%w: %v", hyperlperr.ErrConfig, err)
		}
	}
	return store, nil
}

// plantedIntraEdge samples k vertices favoring one community, chosen
// with probability proportional to its size, topping up from the
// other communities if the chosen community is smaller than k.
func plantedIntraEdge(rng *mrand.Rand, comms [][]uint32, k int) ([]uint32, error) {
	total := 0
	for _, c := range comms {
		total += len(c)
	}
	pick := rng.IntN(total)
	idx, acc := 0, 0
	for ; idx < len(comms); idx++ {
		if pick < acc+len(comms[idx]) {
			break
		}
		acc += len(comms[idx])
	}
	if idx >= len(comms) {
		idx = len(comms) - 1
	}

	take := k
	if take > len(comms[idx]) {
		take = len(comms[idx])
	}
	verts, err := sampleUniqueFromPool(rng, comms[idx], take)
	if err != nil {
		return nil, err
	}
	if len(verts) < k {
		var pool []uint32
		for c := range comms {
			if c == idx {
				continue
			}
			pool = append(pool, comms[c]...)
		}
		extra, err := sampleUniqueFromPool(rng, pool, k-len(verts))
		if err != nil {
			return nil, err
		}
		verts = append(verts, extra...)
	}
	return verts, nil
}

// HSBM generates a hyper-stochastic-block-model hypergraph via
// rejection sampling: draw a uniform random candidate edge, accept
// with probability pIntra if all its vertices share a community
// (under the v%communities mapping) or pInter otherwise, mirroring
// generate_hsbm. Gives up with an hyperlperr.ErrResource-wrapped error
// once max(20*numEdges, 1000) candidate draws (accepted and rejected
// together) have been made without reaching numEdges edges.
func HSBM(numVertices, numEdges, communities int, pIntra, pInter float64, minSize, maxSize int, seed uint64) (*hypergraph.Store, error) {
	if err := validateCounts(numVertices, numEdges); err != nil {
		return nil, err
	}
	if communities <= 0 {
		return nil, fmt.Errorf("%w: num_communities must be > 0", hyperlperr.ErrConfig)
	}
	if err := validateSizeRange(minSize, maxSize); err != nil {
		return nil, err
	}
	if pIntra < 0 || pIntra > 1 {
		return nil, fmt.Errorf("%w: p_intra must be in [0,1]", hyperlperr.ErrConfig)
	}
	if pInter < 0 || pInter > 1 {
		return nil, fmt.Errorf("%w: p_inter must be in [0,1]", hyperlperr.ErrConfig)
	}

	store := hypergraph.New(uint32(numVertices))
	rng := newRNG(seed)
	span := maxSize - minSize + 1

	maxAttempts := numEdges * 20
	if maxAttempts < 1000 {
		maxAttempts = 1000
	}

	added, attempts := 0, 0
	for added < numEdges {
		attempts++
		if attempts > maxAttempts {
			return nil, fmt.Errorf("%w: hSBM: too many rejections; try increasing p_intra/p_inter or adjusting size range", hyperlperr.ErrResource)
		}

		k := minSize + rng.IntN(span)
		verts, err := sampleUniqueVertices(rng, numVertices, k)
		if err != nil {
			return nil, err
		}

		base := int(verts[0]) % communities
		allSame := true
		for _, v := range verts[1:] {
			if int(v)%communities != base {
				allSame = false
				break
			}
		}

		prob := pInter
		if allSame {
			prob = pIntra
		}
		if rng.Float64() < prob {
			if _, err := store.AddHyperedge(verts); err != nil {
				return nil, fmt.Errorf("%w: %v", hyperlperr.ErrConfig, err)
			}
			added++
		}
	}
	return store, nil
}

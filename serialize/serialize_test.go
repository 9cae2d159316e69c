package serialize_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hyperlp/hyperlp/hyperlperr"
	"github.com/hyperlp/hyperlp/hypergraph"
	"github.com/hyperlp/hyperlp/serialize"
)

func TestBinaryRoundTrip(t *testing.T) {
	s := hypergraph.New(5)
	mustAdd(t, s, 0, 1, 2)
	mustAdd(t, s, 2, 3)
	mustAdd(t, s, 3, 4, 0)
	if err := s.SetLabels([]int32{0, 1, 2, 3, 4}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}

	var buf bytes.Buffer
	if err := serialize.Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := serialize.LoadBinary(&buf)
	if err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}

	if loaded.NumVertices() != s.NumVertices() || loaded.NumEdges() != s.NumEdges() {
		t.Fatalf("round trip mismatch: got N=%d M=%d, want N=%d M=%d",
			loaded.NumVertices(), loaded.NumEdges(), s.NumVertices(), s.NumEdges())
	}
	for e := uint32(0); e < s.NumEdges(); e++ {
		want, _ := s.Hyperedge(e)
		got, _ := loaded.Hyperedge(e)
		if !equalSlice(want, got) {
			t.Fatalf("edge %d mismatch: want %v, got %v", e, want, got)
		}
	}
	wantLabels, gotLabels := s.Labels(), loaded.Labels()
	if !equalLabels(wantLabels, gotLabels) {
		t.Fatalf("labels mismatch: want %v, got %v", wantLabels, gotLabels)
	}
}

func TestLoadBinaryRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not a hypergraph file at all")
	if _, err := serialize.LoadBinary(buf); !errors.Is(err, hyperlperr.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestLoadBinaryRejectsTruncation(t *testing.T) {
	s := hypergraph.New(3)
	mustAdd(t, s, 0, 1, 2)
	var buf bytes.Buffer
	if err := serialize.Save(&buf, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])
	if _, err := serialize.LoadBinary(truncated); !errors.Is(err, hyperlperr.ErrFormat) {
		t.Fatalf("expected ErrFormat on truncation, got %v", err)
	}
}

func TestLoadAnyDetectsJSONByFirstByte(t *testing.T) {
	r := strings.NewReader(`  {"num_vertices": 3, "edges": [[0,1],[1,2]]}`)
	s, err := serialize.LoadAny(r)
	if err != nil {
		t.Fatalf("LoadAny: %v", err)
	}
	if s.NumVertices() != 3 || s.NumEdges() != 2 {
		t.Fatalf("got N=%d M=%d, want N=3 M=2", s.NumVertices(), s.NumEdges())
	}
}

func TestLoadJSONDenseSchema(t *testing.T) {
	r := strings.NewReader(`{"vertices": 4, "hyperedges": [[0,1,2],[2,3]], "labels": [0,0,1,1]}`)
	s, err := serialize.LoadJSON(r)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if s.NumVertices() != 4 || s.NumEdges() != 2 {
		t.Fatalf("got N=%d M=%d, want N=4 M=2", s.NumVertices(), s.NumEdges())
	}
	if !equalLabels(s.Labels(), []int32{0, 0, 1, 1}) {
		t.Fatalf("unexpected labels: %v", s.Labels())
	}
}

// TestLoadJSONHyperNetXSchema checks first-seen-order vertex-id
// assignment across node-data and edge-dict (spec §4.C).
func TestLoadJSONHyperNetXSchema(t *testing.T) {
	doc := `{
		"type": "hypergraph",
		"node-data": {"b": {}, "a": {}},
		"edge-dict": {"e0": ["a", "c"], "e1": ["b", "c"]}
	}`
	s, err := serialize.LoadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	// first-seen order: "b" (node-data) -> 0, "a" (node-data) -> 1,
	// then edge-dict introduces "c" -> 2.
	if s.NumVertices() != 3 {
		t.Fatalf("want 3 vertices (b,a,c), got %d", s.NumVertices())
	}
	e0, _ := s.Hyperedge(0)
	if !equalSlice(e0, []uint32{1, 2}) { // a=1, c=2
		t.Fatalf("edge 0 want [a=1,c=2], got %v", e0)
	}
	e1, _ := s.Hyperedge(1)
	if !equalSlice(e1, []uint32{0, 2}) { // b=0, c=2
		t.Fatalf("edge 1 want [b=0,c=2], got %v", e1)
	}
}

func TestLoadJSONRejectsMalformed(t *testing.T) {
	_, err := serialize.LoadJSON(strings.NewReader(`{"vertices": 3, "edges": [[0,1]`))
	if !errors.Is(err, hyperlperr.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func mustAdd(t *testing.T, s *hypergraph.Store, vs ...uint32) {
	t.Helper()
	if _, err := s.AddHyperedge(vs); err != nil {
		t.Fatalf("AddHyperedge(%v): %v", vs, err)
	}
}

func equalSlice(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalLabels(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

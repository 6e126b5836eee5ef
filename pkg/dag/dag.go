// Package dag implements the post-traversal annotation passes (C7): edge
// voting for surrogates, indirect-taint tracing, inferrable-edge drawing,
// head/foot tagging, and dangler detection, run in that order over a
// freshly-traversed provenance.LineageDAG, per §4.7.
package dag

import (
	"sort"
	"time"

	"github.com/orneryd/provgraph/pkg/pool"
	"github.com/orneryd/provgraph/pkg/provenance"
)

// Process runs all five passes over d in order, timing each into d's
// fingerprint via RecordPhase.
func Process(d *provenance.LineageDAG) {
	runPass(d, "edge-voting", voteSurrogates)
	runPass(d, "taint-tracing", traceTaint)
	runPass(d, "inferred-edges", drawInferredEdges)
	runPass(d, "head-foot", tagHeadsFeet)
	runPass(d, "danglers", tagDanglers)
}

func runPass(d *provenance.LineageDAG, name string, fn func(*provenance.LineageDAG)) {
	start := time.Now()
	fn(d)
	d.RecordPhase(name, time.Since(start))
}

// voteSurrogates resolves competing surrogate/full representations of the
// same oid (reachable via different edges of a multi-source expansion) to a
// single representative: the one with the most incident edges in the DAG,
// preferring a non-redacted representation on a vote tie, and the
// lexicographically smaller OID on a full tie.
func voteSurrogates(d *provenance.LineageDAG) {
	byOID := map[string][]*provenance.PLUSObject{}
	var order []string
	for _, o := range d.Objects {
		if _, ok := byOID[o.OID]; !ok {
			order = append(order, o.OID)
		}
		byOID[o.OID] = append(byOID[o.OID], o)
	}
	duplicatesExist := false
	for _, candidates := range byOID {
		if len(candidates) > 1 {
			duplicatesExist = true
			break
		}
	}
	if !duplicatesExist {
		return
	}

	sort.Strings(order)
	deduped := make([]*provenance.PLUSObject, 0, len(order))
	for _, oid := range order {
		candidates := byOID[oid]
		best := candidates[0]
		bestScore := -1
		for _, c := range candidates {
			score := countIncidentEdges(d, c.OID)
			if c.Name != "[REDACTED]" {
				score++
			}
			if score > bestScore || (score == bestScore && c.OID < best.OID) {
				bestScore = score
				best = c
			}
		}
		deduped = append(deduped, best)
	}
	d.Objects = deduped
}

func countIncidentEdges(d *provenance.LineageDAG, oid string) int {
	n := 0
	for _, e := range d.Edges {
		if e.From == oid || e.To == oid {
			n++
		}
	}
	return n
}

// traceTaint propagates each taint node's marker forward along downstream
// provenance edges already present in the DAG, tagging every reachable
// derived object with "tainted-by" = the taint object's oid.
func traceTaint(d *provenance.LineageDAG) {
	taintedBy := map[string][]string{}
	for _, e := range d.Edges {
		if e.Type == provenance.EdgeMarks {
			taintedBy[e.To] = append(taintedBy[e.To], e.From)
		}
	}
	if len(taintedBy) == 0 {
		return
	}

	adj := map[string][]string{}
	for _, e := range d.Edges {
		if e.Type == provenance.EdgeMarks {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	for target, taints := range taintedBy {
		for _, taintOID := range taints {
			visited := map[string]bool{target: true}
			queue := []string{target}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				d.Tag(cur, "tainted-by", taintOID)
				for _, next := range adj[cur] {
					if !visited[next] {
						visited[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}
}

// drawInferredEdges bridges a redacted/missing intermediate node: whenever
// a node referenced by the DAG's edges has no corresponding object (it was
// entirely filtered from view), every (inbound, outbound) pair of edges
// through it is replaced with a direct "unspecified" edge between the
// visible endpoints. A missing node with edges on only one side is left
// alone for the dangler pass.
func drawInferredEdges(d *provenance.LineageDAG) {
	present := map[string]bool{}
	for _, o := range d.Objects {
		present[o.OID] = true
	}

	var kept []*provenance.PLUSEdge
	byMissingIn := map[string][]*provenance.PLUSEdge{}
	byMissingOut := map[string][]*provenance.PLUSEdge{}
	missing := map[string]bool{}

	for _, e := range d.Edges {
		fromMissing := !present[e.From]
		toMissing := !present[e.To]
		switch {
		case fromMissing && toMissing:
			continue
		case toMissing:
			missing[e.To] = true
			byMissingIn[e.To] = append(byMissingIn[e.To], e)
		case fromMissing:
			missing[e.From] = true
			byMissingOut[e.From] = append(byMissingOut[e.From], e)
		default:
			kept = append(kept, e)
		}
	}

	seen := map[string]bool{}
	for m := range missing {
		ins := byMissingIn[m]
		outs := byMissingOut[m]
		if len(ins) > 0 && len(outs) > 0 {
			for _, in := range ins {
				for _, out := range outs {
					if in.From == out.To {
						continue
					}
					key := in.From + "->" + out.To
					if seen[key] {
						continue
					}
					seen[key] = true
					kept = append(kept, &provenance.PLUSEdge{From: in.From, To: out.To, Type: provenance.EdgeUnspecified})
				}
			}
			continue
		}
		kept = append(kept, ins...)
		kept = append(kept, outs...)
	}
	d.Edges = kept
}

// tagHeadsFeet tags objects with no inbound provenance edge in the DAG as
// "head", and those with no outbound provenance edge as "foot". The
// membership sets are scratch maps borrowed from pkg/pool: this pass runs
// once per traversal and the sets never escape the function.
func tagHeadsFeet(d *provenance.LineageDAG) {
	hasIn := pool.GetMap()
	hasOut := pool.GetMap()
	defer pool.PutMap(hasIn)
	defer pool.PutMap(hasOut)
	for _, e := range d.Edges {
		hasOut[e.From] = true
		hasIn[e.To] = true
	}
	for _, o := range d.Objects {
		if _, ok := hasIn[o.OID]; !ok {
			d.Tag(o.OID, "head", "true")
		}
		if _, ok := hasOut[o.OID]; !ok {
			d.Tag(o.OID, "foot", "true")
		}
	}
}

// tagDanglers tags the visible endpoint of every edge whose other endpoint
// never made it into the DAG with "more-available" = "true", so a UI can
// indicate the graph continues beyond the cut.
func tagDanglers(d *provenance.LineageDAG) {
	present := pool.GetMap()
	defer pool.PutMap(present)
	for _, o := range d.Objects {
		present[o.OID] = true
	}
	for _, e := range d.Edges {
		_, fromOK := present[e.From]
		_, toOK := present[e.To]
		if !fromOK && toOK {
			d.Tag(e.To, "more-available", "true")
		}
		if !toOK && fromOK {
			d.Tag(e.From, "more-available", "true")
		}
	}
}

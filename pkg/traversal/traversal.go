// Package traversal implements the bounded lineage-traversal engine (C6):
// BFS/DFS spidering over typed provenance relationships from one or more
// starting points, producing a LineageDAG whose nodes have already been
// hydrated (C4) and filtered for the viewer (C5), per §4.6.
package traversal

import (
	"fmt"

	"github.com/orneryd/provgraph/pkg/factory"
	"github.com/orneryd/provgraph/pkg/graphstore"
	"github.com/orneryd/provgraph/pkg/perrors"
	"github.com/orneryd/provgraph/pkg/privilege"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/orneryd/provgraph/pkg/storage"
)

// DefaultTaintDepth bounds the backward walk client.GetAllTaintSources
// runs looking for taint markers, independent of a caller-supplied
// TraversalSettings.MaxDepth.
const DefaultTaintDepth = 50

// Traverser drives C2's incident-edge primitives through the hydrate/filter
// pipeline to build a LineageDAG.
type Traverser struct {
	Store     *graphstore.GraphStore
	Factory   *factory.Factory
	Privilege *privilege.Engine
}

// New returns a Traverser wired to the given store, factory, and privilege
// engine, all of which must share the same underlying GraphStore.
func New(store *graphstore.GraphStore, fac *factory.Factory, priv *privilege.Engine) *Traverser {
	return &Traverser{Store: store, Factory: fac, Privilege: priv}
}

type frontierItem struct {
	node  *storage.Node
	depth int
}

func isProvenanceEdgeType(t string) bool {
	for _, pt := range provenance.ProvenanceEdgeTypes {
		if string(pt) == t {
			return true
		}
	}
	return false
}

// Traverse runs Expand with a single starting id, recording it as the
// resulting LineageDAG's Focus (§4.6's supplemental multi-source note).
func (t *Traverser) Traverse(viewerClass string, start string, settings provenance.TraversalSettings) (*provenance.LineageDAG, error) {
	return t.Expand(viewerClass, settings, start)
}

// Expand runs the bounded BFS/DFS spider from one or more starting
// identifiers (OID or NPID), per §4.6's five-step algorithm. The returned
// DAG's Focus is set only when exactly one starting id is given.
func (t *Traverser) Expand(viewerClass string, settings provenance.TraversalSettings, starts ...string) (*provenance.LineageDAG, error) {
	if len(starts) == 0 {
		return nil, fmt.Errorf("traversal: %w: no starting id", perrors.ErrInvalidArgument)
	}
	focus := ""
	if len(starts) == 1 {
		focus = starts[0]
	}
	dag := provenance.NewLineageDAG(focus)

	visitedNodes := map[storage.NodeID]bool{}
	visitedEdges := map[storage.EdgeID]bool{}
	items := make([]frontierItem, 0, len(starts))

	for _, s := range starts {
		n, err := t.Store.Exists(s)
		if err != nil {
			return nil, fmt.Errorf("traversal: %w: %v", perrors.ErrStorageFailure, err)
		}
		if n == nil {
			return nil, fmt.Errorf("traversal: %s: %w", s, perrors.ErrNotFound)
		}
		if !visitedNodes[n.ID] {
			visitedNodes[n.ID] = true
			items = append(items, frontierItem{node: n, depth: 0})
		}
	}

	collected := 0
	maxDepth := settings.MaxDepth
	limitN := settings.N

	for len(items) > 0 {
		if limitN > 0 && collected >= limitN {
			break
		}
		var cur frontierItem
		if settings.BreadthFirst {
			cur, items = items[0], items[1:]
		} else {
			cur, items = items[len(items)-1], items[:len(items)-1]
		}
		node := cur.node

		if node.HasLabel(graphstore.LabelProvenance) {
			obj, err := t.Factory.HydrateObject(node)
			if err == nil {
				filtered, ferr := t.Privilege.Filter(obj, viewerClass)
				if ferr != nil {
					return nil, ferr
				}
				if filtered != nil && !dag.HasNode(filtered.OID) {
					if settings.IncludeNodes {
						dag.AddObject(filtered)
					}
					collected++
				}
			}
		}

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		if settings.Forward {
			out, err := t.Store.Engine.GetOutgoingEdges(node.ID)
			if err != nil {
				return nil, fmt.Errorf("traversal: %w: %v", perrors.ErrStorageFailure, err)
			}
			items = t.visitEdges(dag, settings, visitedNodes, visitedEdges, items, out, true, cur.depth)
		}
		if settings.Backward {
			in, err := t.Store.Engine.GetIncomingEdges(node.ID)
			if err != nil {
				return nil, fmt.Errorf("traversal: %w: %v", perrors.ErrStorageFailure, err)
			}
			items = t.visitEdges(dag, settings, visitedNodes, visitedEdges, items, in, false, cur.depth)
		}
	}

	return dag, nil
}

// visitEdges enumerates edges incident to the node currently being
// expanded (§4.6 step 4), adds hydrated PLUSEdges/NPEs to dag, and appends
// any newly-discovered, followable neighbor to the frontier.
func (t *Traverser) visitEdges(
	dag *provenance.LineageDAG,
	settings provenance.TraversalSettings,
	visitedNodes map[storage.NodeID]bool,
	visitedEdges map[storage.EdgeID]bool,
	items []frontierItem,
	edges []*storage.Edge,
	outgoing bool,
	depth int,
) []frontierItem {
	for _, e := range edges {
		isNPE := e.Type == graphstore.RelNPE
		isProv := isProvenanceEdgeType(e.Type)
		if !isNPE && !isProv {
			continue
		}

		if !visitedEdges[e.ID] {
			visitedEdges[e.ID] = true
			if isNPE {
				if settings.IncludeNPEs {
					if npe, err := t.Factory.HydrateNPE(e); err == nil {
						dag.AddNPE(npe)
					}
				}
			} else if settings.IncludeEdges {
				if pe, err := t.Factory.HydrateEdge(e); err == nil {
					dag.AddEdge(pe)
				}
			}
		}

		follow := isProv || (isNPE && settings.FollowNPIDs)
		if !follow {
			continue
		}
		neighborID := e.EndNode
		if !outgoing {
			neighborID = e.StartNode
		}
		if visitedNodes[neighborID] {
			continue
		}
		neighbor, err := t.Store.Engine.GetNode(neighborID)
		if err != nil {
			continue
		}
		visitedNodes[neighborID] = true
		items = append(items, frontierItem{node: neighbor, depth: depth + 1})
	}
	return items
}

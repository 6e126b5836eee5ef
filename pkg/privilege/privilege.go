// Package privilege implements the privilege engine (C5): dominance queries
// over the lattice maintained by pkg/graphstore's bootstrap, and the
// surrogate view filter that decides what a viewer may see of a
// PLUSObject (§4.5).
package privilege

import (
	"fmt"

	"github.com/orneryd/provgraph/pkg/codec"
	"github.com/orneryd/provgraph/pkg/graphstore"
	"github.com/orneryd/provgraph/pkg/pool"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/orneryd/provgraph/pkg/storage"
)

// MaxDominancePathLength bounds the transitive-closure path query (§4.5,
// invariant 5): a <= 100-hop dominates chain.
const MaxDominancePathLength = 100

// Engine answers dominance queries and applies the surrogate view filter.
type Engine struct {
	Store    *graphstore.GraphStore
	Policies *PolicyRegistry
}

// New returns an Engine bound to store, with the default policy registry.
func New(store *graphstore.GraphStore) *Engine {
	return &Engine{Store: store, Policies: NewPolicyRegistry()}
}

// Dominates reports whether privilege class a dominates b: true if a == b,
// a == ADMIN, or a bounded dominates-path from a to b exists; false if no
// path is found. Any storage error is surfaced.
func (e *Engine) Dominates(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	if a == provenance.PIDAdmin {
		return true, nil
	}
	return e.pathExists(a, b, MaxDominancePathLength)
}

func (e *Engine) pathExists(from, to string, maxHops int) (bool, error) {
	visited := map[string]bool{from: true}
	frontier := []string{from}
	for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
		next := pool.GetStringSlice()
		for _, pid := range frontier {
			node, err := e.Store.Engine.GetNode(storageNodeID(pid))
			if err != nil {
				continue
			}
			outs, err := e.Store.Engine.GetOutgoingEdges(node.ID)
			if err != nil {
				return false, fmt.Errorf("privilege: %w", err)
			}
			for _, edge := range outs {
				if edge.Type != graphstore.RelDominates {
					continue
				}
				target, err := e.Store.Engine.GetNode(edge.EndNode)
				if err != nil {
					continue
				}
				tpid := codec.ToString(target.Properties, "pid")
				if tpid == to {
					return true, nil
				}
				if !visited[tpid] {
					visited[tpid] = true
					next = append(next, tpid)
				}
			}
		}
		pool.PutStringSlice(frontier)
		frontier = next
	}
	return false, nil
}

func storageNodeID(pid string) storage.NodeID {
	return storage.NodeID(graphstore.LabelPrivilege + ":" + pid)
}

// ViewerDominatesAll reports whether viewerClass dominates every class in
// required.
func (e *Engine) ViewerDominatesAll(viewerClass string, required []provenance.PrivilegeClass) (bool, error) {
	for _, p := range required {
		ok, err := e.Dominates(viewerClass, p.PID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ViewerDominatesAny reports whether viewerClass dominates at least one
// class in required (used to decide between surrogate vs. full redaction).
func (e *Engine) ViewerDominatesAny(viewerClass string, required []provenance.PrivilegeClass) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}
	for _, p := range required {
		ok, err := e.Dominates(viewerClass, p.PID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Filter runs versionSuitableFor(viewer): returns o unchanged if
// viewerClass dominates every required privilege class, a redacted
// surrogate if partially authorized, or nil if entirely unauthorized.
func (e *Engine) Filter(o *provenance.PLUSObject, viewerClass string) (*provenance.PLUSObject, error) {
	if o == nil {
		return nil, nil
	}
	if len(o.Privilege) == 0 {
		return o, nil
	}
	full, err := e.ViewerDominatesAll(viewerClass, o.Privilege)
	if err != nil {
		return nil, err
	}
	if full {
		return o, nil
	}
	any, err := e.ViewerDominatesAny(viewerClass, o.Privilege)
	if err != nil {
		return nil, err
	}
	if !any {
		return nil, nil
	}
	policy := e.Policies.For(o.Type, o.Subtype)
	return policy.Surrogate(o), nil
}

// Package factory implements polymorphic object hydration (C4): turning a
// stored storage.Node/storage.Edge back into the most specific
// provenance.PLUSObject/PLUSEdge/NPE variant, per §4.4.
//
// Dispatch on (type, subtype) is currently shape-free: every subtype hydrates
// into the same PLUSObject struct, since the domain model carries subtype as
// a field rather than a Go type per variant (§9's "polymorphic object
// hydration" note chooses the tagged-variant restatement, but this package
// keeps a single struct and lets pkg/privilege's SurrogatePolicy registry be
// the place where (type, subtype) actually changes runtime behavior).
package factory

import (
	"fmt"

	"github.com/orneryd/provgraph/pkg/codec"
	"github.com/orneryd/provgraph/pkg/graphstore"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/orneryd/provgraph/pkg/storage"
)

// Factory hydrates stored nodes/edges into domain entities, reading owner
// and privilege relationships from the graph as it goes.
type Factory struct {
	Store *graphstore.GraphStore
}

// New returns a Factory bound to store.
func New(store *graphstore.GraphStore) *Factory {
	return &Factory{Store: store}
}

// HydrateObject builds a PLUSObject from a Provenance-labeled node: (a)
// copies first-class properties via the codec, (b) strips "metadata:" keys
// back into the metadata map, (c) attaches the owner via the inbound "owns"
// edge, (d) attaches the privilege set via outbound "controlledBy" edges.
func (f *Factory) HydrateObject(n *storage.Node) (*provenance.PLUSObject, error) {
	if n == nil {
		return nil, fmt.Errorf("factory: nil node")
	}
	o := &provenance.PLUSObject{
		OID:       codec.ToString(n.Properties, "oid"),
		Type:      provenance.ObjectType(codec.ToString(n.Properties, "type")),
		Subtype:   provenance.ObjectSubtype(codec.ToString(n.Properties, "subtype")),
		Name:      codec.ToString(n.Properties, "name"),
		Created:   codec.ToInt64(n.Properties, "created"),
		Heritable: codec.ToBool(n.Properties, "heritable"),
		Metadata:  codec.DecodeMetadata(n.Properties),
	}
	if o.Subtype == "" {
		o.Subtype = provenance.SubtypeGeneric
	}

	inbound, err := f.Store.Engine.GetIncomingEdges(n.ID)
	if err != nil {
		return nil, fmt.Errorf("factory: reading owner edges for %s: %w", o.OID, err)
	}
	var ownEdges []*storage.Edge
	for _, e := range inbound {
		if e.Type == graphstore.RelOwns {
			ownEdges = append(ownEdges, e)
		}
	}
	if len(ownEdges) > 0 {
		// Invariant 6: multiple inbound owns edges retain the first.
		actorNode, err := f.Store.Engine.GetNode(ownEdges[0].StartNode)
		if err == nil {
			o.Owner = &provenance.PLUSActor{
				AID:  codec.ToString(actorNode.Properties, "aid"),
				Name: codec.ToString(actorNode.Properties, "name"),
				Type: provenance.ActorType(codec.ToString(actorNode.Properties, "type")),
			}
		}
	}

	outbound, err := f.Store.Engine.GetOutgoingEdges(n.ID)
	if err != nil {
		return nil, fmt.Errorf("factory: reading privilege edges for %s: %w", o.OID, err)
	}
	for _, e := range outbound {
		if e.Type != graphstore.RelControlledBy {
			continue
		}
		classNode, err := f.Store.Engine.GetNode(e.EndNode)
		if err != nil {
			continue
		}
		o.Privilege = append(o.Privilege, provenance.PrivilegeClass{
			PID:  codec.ToString(classNode.Properties, "pid"),
			Name: codec.ToString(classNode.Properties, "name"),
		})
	}

	return o, nil
}

// HydrateEdge resolves a stored relationship of a provenance EdgeType into a
// PLUSEdge. The "workflow" property is copied as a string; it is not
// resolved to a workflow object, and the default workflow OID gets no
// special handling.
func (f *Factory) HydrateEdge(e *storage.Edge) (*provenance.PLUSEdge, error) {
	if e == nil {
		return nil, fmt.Errorf("factory: nil edge")
	}
	fromOID := codec.ToString(objectProps(f, e.StartNode), "oid")
	toOID := codec.ToString(objectProps(f, e.EndNode), "oid")
	pe := &provenance.PLUSEdge{From: fromOID, To: toOID, Type: provenance.EdgeType(e.Type)}
	if wf, ok := e.Properties["workflow"]; ok {
		pe.Workflow = fmt.Sprint(wf)
	}
	return pe, nil
}

// HydrateNPE resolves a stored "NPE" relationship into an NPE, determining
// whether the endpoint is a PLUSObject (by label) or an NPID.
func (f *Factory) HydrateNPE(e *storage.Edge) (*provenance.NPE, error) {
	if e == nil {
		return nil, fmt.Errorf("factory: nil edge")
	}
	fromNode, err := f.Store.Engine.GetNode(e.StartNode)
	if err != nil {
		return nil, fmt.Errorf("factory: NPE from-endpoint: %w", err)
	}
	toNode, err := f.Store.Engine.GetNode(e.EndNode)
	if err != nil {
		return nil, fmt.Errorf("factory: NPE to-endpoint: %w", err)
	}

	toID := codec.ToString(toNode.Properties, "npid")
	if toNode.HasLabel(graphstore.LabelProvenance) {
		toID = codec.ToString(toNode.Properties, "oid")
	}

	return &provenance.NPE{
		NPEID:   codec.ToString(e.Properties, "npeid"),
		From:    codec.ToString(fromNode.Properties, "oid"),
		To:      toID,
		Type:    codec.ToString(e.Properties, "type"),
		Created: codec.ToInt64(e.Properties, "created"),
	}, nil
}

func objectProps(f *Factory, id storage.NodeID) map[string]any {
	n, err := f.Store.Engine.GetNode(id)
	if err != nil {
		return nil
	}
	return n.Properties
}

// Package graphstore implements schema & storage (C3): label/relationship
// declarations, the one-time bootstrap, and CRUD for provenance entities on
// top of the pkg/storage graph kernel.
//
// GraphStore is the single value whose lifetime spans the process (§9's
// "static/global state" note, restated): open it once, Bootstrap it once,
// and Close it on shutdown. Every exported method opens its own
// storage.Transaction and commits or rolls it back before returning, per
// §5's "no public operation may be called outside a transaction scope it
// itself opens."
package graphstore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/orneryd/provgraph/pkg/codec"
	"github.com/orneryd/provgraph/pkg/perrors"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/orneryd/provgraph/pkg/storage"
)

// Labels declared by §4.3.
const (
	LabelProvenance    = "Provenance"
	LabelActor         = "Actor"
	LabelPrivilege     = "PrivilegeClass"
	LabelNonProvenance = "NonProvenance"
)

// Relationship types declared by §4.3.
const (
	RelOwns          = "owns"
	RelControlledBy  = "controlledBy"
	RelDominates     = "dominates"
	RelNPE           = "NPE"
)

// GraphStore is the schema-aware storage layer on top of a storage.Engine.
type GraphStore struct {
	Engine storage.Engine
	log    *log.Logger
}

// Open opens a persistent Badger-backed store rooted at dataDir, creating
// the directory if necessary.
func Open(dataDir string) (*GraphStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("graphstore: %w: empty data directory", perrors.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(dataDir), 0o755); err != nil {
		return nil, fmt.Errorf("graphstore: creating data directory: %w", err)
	}
	engine, err := storage.NewBadgerEngine(dataDir)
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	return &GraphStore{Engine: engine, log: log.New(os.Stderr, "[graphstore] ", log.LstdFlags)}, nil
}

// OpenMemory opens a non-persistent in-memory store, used by tests and the
// CLI's ephemeral modes.
func OpenMemory() *GraphStore {
	return &GraphStore{Engine: storage.NewMemoryEngine(), log: log.New(os.Stderr, "[graphstore] ", log.LstdFlags)}
}

// Close releases the underlying engine's resources.
func (g *GraphStore) Close() error {
	return g.Engine.Close()
}

func nodeID(label, value string) storage.NodeID {
	return storage.NodeID(label + ":" + value)
}

// Bootstrap performs the one-time, idempotent setup of §4.3: uniqueness
// constraints, the default workflow, unknown activity, GOD and PUBLIC
// actors, and the privilege lattice. It is safe to call on every startup;
// it no-ops once the default workflow OID is present.
func (g *GraphStore) Bootstrap() error {
	schema := g.Engine.GetSchema()
	schema.AddUniqueConstraint("provenance_oid", LabelProvenance, "oid")
	schema.AddUniqueConstraint("actor_aid", LabelActor, "aid")
	schema.AddUniqueConstraint("privilege_pid", LabelPrivilege, "pid")
	schema.AddUniqueConstraint("nonprovenance_npid", LabelNonProvenance, "npid")

	if existing, _ := g.Engine.GetNode(nodeID(LabelProvenance, provenance.DefaultWorkflowOID)); existing != nil {
		return nil
	}

	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	ok := false
	defer func() {
		if !ok {
			tx.Rollback()
		}
	}()

	if err := tx.CreateNode(&storage.Node{
		ID:     nodeID(LabelProvenance, provenance.DefaultWorkflowOID),
		Labels: []string{LabelProvenance},
		Properties: map[string]any{
			"oid": provenance.DefaultWorkflowOID, "type": string(provenance.TypeWorkflow),
			"subtype": string(provenance.SubtypeWorkflow), "name": "default workflow", "created": int64(0),
		},
	}); err != nil {
		return fmt.Errorf("graphstore: bootstrap default workflow: %w", err)
	}
	if err := tx.CreateNode(&storage.Node{
		ID:     nodeID(LabelProvenance, provenance.UnknownActivityOID),
		Labels: []string{LabelProvenance},
		Properties: map[string]any{
			"oid": provenance.UnknownActivityOID, "type": string(provenance.TypeActivity),
			"subtype": string(provenance.SubtypeActivity), "name": "unknown activity", "created": int64(0),
		},
	}); err != nil {
		return fmt.Errorf("graphstore: bootstrap unknown activity: %w", err)
	}
	if err := tx.CreateNode(&storage.Node{
		ID:     nodeID(LabelActor, provenance.GodActorAID),
		Labels: []string{LabelActor},
		Properties: map[string]any{
			"aid": provenance.GodActorAID, "name": "GOD", "type": string(provenance.ActorSystem),
		},
	}); err != nil {
		return fmt.Errorf("graphstore: bootstrap GOD actor: %w", err)
	}
	if err := tx.CreateNode(&storage.Node{
		ID:     nodeID(LabelActor, provenance.PublicActorAID),
		Labels: []string{LabelActor},
		Properties: map[string]any{
			"aid": provenance.PublicActorAID, "name": "PUBLIC", "type": string(provenance.ActorSystem),
		},
	}); err != nil {
		return fmt.Errorf("graphstore: bootstrap PUBLIC actor: %w", err)
	}

	// Privilege lattice (§4.3, invariant 4/5): ADMIN top, PUBLIC bottom.
	lattice := []struct{ hi, lo string }{
		{provenance.PIDAdmin, provenance.PIDNationalSecurity},
		{provenance.PIDNationalSecurity, provenance.PIDEmergencyHigh},
		{provenance.PIDEmergencyHigh, provenance.PIDEmergencyLow},
		{provenance.PIDAdmin, provenance.PIDPrivateMedical},
		{provenance.PIDPrivateMedical, provenance.PIDPublic},
		{provenance.PIDEmergencyLow, provenance.PIDPublic},
		{provenance.PIDNationalSecurity, provenance.PIDPublic},
	}
	for i := 10; i >= 1; i-- {
		hi := fmt.Sprintf("L%d", i)
		lo := fmt.Sprintf("L%d", i-1)
		if i == 1 {
			break
		}
		lattice = append(lattice, struct{ hi, lo string }{hi, lo})
	}

	seen := map[string]bool{}
	for _, edge := range lattice {
		for _, pid := range []string{edge.hi, edge.lo} {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			id := nodeID(LabelPrivilege, pid)
			if n, _ := tx.GetNode(id); n != nil {
				continue
			}
			if err := tx.CreateNode(&storage.Node{
				ID:         id,
				Labels:     []string{LabelPrivilege},
				Properties: map[string]any{"pid": pid, "name": pid},
			}); err != nil {
				return fmt.Errorf("graphstore: bootstrap privilege class %s: %w", pid, err)
			}
		}
	}
	for _, edge := range lattice {
		if err := tx.CreateEdge(&storage.Edge{
			ID:        storage.EdgeID(fmt.Sprintf("dominates:%s:%s", edge.hi, edge.lo)),
			StartNode: nodeID(LabelPrivilege, edge.hi),
			EndNode:   nodeID(LabelPrivilege, edge.lo),
			Type:      RelDominates,
		}); err != nil {
			return fmt.Errorf("graphstore: bootstrap dominates edge %s->%s: %w", edge.hi, edge.lo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	ok = true
	g.log.Printf("bootstrap complete")
	return nil
}

// StoreActor inserts a, rejecting a duplicate aid by returning the existing
// actor (invariant 1: re-insert is idempotent, not an error).
func (g *GraphStore) StoreActor(a *provenance.PLUSActor) (*provenance.PLUSActor, error) {
	if a == nil || a.AID == "" {
		return nil, fmt.Errorf("graphstore: %w: empty aid", perrors.ErrInvalidArgument)
	}
	if existing, _ := g.Engine.GetNode(nodeID(LabelActor, a.AID)); existing != nil {
		return actorFromNode(existing), nil
	}
	tx, err := g.Engine.Begin()
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.CreateNode(actorNode(a)); err != nil {
		tx.Rollback()
		if existing, _ := g.Engine.GetNode(nodeID(LabelActor, a.AID)); existing != nil {
			return actorFromNode(existing), nil
		}
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	return a, nil
}

func actorNode(a *provenance.PLUSActor) *storage.Node {
	props := map[string]any{"aid": a.AID, "name": a.Name, "type": string(a.Type)}
	if a.DisplayName != "" {
		props["displayName"] = a.DisplayName
	}
	if a.Email != "" {
		props["email"] = a.Email
	}
	if a.PasswordHash != "" {
		props["passwordHash"] = a.PasswordHash
	}
	return &storage.Node{ID: nodeID(LabelActor, a.AID), Labels: []string{LabelActor}, Properties: props}
}

func actorFromNode(n *storage.Node) *provenance.PLUSActor {
	return &provenance.PLUSActor{
		AID:          codec.ToString(n.Properties, "aid"),
		Name:         codec.ToString(n.Properties, "name"),
		Type:         provenance.ActorType(codec.ToString(n.Properties, "type")),
		DisplayName:  codec.ToString(n.Properties, "displayName"),
		Email:        codec.ToString(n.Properties, "email"),
		PasswordHash: codec.ToString(n.Properties, "passwordHash"),
	}
}

// SetActorPassword updates the stored bcrypt hash for an existing actor,
// e.g. a hash produced by pkg/actorauth.SetPassword.
func (g *GraphStore) SetActorPassword(aid, hash string) error {
	n, err := g.Engine.GetNode(nodeID(LabelActor, aid))
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	n.Properties["passwordHash"] = hash
	if err := tx.UpdateNode(n); err != nil {
		tx.Rollback()
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	return nil
}

// StoreObject inserts o with the Provenance label, wiring its owner (via an
// inbound "owns" edge) and privilege set (via outbound "controlledBy"
// edges). Re-insert of an existing oid leaves the stored node unchanged and
// returns o as passed in, not the stored object.
func (g *GraphStore) StoreObject(o *provenance.PLUSObject) (*provenance.PLUSObject, error) {
	if o == nil || o.OID == "" {
		return nil, fmt.Errorf("graphstore: %w: empty oid", perrors.ErrInvalidArgument)
	}
	if existing, _ := g.Engine.GetNode(nodeID(LabelProvenance, o.OID)); existing != nil {
		return o, nil
	}

	tx, err := g.Engine.Begin()
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	props := map[string]any{
		"oid": o.OID, "type": string(o.Type), "subtype": string(o.Subtype),
		"name": o.Name, "created": o.Created, "heritable": o.Heritable,
	}
	props = codec.EncodeMetadata(props, o.Metadata)

	if err := tx.CreateNode(&storage.Node{ID: nodeID(LabelProvenance, o.OID), Labels: []string{LabelProvenance}, Properties: props}); err != nil {
		if existing, _ := g.Engine.GetNode(nodeID(LabelProvenance, o.OID)); existing != nil {
			return o, nil
		}
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}

	if o.Owner != nil {
		if _, err := g.Engine.GetNode(nodeID(LabelActor, o.Owner.AID)); err != nil {
			return nil, fmt.Errorf("graphstore: owner %w", perrors.ErrDanglingEdge)
		}
		if err := tx.CreateEdge(&storage.Edge{
			ID:        storage.EdgeID("owns:" + o.Owner.AID + ":" + o.OID),
			StartNode: nodeID(LabelActor, o.Owner.AID),
			EndNode:   nodeID(LabelProvenance, o.OID),
			Type:      RelOwns,
		}); err != nil {
			return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
		}
	}

	for _, p := range o.Privilege {
		if _, err := tx.GetNode(nodeID(LabelPrivilege, p.PID)); err != nil {
			if err := tx.CreateNode(&storage.Node{
				ID: nodeID(LabelPrivilege, p.PID), Labels: []string{LabelPrivilege},
				Properties: map[string]any{"pid": p.PID, "name": p.Name},
			}); err != nil {
				return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
			}
		}
		if err := tx.CreateEdge(&storage.Edge{
			ID:        storage.EdgeID("controlledBy:" + o.OID + ":" + p.PID),
			StartNode: nodeID(LabelProvenance, o.OID),
			EndNode:   nodeID(LabelPrivilege, p.PID),
			Type:      RelControlledBy,
		}); err != nil {
			return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed = true
	return o, nil
}

// StoreEdge creates from -[type]-> to carrying e.Workflow. Both endpoints
// must already exist (invariant 2); otherwise it fails with ErrDanglingEdge
// and leaves the store unchanged.
func (g *GraphStore) StoreEdge(e *provenance.PLUSEdge) error {
	if e == nil || e.From == "" || e.To == "" || e.Type == "" {
		return fmt.Errorf("graphstore: %w: empty edge fields", perrors.ErrInvalidArgument)
	}
	if _, err := g.Engine.GetNode(nodeID(LabelProvenance, e.From)); err != nil {
		return fmt.Errorf("graphstore: from %s: %w", e.From, perrors.ErrDanglingEdge)
	}
	if _, err := g.Engine.GetNode(nodeID(LabelProvenance, e.To)); err != nil {
		return fmt.Errorf("graphstore: to %s: %w", e.To, perrors.ErrDanglingEdge)
	}

	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	props := map[string]any{}
	if e.Workflow != "" {
		props["workflow"] = e.Workflow
	}
	id := storage.EdgeID(fmt.Sprintf("%s:%s:%s:%s", e.From, e.To, e.Type, e.Workflow))
	if err := tx.CreateEdge(&storage.Edge{ID: id, StartNode: nodeID(LabelProvenance, e.From), EndNode: nodeID(LabelProvenance, e.To), Type: string(e.Type), Properties: props}); err != nil {
		tx.Rollback()
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	return nil
}

// StoreNPE creates from -[NPE]-> to, auto-creating to as an NPID node if it
// does not already resolve to an existing PLUSObject or NPID (invariant 3).
func (g *GraphStore) StoreNPE(n *provenance.NPE) error {
	if n == nil || n.From == "" || n.To == "" {
		return fmt.Errorf("graphstore: %w: empty NPE fields", perrors.ErrInvalidArgument)
	}
	if _, err := g.Engine.GetNode(nodeID(LabelProvenance, n.From)); err != nil {
		return fmt.Errorf("graphstore: from %s: %w", n.From, perrors.ErrDanglingEdge)
	}

	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	toID := nodeID(LabelProvenance, n.To)
	if _, err := tx.GetNode(toID); err != nil {
		npidID := nodeID(LabelNonProvenance, n.To)
		if _, err := tx.GetNode(npidID); err != nil {
			if err := tx.CreateNode(&storage.Node{ID: npidID, Labels: []string{LabelNonProvenance}, Properties: map[string]any{"npid": n.To}}); err != nil {
				return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
			}
		}
		toID = npidID
	}

	if n.NPEID == "" {
		n.NPEID = fmt.Sprintf("npe:%s:%s:%s", n.From, n.To, n.Type)
	}
	if err := tx.CreateEdge(&storage.Edge{
		ID: storage.EdgeID(n.NPEID), StartNode: nodeID(LabelProvenance, n.From), EndNode: toID, Type: RelNPE,
		Properties: map[string]any{"npeid": n.NPEID, "type": n.Type, "created": n.Created},
	}); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed = true
	return nil
}

// StoreCollection persists c.Actors, then c.Objects, then c.Edges, then
// c.NPEs: store(collection) of §4.3. It returns the count of newly
// persisted elements (pre-existing elements re-inserted idempotently are
// not counted). Each element is committed by its own StoreActor,
// StoreObject, StoreEdge or StoreNPE call in a separate transaction; the
// collection as a whole is not one transaction, so an error stops the
// loop and leaves the elements stored before it in place.
func (g *GraphStore) StoreCollection(c *provenance.ProvenanceCollection) (int, error) {
	count := 0
	for _, a := range c.Actors {
		if existing, _ := g.Engine.GetNode(nodeID(LabelActor, a.AID)); existing == nil {
			if _, err := g.StoreActor(a); err != nil {
				return count, err
			}
			count++
		}
	}
	for _, o := range c.Objects {
		if existing, _ := g.Engine.GetNode(nodeID(LabelProvenance, o.OID)); existing == nil {
			if _, err := g.StoreObject(o); err != nil {
				return count, err
			}
			count++
		}
	}
	for _, e := range c.Edges {
		if err := g.StoreEdge(e); err != nil {
			return count, err
		}
		count++
	}
	for _, n := range c.NPEs {
		if err := g.StoreNPE(n); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// DeleteObject removes oid. If cascade is true, every incident relationship
// is deleted first; if false and relationships remain, the delete fails.
func (g *GraphStore) DeleteObject(oid string, cascade bool) error {
	id := nodeID(LabelProvenance, oid)
	out, err := g.Engine.GetOutgoingEdges(id)
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	in, err := g.Engine.GetIncomingEdges(id)
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if !cascade && (len(out) > 0 || len(in) > 0) {
		return fmt.Errorf("graphstore: %w: object %s has incident edges", perrors.ErrInvalidArgument, oid)
	}

	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()
	for _, e := range append(out, in...) {
		if err := tx.DeleteEdge(e.ID); err != nil {
			return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
		}
	}
	if err := tx.DeleteNode(id); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	committed = true
	return nil
}

// DeleteEdge removes the first edge matching (from, to, edgeType,
// workflow); a nil workflow matches only an edge with no workflow property.
func (g *GraphStore) DeleteEdge(from, to string, edgeType provenance.EdgeType, workflow *string) error {
	match, err := g.Engine.FindEdge(nodeID(LabelProvenance, from), nodeID(LabelProvenance, to), string(edgeType), workflow)
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	tx, err := g.Engine.Begin()
	if err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.DeleteEdge(match.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	return nil
}

// Exists resolves id against the Provenance, Actor, PrivilegeClass, and
// NonProvenance label classes, returning the first matching node or nil.
// Per §4.6 step 1, a PLUSOID-shaped id is tried against the OID-bearing
// label classes (Provenance, Actor) first; anything else is tried against
// the NPID/class-name label classes (NonProvenance, PrivilegeClass) first.
// Either way all four classes are still probed, since a caller can always
// pass a malformed or NPID-shaped id for a node that was in fact stored
// under an OID-bearing label.
func (g *GraphStore) Exists(id string) (*storage.Node, error) {
	order := []string{LabelNonProvenance, LabelPrivilege, LabelProvenance, LabelActor}
	if provenance.IsPLUSOID(id) {
		order = []string{LabelProvenance, LabelActor, LabelPrivilege, LabelNonProvenance}
	}
	for _, label := range order {
		if n, err := g.Engine.GetNode(nodeID(label, id)); err == nil {
			return n, nil
		}
	}
	return nil, nil
}

// GetActors returns up to limit actors ordered by name, descending (§4.3).
// limit <= 0 is clamped to a default of 100 per the "silently clamped"
// invalid-argument rule of §7.
func (g *GraphStore) GetActors(limit int) ([]*provenance.PLUSActor, error) {
	if limit <= 0 {
		limit = 100
	}
	nodes, err := g.Engine.GetNodesByLabel(LabelActor)
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	actors := make([]*provenance.PLUSActor, 0, len(nodes))
	for _, n := range nodes {
		actors = append(actors, actorFromNode(n))
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].Name > actors[j].Name })
	if len(actors) > limit {
		actors = actors[:limit]
	}
	return actors, nil
}

// GetActor reads a single actor by aid.
func (g *GraphStore) GetActor(aid string) (*provenance.PLUSActor, error) {
	n, err := g.Engine.GetNode(nodeID(LabelActor, aid))
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	return actorFromNode(n), nil
}

// GetActorByName resolves an actor by its name property, the lookup path
// used when a caller has a display name rather than an aid.
func (g *GraphStore) GetActorByName(name string) (*provenance.PLUSActor, error) {
	n, err := g.Engine.GetNodeByProperty(LabelActor, "name", name)
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	return actorFromNode(n), nil
}

// GetMembers returns up to limit edges whose "workflow" property equals
// workflow. Edges come in the engine's property-index order, not by
// creation time; when more than limit match, the last limit of that order
// are kept. Endpoint nodes are not returned.
func (g *GraphStore) GetMembers(workflow string, limit int) ([]*storage.Edge, error) {
	if limit <= 0 {
		limit = 500
	}
	edges, err := g.Engine.GetEdgeByProperty("workflow", workflow)
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrStorageFailure, err)
	}
	if len(edges) > limit {
		edges = edges[len(edges)-limit:]
	}
	return edges, nil
}

// GetNode reads a Provenance-labeled node by oid directly, for callers
// (C4's factory) that need the raw storage.Node to hydrate.
func (g *GraphStore) GetNode(oid string) (*storage.Node, error) {
	n, err := g.Engine.GetNode(nodeID(LabelProvenance, oid))
	if err != nil {
		return nil, fmt.Errorf("graphstore: %w: %v", perrors.ErrNotFound, err)
	}
	return n, nil
}

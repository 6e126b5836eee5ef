// Package provenance defines the domain entities of the lineage graph:
// objects, actors, edges, non-provenance edges, privilege classes, and the
// in-memory collection/DAG types used to move them in and out of storage.
//
// These types carry no storage concerns of their own; pkg/codec converts
// them to and from pkg/storage's Node/Edge property maps, and pkg/graphstore
// is the only package that persists them.
package provenance

import "fmt"

// ObjectType is the top-level kind of a PLUSObject.
type ObjectType string

const (
	TypeData       ObjectType = "data"
	TypeActivity   ObjectType = "activity"
	TypeWorkflow   ObjectType = "workflow"
	TypeInvocation ObjectType = "invocation"
)

// ObjectSubtype refines ObjectType for hydration dispatch and surrogate
// policy lookup.
type ObjectSubtype string

const (
	SubtypeGeneric    ObjectSubtype = "generic"
	SubtypeString     ObjectSubtype = "string"
	SubtypeFile       ObjectSubtype = "file"
	SubtypeFileImage  ObjectSubtype = "file-image"
	SubtypeURL        ObjectSubtype = "url"
	SubtypeRelational ObjectSubtype = "relational"
	SubtypeTaint      ObjectSubtype = "taint"
	SubtypeInvocation ObjectSubtype = "invocation"
	SubtypeWorkflow   ObjectSubtype = "workflow"
	SubtypeActivity   ObjectSubtype = "activity"
)

// EdgeType enumerates the provenance relationship types of §4.3.
type EdgeType string

const (
	EdgeInputTo     EdgeType = "input-to"
	EdgeContributed EdgeType = "contributed"
	EdgeMarks       EdgeType = "marks"
	EdgeGenerated   EdgeType = "generated"
	EdgeTriggered   EdgeType = "triggered"
	EdgeUnspecified EdgeType = "unspecified"
)

// ProvenanceEdgeTypes lists every EdgeType the traversal engine spiders
// across by default (NPE is handled separately, gated by followNPIDs).
var ProvenanceEdgeTypes = []EdgeType{
	EdgeInputTo, EdgeContributed, EdgeMarks, EdgeGenerated, EdgeTriggered, EdgeUnspecified,
}

// Well-known OIDs and AIDs established by bootstrap (§4.3).
const (
	DefaultWorkflowOID = "plus:00000000-0000-0000-0000-000000000001"
	UnknownActivityOID = "plus:00000000-0000-0000-0000-000000000002"
	GodActorAID        = "plus:00000000-0000-0000-0000-00000000a001"
	PublicActorAID     = "plus:00000000-0000-0000-0000-00000000a002"
)

// Well-known privilege class pids forming the lattice bootstrap inserts.
const (
	PIDAdmin            = "ADMIN"
	PIDNationalSecurity = "NATIONAL_SECURITY"
	PIDEmergencyHigh    = "EMERGENCY_HIGH"
	PIDEmergencyLow     = "EMERGENCY_LOW"
	PIDPrivateMedical   = "PRIVATE_MEDICAL"
	PIDPublic           = "PUBLIC"
)

// PLUSObject is a provenance node: a data artifact, activity, workflow, or
// invocation. oid is globally unique (invariant 1).
type PLUSObject struct {
	OID       string
	Type      ObjectType
	Subtype   ObjectSubtype
	Name      string
	Created   int64 // epoch-ms
	Metadata  map[string]string
	Heritable bool
	Owner     *PLUSActor
	Privilege []PrivilegeClass
}

// String renders a compact, log-friendly identity for the object.
func (o *PLUSObject) String() string {
	return fmt.Sprintf("PLUSObject{oid=%s type=%s/%s name=%q}", o.OID, o.Type, o.Subtype, o.Name)
}

// ActorType distinguishes human users from system/service actors.
type ActorType string

const (
	ActorUser       ActorType = "user"
	ActorOpenIDUser ActorType = "openid-user"
	ActorSystem     ActorType = "actor"
)

// PLUSActor is an agent: a user, system, or service that reports or owns
// provenance. aid is globally unique (invariant 1).
type PLUSActor struct {
	AID         string
	Name        string
	Type        ActorType
	DisplayName string
	Email       string

	// PasswordHash is an optional bcrypt hash for local "user"/"openid-user"
	// accounts, set via pkg/actorauth.SetPassword. Never populated for
	// system actors.
	PasswordHash string
}

func (a *PLUSActor) String() string {
	return fmt.Sprintf("PLUSActor{aid=%s name=%q type=%s}", a.AID, a.Name, a.Type)
}

// PLUSEdge is a typed directed provenance relation between two PLUSObjects,
// identified by the tuple (From, To, Type, Workflow).
type PLUSEdge struct {
	From     string
	To       string
	Type     EdgeType
	Workflow string // OID of a workflow, "" if none
}

func (e *PLUSEdge) String() string {
	return fmt.Sprintf("PLUSEdge{%s -[%s]-> %s}", e.From, e.Type, e.To)
}

// NPE is a non-provenance edge: a typed link from a PLUSObject to an
// external identifier (or, rarely, another PLUSObject) that is not itself a
// lineage claim.
type NPE struct {
	NPEID   string
	From    string // OID
	To      string // OID or NPID
	Type    string // free-form
	Created int64
}

func (e *NPE) String() string {
	return fmt.Sprintf("NPE{%s -(%s)-> %s}", e.From, e.Type, e.To)
}

// NPID is a leaf node representing an external identifier referenced from
// the graph via an NPE: a hash, URL, or database key.
type NPID struct {
	Value string
}

// PrivilegeClass is a named node in the privilege lattice (§3, §4.5).
type PrivilegeClass struct {
	PID  string
	Name string
}

func (p PrivilegeClass) String() string { return p.PID }

// TaintSource is a first-class assertion that an object is tainted: who
// asserted it, a free-text description, and when. client.Taint builds one
// per call and renders it as the PLUSObject/marks-edge pair §4.3 pins down
// as the actual storage shape.
type TaintSource struct {
	OID         string // the tainted object's oid
	AssertedBy  string // the asserting actor's aid
	Description string
	Created     int64
}

// TraversalSettings configures the C6 lineage traversal engine (§4.6).
type TraversalSettings struct {
	MaxDepth     int  // <= 0 means unbounded
	N            int  // <= 0 means unbounded
	BreadthFirst bool
	Forward      bool
	Backward     bool
	IncludeNodes bool
	IncludeEdges bool
	IncludeNPEs  bool
	FollowNPIDs  bool
}

// DefaultTraversalSettings mirrors a common caller default: bounded BFS,
// forward-only, nodes and edges both included.
func DefaultTraversalSettings() TraversalSettings {
	return TraversalSettings{
		MaxDepth:     0,
		N:            500,
		BreadthFirst: true,
		Forward:      true,
		Backward:     false,
		IncludeNodes: true,
		IncludeEdges: true,
		IncludeNPEs:  false,
		FollowNPIDs:  false,
	}
}

// Fingerprint carries timing/statistics about how a LineageDAG was built,
// consumed by tests and the CLI's `graph --explain` output.
type Fingerprint struct {
	Durations map[string]int64 // phase name -> nanoseconds
	NodeCount int
	EdgeCount int
	NPECount  int
}

// Package client implements the stable, user-parameterized facade (C8)
// over the provenance core: report, getGraph, search, exists,
// listWorkflows, getWorkflowMembers, taint, removeTaints, query, and the
// rest of §4.8's operation list. This is the only package external callers
// (the CLI, the bulk loader) are expected to import.
package client

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/orneryd/provgraph/pkg/config"
	"github.com/orneryd/provgraph/pkg/dag"
	"github.com/orneryd/provgraph/pkg/factory"
	"github.com/orneryd/provgraph/pkg/graphstore"
	"github.com/orneryd/provgraph/pkg/perrors"
	"github.com/orneryd/provgraph/pkg/privilege"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/orneryd/provgraph/pkg/storage"
	"github.com/orneryd/provgraph/pkg/traversal"
)

// Error is the domain error type returned at the facade boundary (§2.1,
// §7): it names the failing operation and preserves the underlying cause
// via Unwrap, so callers can still errors.Is against a pkg/perrors
// sentinel.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("client: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// User is the calling context every facade operation is parameterized by:
// the actor making the call and the privilege class its clearance resolves
// to for C5's dominance checks.
type User struct {
	Actor          *provenance.PLUSActor
	PrivilegeClass string
}

func (u *User) class() string {
	if u == nil {
		return provenance.PIDPublic
	}
	return u.PrivilegeClass
}

// Client is the facade: a GraphStore plus the C4/C5/C6/C7 components wired
// on top of it.
type Client struct {
	Store     *graphstore.GraphStore
	Factory   *factory.Factory
	Privilege *privilege.Engine
	Traversal *traversal.Traverser
	log       *log.Logger
	cfg       *config.Config
}

// New wires a Client around an already-open GraphStore, logging at the
// default "info" level.
func New(store *graphstore.GraphStore) *Client {
	fac := factory.New(store)
	priv := privilege.New(store)
	return &Client{
		Store:     store,
		Factory:   fac,
		Privilege: priv,
		Traversal: traversal.New(store, fac, priv),
		log:       log.New(os.Stderr, "[client] ", log.LstdFlags),
		cfg:       &config.Config{LogLevel: "info"},
	}
}

// SetLogLevel reconfigures which severities c.debugf and future log calls
// actually emit; see config.Config.ShouldLog.
func (c *Client) SetLogLevel(level string) {
	c.cfg.LogLevel = level
}

// debugf emits a "debug"-level log line, suppressed unless the client was
// configured (via SetLogLevel, typically from PROVENANCE_LOG_LEVEL) to log
// at "debug" or more verbose.
func (c *Client) debugf(format string, args ...any) {
	if !c.cfg.ShouldLog("debug") {
		return
	}
	c.log.Printf(format, args...)
}

// Open opens a persistent store at dataDir, bootstraps it, and wires a
// Client around it, logging at the default "info" level.
func Open(dataDir string) (*Client, error) {
	return OpenWithConfig(&config.Config{DBLocation: dataDir, LogLevel: "info"})
}

// OpenWithConfig opens a persistent store at cfg.DBLocation, bootstraps it,
// and wires a Client around it whose logging verbosity is gated by
// cfg.LogLevel (§2.1's ambient logging configuration).
func OpenWithConfig(cfg *config.Config) (*Client, error) {
	store, err := graphstore.Open(cfg.DBLocation)
	if err != nil {
		return nil, wrap("open", err)
	}
	if err := store.Bootstrap(); err != nil {
		store.Close()
		return nil, wrap("open", err)
	}
	c := New(store)
	c.SetLogLevel(cfg.LogLevel)
	return c, nil
}

// OpenMemory opens an ephemeral in-memory store, bootstraps it, and wires a
// Client around it; used by tests and the CLI's ephemeral modes.
func OpenMemory() *Client {
	store := graphstore.OpenMemory()
	if err := store.Bootstrap(); err != nil {
		panic(fmt.Sprintf("client: bootstrapping in-memory store: %v", err))
	}
	return New(store)
}

// Close releases the underlying store's resources.
func (c *Client) Close() error { return c.Store.Close() }

// Report persists coll via GraphStore.StoreCollection and returns the count
// of newly persisted elements. Each element is committed in its own
// transaction; an error leaves the elements stored before it in place.
func (c *Client) Report(coll *provenance.ProvenanceCollection) (int, error) {
	if coll == nil {
		return 0, wrap("report", perrors.ErrInvalidArgument)
	}
	n, err := c.Store.StoreCollection(coll)
	if err == nil {
		c.debugf("report: persisted %d new elements (actors=%d objects=%d edges=%d npes=%d)",
			n, len(coll.Actors), len(coll.Objects), len(coll.Edges), len(coll.NPEs))
	}
	return n, wrap("report", err)
}

// GetGraph runs the bounded traversal from oid for user and post-processes
// the result through C7.
func (c *Client) GetGraph(user *User, oid string, settings provenance.TraversalSettings) (*provenance.LineageDAG, error) {
	d, err := c.Traversal.Traverse(user.class(), oid, settings)
	if err != nil {
		return nil, wrap("getGraph", err)
	}
	dag.Process(d)
	return d, nil
}

// Exists reports whether id resolves to any node, regardless of label
// class.
func (c *Client) Exists(id string) (bool, error) {
	n, err := c.Store.Exists(id)
	if err != nil {
		return false, wrap("exists", err)
	}
	return n != nil, nil
}

// Labels returns the distinct node labels currently present in the store,
// streaming rather than materializing the full node set where the
// underlying engine supports it.
func (c *Client) Labels() ([]string, error) {
	labels, err := storage.CollectLabels(context.Background(), c.Store.Engine)
	return labels, wrap("labels", err)
}

// Latest returns the most recently created PLUSObject visible to user.
func (c *Client) Latest(user *User) (*provenance.PLUSObject, error) {
	nodes, err := c.Store.Engine.GetNodesByLabel(graphstore.LabelProvenance)
	if err != nil {
		return nil, wrap("latest", err)
	}
	var best *provenance.PLUSObject
	for _, n := range nodes {
		obj, err := c.Factory.HydrateObject(n)
		if err != nil {
			continue
		}
		filtered, err := c.Privilege.Filter(obj, user.class())
		if err != nil {
			return nil, wrap("latest", err)
		}
		if filtered == nil {
			continue
		}
		if best == nil || filtered.Created > best.Created {
			best = filtered
		}
	}
	if best == nil {
		return nil, wrap("latest", perrors.ErrNotFound)
	}
	return best, nil
}

// GetActors returns up to max actors ordered by name descending.
func (c *Client) GetActors(max int) ([]*provenance.PLUSActor, error) {
	actors, err := c.Store.GetActors(max)
	return actors, wrap("getActors", err)
}

// Search returns up to max PLUSObjects visible to user whose name or
// metadata contains term (case-insensitive substring match).
func (c *Client) Search(user *User, term string, max int) ([]*provenance.PLUSObject, error) {
	if max <= 0 {
		max = 100
	}
	nodes, err := c.Store.Engine.GetNodesByLabel(graphstore.LabelProvenance)
	if err != nil {
		return nil, wrap("search", err)
	}
	needle := strings.ToLower(term)
	var results []*provenance.PLUSObject
	for _, n := range nodes {
		if len(results) >= max {
			break
		}
		obj, err := c.Factory.HydrateObject(n)
		if err != nil {
			continue
		}
		if !matches(obj, needle) {
			continue
		}
		filtered, err := c.Privilege.Filter(obj, user.class())
		if err != nil {
			return nil, wrap("search", err)
		}
		if filtered != nil {
			results = append(results, filtered)
		}
	}
	return results, nil
}

func matches(o *provenance.PLUSObject, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.Name), needle) {
		return true
	}
	for _, v := range o.Metadata {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// ListWorkflows returns up to max PLUSObjects of subtype workflow.
func (c *Client) ListWorkflows(user *User, max int) ([]*provenance.PLUSObject, error) {
	if max <= 0 {
		max = 100
	}
	nodes, err := c.Store.Engine.GetNodesByLabel(graphstore.LabelProvenance)
	if err != nil {
		return nil, wrap("listWorkflows", err)
	}
	var workflows []*provenance.PLUSObject
	for _, n := range nodes {
		if len(workflows) >= max {
			break
		}
		obj, err := c.Factory.HydrateObject(n)
		if err != nil || obj.Subtype != provenance.SubtypeWorkflow {
			continue
		}
		filtered, err := c.Privilege.Filter(obj, user.class())
		if err != nil {
			return nil, wrap("listWorkflows", err)
		}
		if filtered != nil {
			workflows = append(workflows, filtered)
		}
	}
	return workflows, nil
}

// GetWorkflowMembers returns up to max edges tagged with workflow oid, as
// selected by GraphStore.GetMembers (not ordered by creation time), and
// their endpoint objects, hydrated and filtered into a ProvenanceCollection.
func (c *Client) GetWorkflowMembers(user *User, oid string, max int) (*provenance.ProvenanceCollection, error) {
	edges, err := c.Store.GetMembers(oid, max)
	if err != nil {
		return nil, wrap("getWorkflowMembers", err)
	}
	coll := provenance.NewProvenanceCollection()
	seen := map[string]bool{}
	for _, e := range edges {
		pe, err := c.Factory.HydrateEdge(e)
		if err != nil {
			continue
		}
		coll.AddEdge(pe)
		for _, endpointOID := range []string{pe.From, pe.To} {
			if seen[endpointOID] {
				continue
			}
			seen[endpointOID] = true
			n, err := c.Store.GetNode(endpointOID)
			if err != nil {
				continue
			}
			obj, err := c.Factory.HydrateObject(n)
			if err != nil {
				continue
			}
			if filtered, err := c.Privilege.Filter(obj, user.class()); err == nil && filtered != nil {
				coll.AddObject(filtered)
			}
		}
	}
	return coll, nil
}

// GetSingleNode hydrates and filters the single PLUSObject named oid.
func (c *Client) GetSingleNode(user *User, oid string) (*provenance.PLUSObject, error) {
	n, err := c.Store.GetNode(oid)
	if err != nil {
		return nil, wrap("getSingleNode", err)
	}
	obj, err := c.Factory.HydrateObject(n)
	if err != nil {
		return nil, wrap("getSingleNode", err)
	}
	filtered, err := c.Privilege.Filter(obj, user.class())
	if err != nil {
		return nil, wrap("getSingleNode", err)
	}
	return filtered, nil
}

// ActorExists resolves aidOrName against aid first, then name, returning
// nil with no error if neither resolves.
func (c *Client) ActorExists(aidOrName string) (*provenance.PLUSActor, error) {
	if a, err := c.Store.GetActor(aidOrName); err == nil {
		return a, nil
	}
	if a, err := c.Store.GetActorByName(aidOrName); err == nil {
		return a, nil
	}
	return nil, nil
}

// Dominates reports whether privilege class a dominates b.
func (c *Client) Dominates(a, b string) (bool, error) {
	ok, err := c.Privilege.Dominates(a, b)
	return ok, wrap("dominates", err)
}

// Taint records a TaintSource against obj: a PLUSObject of subtype taint
// plus a "marks" edge from the taint object to obj (§4.8's supplemental
// TaintSource entity; the stored shape is pinned down in SPEC_FULL.md §3).
func (c *Client) Taint(user *User, obj, description string) (*provenance.PLUSObject, error) {
	if _, err := c.Store.GetNode(obj); err != nil {
		return nil, wrap("taint", perrors.ErrNotFound)
	}
	ts := &provenance.TaintSource{
		OID:         obj,
		Description: description,
		Created:     time.Now().UnixMilli(),
	}
	if user != nil && user.Actor != nil {
		ts.AssertedBy = user.Actor.AID
	}
	taintObj := taintSourceToObject(ts)
	if _, err := c.Store.StoreObject(taintObj); err != nil {
		return nil, wrap("taint", err)
	}
	if err := c.Store.StoreEdge(&provenance.PLUSEdge{From: taintObj.OID, To: ts.OID, Type: provenance.EdgeMarks}); err != nil {
		return nil, wrap("taint", err)
	}
	return taintObj, nil
}

// taintSourceToObject renders a TaintSource as the PLUSObject it is stored
// as: the asserting actor becomes the stored object's owner (via the
// "owns" edge graphstore.StoreObject wires), since the marks edge itself
// only connects the taint object to the tainted object.
func taintSourceToObject(ts *provenance.TaintSource) *provenance.PLUSObject {
	obj := &provenance.PLUSObject{
		OID:     fmt.Sprintf("plus:taint-%d", time.Now().UnixNano()),
		Type:    provenance.TypeData,
		Subtype: provenance.SubtypeTaint,
		Name:    ts.Description,
		Created: ts.Created,
	}
	if ts.AssertedBy != "" {
		obj.Owner = &provenance.PLUSActor{AID: ts.AssertedBy}
	}
	return obj
}

// RemoveTaints deletes every "marks" edge pointing at obj and returns the
// count removed. The taint objects themselves are left in place (they may
// still be reachable from other provenance), mirroring delete(edge)'s
// narrower contract in §4.3.
func (c *Client) RemoveTaints(obj string) (int, error) {
	n, err := c.Store.GetNode(obj)
	if err != nil {
		return 0, wrap("removeTaints", perrors.ErrNotFound)
	}
	incoming, err := c.Store.Engine.GetIncomingEdges(n.ID)
	if err != nil {
		return 0, wrap("removeTaints", err)
	}
	removed := 0
	for _, e := range incoming {
		if e.Type != string(provenance.EdgeMarks) {
			continue
		}
		taintOID := ""
		if sn, err := c.Store.Engine.GetNode(e.StartNode); err == nil {
			taintOID = fmt.Sprint(sn.Properties["oid"])
		}
		if err := c.Store.DeleteEdge(taintOID, obj, provenance.EdgeMarks, nil); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// GetAllTaintSources walks backward along "marks"/provenance edges from
// obj (bounded the same way traversal is, §4.6) collecting every reachable
// taint object, filtered through the surrogate view.
func (c *Client) GetAllTaintSources(user *User, obj string) ([]*provenance.PLUSObject, error) {
	settings := provenance.TraversalSettings{
		MaxDepth: traversal.DefaultTaintDepth, BreadthFirst: true, Backward: true,
		IncludeNodes: true, IncludeEdges: true,
	}
	d, err := c.Traversal.Traverse(user.class(), obj, settings)
	if err != nil {
		return nil, wrap("getAllTaintSources", err)
	}
	var sources []*provenance.PLUSObject
	for _, o := range d.Objects {
		if o.Subtype == provenance.SubtypeTaint {
			sources = append(sources, o)
		}
	}
	return sources, nil
}

// Query runs textual against the mini pattern-language (§6):
// "label:Provenance prop:type=data limit:50". Non-provenance elements are
// stripped from the result; the rest is hydrated and filtered for user.
func (c *Client) Query(user *User, textual string) (*provenance.ProvenanceCollection, error) {
	q, err := parseQuery(textual)
	if err != nil {
		return nil, wrap("query", err)
	}
	var nodes []*storage.Node
	if q.label != "" {
		nodes, err = c.Store.Engine.GetNodesByLabel(q.label)
	} else {
		nodes, err = c.Store.Engine.AllNodes()
	}
	if err != nil {
		return nil, wrap("query", err)
	}

	coll := provenance.NewProvenanceCollection()
	count := 0
	for _, n := range nodes {
		if count >= q.limit {
			break
		}
		if !n.HasLabel(graphstore.LabelProvenance) {
			continue
		}
		if !q.matchProps(n.Properties) {
			continue
		}
		obj, err := c.Factory.HydrateObject(n)
		if err != nil {
			continue
		}
		filtered, err := c.Privilege.Filter(obj, user.class())
		if err != nil {
			return nil, wrap("query", err)
		}
		if filtered != nil {
			coll.AddObject(filtered)
			count++
		}
	}
	return coll, nil
}

type query struct {
	label string
	props map[string]string
	limit int
}

func parseQuery(textual string) (*query, error) {
	q := &query{props: map[string]string{}, limit: 500}
	for _, tok := range strings.Fields(textual) {
		parts := strings.SplitN(tok, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], parts[1]
		switch key {
		case "label":
			q.label = val
		case "prop":
			kv := strings.SplitN(val, "=", 2)
			if len(kv) == 2 {
				q.props[kv[0]] = kv[1]
			}
		case "limit":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				q.limit = n
			}
		}
	}
	return q, nil
}

func (q *query) matchProps(props map[string]any) bool {
	for k, v := range q.props {
		if fmt.Sprint(props[k]) != v {
			return false
		}
	}
	return true
}


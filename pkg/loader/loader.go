// Package loader reads a YAML document describing actors, objects, edges,
// and NPEs and reports it through the client facade in one call (§4.8's
// supplemental bulk seed loader): the core's analogue of the teacher's
// bulk-data demo loader, specified only by its interface with C8.
package loader

import (
	"fmt"
	"os"

	"github.com/orneryd/provgraph/pkg/client"
	"github.com/orneryd/provgraph/pkg/provenance"
	"gopkg.in/yaml.v3"
)

// Document is the YAML shape a seed file is unmarshaled into.
type Document struct {
	Actors []ActorDoc `yaml:"actors"`
	Objects []ObjectDoc `yaml:"objects"`
	Edges   []EdgeDoc   `yaml:"edges"`
	NPEs    []NPEDoc    `yaml:"npes"`
}

// ActorDoc is one YAML actor entry.
type ActorDoc struct {
	AID         string `yaml:"aid"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	DisplayName string `yaml:"displayName"`
	Email       string `yaml:"email"`
}

// ObjectDoc is one YAML object entry.
type ObjectDoc struct {
	OID       string            `yaml:"oid"`
	Type      string            `yaml:"type"`
	Subtype   string            `yaml:"subtype"`
	Name      string            `yaml:"name"`
	Created   int64             `yaml:"created"`
	Heritable bool              `yaml:"heritable"`
	Owner     string            `yaml:"owner"`
	Privilege []string          `yaml:"privilege"`
	Metadata  map[string]string `yaml:"metadata"`
}

// EdgeDoc is one YAML provenance edge entry.
type EdgeDoc struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Type     string `yaml:"type"`
	Workflow string `yaml:"workflow"`
}

// NPEDoc is one YAML non-provenance edge entry.
type NPEDoc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Type string `yaml:"type"`
}

// LoadFile reads path, unmarshals it as a Document, and reports it through
// c. It returns the count of newly persisted elements.
func LoadFile(c *client.Client, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	return Load(c, data)
}

// Load unmarshals data as a Document and reports it through c.
func Load(c *client.Client, data []byte) (int, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("loader: parsing yaml: %w", err)
	}
	coll := doc.toCollection()
	return c.Report(coll)
}

func (d *Document) toCollection() *provenance.ProvenanceCollection {
	coll := provenance.NewProvenanceCollection()
	actorsByAID := map[string]*provenance.PLUSActor{}
	for _, a := range d.Actors {
		actor := &provenance.PLUSActor{
			AID: a.AID, Name: a.Name, Type: provenance.ActorType(a.Type),
			DisplayName: a.DisplayName, Email: a.Email,
		}
		actorsByAID[a.AID] = actor
		coll.AddActor(actor)
	}
	for _, o := range d.Objects {
		obj := &provenance.PLUSObject{
			OID: o.OID, Type: provenance.ObjectType(o.Type), Subtype: provenance.ObjectSubtype(o.Subtype),
			Name: o.Name, Created: o.Created, Heritable: o.Heritable, Metadata: o.Metadata,
		}
		if o.Owner != "" {
			obj.Owner = actorsByAID[o.Owner]
			if obj.Owner == nil {
				obj.Owner = &provenance.PLUSActor{AID: o.Owner}
			}
		}
		for _, pid := range o.Privilege {
			obj.Privilege = append(obj.Privilege, provenance.PrivilegeClass{PID: pid, Name: pid})
		}
		coll.AddObject(obj)
	}
	for _, e := range d.Edges {
		coll.AddEdge(&provenance.PLUSEdge{From: e.From, To: e.To, Type: provenance.EdgeType(e.Type), Workflow: e.Workflow})
	}
	for _, n := range d.NPEs {
		coll.AddNPE(&provenance.NPE{From: n.From, To: n.To, Type: n.Type})
	}
	return coll
}

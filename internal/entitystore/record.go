package entitystore

import (
	"time"
)

// AttrType is the attribute naming a record's logical type. Every record
// written through this package carries it; queries are scoped by it.
const AttrType = "type"

type Attribute struct {
	Name  string
	Value string
}

func Attr(name, value string) Attribute {
	return Attribute{Name: name, Value: value}
}

// Attributes are the queryable tags of a record, ordered as written.
// They are an index, not a payload: anything a reader filters on must be
// an attribute, everything else belongs in the payload body.
type Attributes []Attribute

func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (a Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Record is one immutable entry in the append-only store. A logical entity's
// history is the set of all records sharing an identity attribute; nothing
// here is ever rewritten in place.
type Record struct {
	// Key is the content-addressed identifier assigned by the engine.
	Key        string
	Attributes Attributes
	// Payload is an arbitrary JSON body. Historical records may lack
	// fields added later; readers must tolerate that.
	Payload   []byte
	CreatedAt time.Time
	// TTL is the expiration horizon. Zero means the record never expires.
	// Expiry is a read-side convention, records are not physically removed.
	TTL   time.Duration
	TxRef string
}

func (r Record) Type() string {
	return r.Attributes.Value(AttrType)
}

func (r Record) Attr(name string) string {
	return r.Attributes.Value(name)
}

// Expired reports whether the record's TTL horizon has passed at the given
// instant. Records without a TTL never expire.
func (r Record) Expired(now time.Time) bool {
	if r.TTL <= 0 {
		return false
	}
	return now.After(r.CreatedAt.Add(r.TTL))
}

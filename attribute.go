package gerber

// AttributeType classifies an Attribute by the command that defines it.
type AttributeType int

const (
	// AttributeFile covers attributes created by TF.
	AttributeFile AttributeType = iota
	// AttributeAperture covers attributes created by TA.
	AttributeAperture
	// AttributeObject covers attributes created by TO.
	AttributeObject
)

func (t AttributeType) String() string {
	switch t {
	case AttributeFile:
		return "File"
	case AttributeAperture:
		return "Aperture"
	case AttributeObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Attribute is a single name/values pair. Names beginning with '.' are
// reserved for the standard attributes defined by the format.
type Attribute struct {
	Type   AttributeType
	Name   string
	Values []string
}

func (a Attribute) clone() Attribute {
	values := make([]string, len(a.Values))
	copy(values, a.Values)
	return Attribute{Type: a.Type, Name: a.Name, Values: values}
}

// AttributeDictionary maps attribute name to Attribute. Zero value is
// a usable empty dictionary.
type AttributeDictionary struct {
	entries map[string]Attribute
}

// NewAttributeDictionary returns an empty dictionary.
func NewAttributeDictionary() AttributeDictionary {
	return AttributeDictionary{entries: make(map[string]Attribute)}
}

// Set inserts or replaces the attribute under its name.
func (d *AttributeDictionary) Set(a Attribute) {
	if d.entries == nil {
		d.entries = make(map[string]Attribute)
	}
	d.entries[a.Name] = a
}

// Get looks up an attribute by name.
func (d AttributeDictionary) Get(name string) (Attribute, bool) {
	a, ok := d.entries[name]
	return a, ok
}

// Delete removes one attribute by name (TD<name>).
func (d *AttributeDictionary) Delete(name string) {
	delete(d.entries, name)
}

// Clear removes every attribute (bare TD).
func (d *AttributeDictionary) Clear() {
	d.entries = make(map[string]Attribute)
}

// Len reports the number of entries.
func (d AttributeDictionary) Len() int { return len(d.entries) }

// FilterType returns an independent dictionary containing only entries of
// the given type, used e.g. to snapshot Aperture-type attributes at
// AD/AB/G36 time.
func (d AttributeDictionary) FilterType(t AttributeType) AttributeDictionary {
	out := NewAttributeDictionary()
	for _, a := range d.entries {
		if a.Type == t {
			out.Set(a.clone())
		}
	}
	return out
}

// Clone returns a deep, independent copy, used whenever attributes must be
// captured at a moment in time (emission, block open) rather than shared
// with the live dictionary that keeps mutating.
func (d AttributeDictionary) Clone() AttributeDictionary {
	out := NewAttributeDictionary()
	for _, a := range d.entries {
		out.Set(a.clone())
	}
	return out
}

// Merge returns a new dictionary containing every entry of d, overwritten
// by same-named entries from other. Used to combine aperture-level and
// object-level attributes at emission time, where the object-level entry
// wins on a name collision.
func (d AttributeDictionary) Merge(other AttributeDictionary) AttributeDictionary {
	out := d.Clone()
	for _, a := range other.entries {
		out.Set(a.clone())
	}
	return out
}

// All returns every entry, in no particular order.
func (d AttributeDictionary) All() []Attribute {
	out := make([]Attribute, 0, len(d.entries))
	for _, a := range d.entries {
		out = append(out, a)
	}
	return out
}

// StandardAttributeNames lists the reserved dotted attribute names of the
// format. Values are stored verbatim; their interpretation is a
// consumer concern.
var StandardAttributeNames = []string{
	".FileFunction", ".FilePolarity", ".Part", ".SameCoordinates", ".MD5",
	".AperFunction", ".DrillTolerance", ".FlashText",
	".N", ".P", ".C", ".CRot", ".CMfr", ".CMPN", ".CVal", ".CMnt", ".CFtp",
	".CPgN", ".CPgD", ".CHgt", ".CLbN", ".CLbD", ".CSup",
}

// IsStandardAttributeName reports whether name is one of the reserved
// standard attribute names.
func IsStandardAttributeName(name string) bool {
	for _, n := range StandardAttributeNames {
		if n == name {
			return true
		}
	}
	return false
}

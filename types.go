package gerber

import "gerberflow/geom"

// Polarity is Dark (paints) or Clear (erases existing dark pixels
// beneath).
type Polarity int

const (
	PolarityDark Polarity = iota
	PolarityClear
)

func (p Polarity) String() string {
	if p == PolarityClear {
		return "Clear"
	}
	return "Dark"
}

// Invert flips polarity, used when the aperture transformation's own
// polarity is Clear: painting through a Clear transform erases.
func (p Polarity) Invert() Polarity {
	if p == PolarityDark {
		return PolarityClear
	}
	return PolarityDark
}

// PlotState is the active interpolation mode.
type PlotState int

const (
	PlotLinear PlotState = iota
	PlotClockwise
	PlotCounterClockwise
)

// Unit is the file's physical unit, set by MO or the legacy G70/G71; the
// last such command wins.
type Unit int

const (
	UnitInch Unit = iota
	UnitMillimeter
)

func (u Unit) String() string {
	if u == UnitMillimeter {
		return "mm"
	}
	return "in"
}

// RepeatCount is the one-based (x,y) grid index of a Step-and-Repeat
// replica.
type RepeatCount struct {
	X, Y int
}

// ObjectMetadata carries the non-area bookkeeping attached to every
// GraphicalObject.
type ObjectMetadata struct {
	// StrokeInfo is the un-stroked centerline path (draws, arcs, regions)
	// or a single-point path (flashes), in world coordinates, carried
	// through all subsequent transforms.
	StrokeInfo []geom.Point
	// Repeat is non-nil only for objects produced by a Step-and-Repeat.
	Repeat *RepeatCount
	// BlockID disambiguates objects produced by distinct block flash
	// instantiations. Step-and-Repeat replicas keep the BlockID of the
	// objects they copy; they are told apart by Repeat.
	BlockID string
}

// GraphicalObject is one planar area with polarity, attributes, and
// stroke metadata.
type GraphicalObject struct {
	Area       geom.Area
	Polarity   Polarity
	Attributes AttributeDictionary
	Metadata   ObjectMetadata
}

func (o GraphicalObject) clone() GraphicalObject {
	path := make([]geom.Point, len(o.Metadata.StrokeInfo))
	copy(path, o.Metadata.StrokeInfo)
	var repeat *RepeatCount
	if o.Metadata.Repeat != nil {
		r := *o.Metadata.Repeat
		repeat = &r
	}
	return GraphicalObject{
		Area:       o.Area,
		Polarity:   o.Polarity,
		Attributes: o.Attributes.Clone(),
		Metadata: ObjectMetadata{
			StrokeInfo: path,
			Repeat:     repeat,
			BlockID:    o.Metadata.BlockID,
		},
	}
}

// transform returns a copy of o with its area and strokeInfo mapped
// through t and its polarity inverted iff invertPolarity is set.
func (o GraphicalObject) transform(t geom.AffineTransform, invertPolarity bool) GraphicalObject {
	out := o.clone()
	out.Area = out.Area.Transform(t)
	for i, p := range out.Metadata.StrokeInfo {
		out.Metadata.StrokeInfo[i] = t.Apply(p)
	}
	if invertPolarity {
		out.Polarity = out.Polarity.Invert()
	}
	return out
}

// GraphicsStream is the ordered sequence of GraphicalObjects produced by
// interpreting a file.
type GraphicsStream struct {
	Objects []GraphicalObject
}

// Append adds o to the end of the stream, preserving emission order.
func (s *GraphicsStream) Append(o GraphicalObject) {
	s.Objects = append(s.Objects, o)
}

// Bounds is the AABB union of non-degenerate member objects (degenerate
// meaning zero width and zero height).
func (s GraphicsStream) Bounds() geom.Bounds {
	var b geom.Bounds
	first := true
	for _, o := range s.Objects {
		ob := o.Area.Bounds()
		if ob.Empty() || ob.Degenerate() {
			continue
		}
		if first {
			b = ob
			first = false
			continue
		}
		b = b.Union(ob)
	}
	if first {
		return geom.Bounds{MinX: 0, MinY: 0, MaxX: -1, MaxY: -1}
	}
	return b
}

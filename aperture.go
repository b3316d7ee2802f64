package gerber

import (
	"strconv"

	"gerberflow/geom"
)

// ApertureKind tags the variant of an Aperture; the interpreter does
// exhaustive case analysis on it rather than dispatching dynamically.
type ApertureKind int

const (
	// ApertureStandardOrMacro is a standard-shape or macro aperture,
	// realized once to a single local-coordinate Area.
	ApertureStandardOrMacro ApertureKind = iota
	// ApertureBlock is a composite aperture whose image is the recorded
	// contents of an AB...AB block.
	ApertureBlock
	// ApertureStepAndRepeat is a composite aperture whose image is the
	// recorded contents of an SR...SR block (only ever flattened
	// directly into the enclosing stream, never itself flashed, but
	// modeled uniformly with Block since both share buffering semantics).
	ApertureStepAndRepeat
)

// Aperture is an instantiated template plus id, attached attributes, and a
// precomputed graphics-stream fragment.
type Aperture struct {
	ID           string
	TemplateName string
	Kind         ApertureKind

	// StandardOrMacro fields.
	LocalArea     geom.Area
	StandardShape TemplateKind // meaningful only when TemplateName is C/R/O/P, drives D01 plot support
	Params        []float64

	// Block/StepAndRepeat fields.
	Stream GraphicsStream

	// Attributes are the Aperture-type entries captured at the moment of
	// creation (AD/AB-open/SR-open time).
	Attributes AttributeDictionary
}

// NewStandardOrMacroAperture realizes a template with the given actual
// parameters and the currently collected aperture attributes.
func NewStandardOrMacroAperture(id, templateName string, template ApertureTemplate, params []float64, attrs AttributeDictionary, lines LineRange) (*Aperture, error) {
	area, err := template.Realize(params, lines)
	if err != nil {
		return nil, err
	}
	return &Aperture{
		ID:            id,
		TemplateName:  templateName,
		Kind:          ApertureStandardOrMacro,
		LocalArea:     area,
		StandardShape: template.Kind,
		Params:        params,
		Attributes:    attrs.Clone(),
	}, nil
}

// ValidateApertureID enforces that an aperture id is a decimal integer
// of value 10 or above.
func ValidateApertureID(s string, lines LineRange) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, newFault(KindInvalidAperture, lines, "aperture id %q is not a decimal integer", s)
	}
	if n < 10 {
		return 0, newFault(KindInvalidAperture, lines, "aperture id %d must be >= 10", n)
	}
	return n, nil
}

// blockIDGenerator issues stable, collision-free per-instantiation block
// ids for flashes of block apertures.
type blockIDGenerator func() string

// Flash applies xform to a copy of the aperture's graphics stream at
// point, producing zero or more GraphicalObjects for composite apertures
// or exactly one for standard/macro apertures.
func (ap *Aperture) Flash(point geom.Point, xform ApertureTransformation, objAttrs AttributeDictionary, newBlockID blockIDGenerator) []GraphicalObject {
	switch ap.Kind {
	case ApertureStandardOrMacro:
		local := GraphicalObject{
			Area:     ap.LocalArea,
			Polarity: PolarityDark,
			Metadata: ObjectMetadata{StrokeInfo: []geom.Point{{}}},
		}
		local.Attributes = ap.Attributes
		return []GraphicalObject{xform.Apply(point, local, objAttrs)}

	case ApertureBlock, ApertureStepAndRepeat:
		id := newBlockID()
		out := make([]GraphicalObject, 0, len(ap.Stream.Objects))
		for _, o := range ap.Stream.Objects {
			oc := o.clone()
			oc.Metadata.BlockID = id
			out = append(out, xform.Apply(point, oc, objAttrs))
		}
		return out

	default:
		return nil
	}
}

package gerber

import "gerberflow/geom"

// ApertureTransformation is the (polarity, mirror, scale, rotation) state
// set by LP/LM/LR/LS. The default transform (Dark, no mirror, scale 1,
// rotation 0) comes from DefaultApertureTransformation; the zero value has
// mirror factors and scale of 0 and is not usable as a transform.
type ApertureTransformation struct {
	Polarity Polarity
	MirrorX  float64 // +1 or -1
	MirrorY  float64 // +1 or -1
	Scale    float64
	Rotation float64 // degrees
}

// DefaultApertureTransformation is LPD/no-mirror/LS1/LR0.
func DefaultApertureTransformation() ApertureTransformation {
	return ApertureTransformation{Polarity: PolarityDark, MirrorX: 1, MirrorY: 1, Scale: 1}
}

// Matrix returns Rotate(rotation) ∘ Scale(mirrorX*scale, mirrorY*scale):
// mirror/scale applied before rotation, per the Gerber format
// specification's transformation order.
func (a ApertureTransformation) Matrix() geom.AffineTransform {
	return geom.Rotate(a.Rotation).Compose(geom.Scale(a.MirrorX*a.Scale, a.MirrorY*a.Scale))
}

// Apply composes translation∘rotation∘scale, maps the object's area and
// strokeInfo through it, reverses polarity iff the current polarity is
// Clear, and merges objAttrs into the object's attributes.
func (a ApertureTransformation) Apply(translation geom.Point, obj GraphicalObject, objAttrs AttributeDictionary) GraphicalObject {
	t := geom.Translate(translation.X, translation.Y).Compose(a.Matrix())
	out := obj.transform(t, a.Polarity == PolarityClear)
	out.Attributes = out.Attributes.Merge(objAttrs)
	return out
}

// setLP/setLM/setLR/setLS apply one extended transformation command's body
// (already stripped of its "LP"/"LM"/"LR"/"LS" prefix) to the transform in
// place.
func (a *ApertureTransformation) setLP(body string, lines LineRange) error {
	switch body {
	case "D":
		a.Polarity = PolarityDark
	case "C":
		a.Polarity = PolarityClear
	default:
		return newFault(KindInvalidCommand, lines, "LP: expected D or C, got %q", body)
	}
	return nil
}

func (a *ApertureTransformation) setLM(body string, lines LineRange) error {
	switch body {
	case "N":
		a.MirrorX, a.MirrorY = 1, 1
	case "X":
		a.MirrorX, a.MirrorY = -1, 1
	case "Y":
		a.MirrorX, a.MirrorY = 1, -1
	case "XY", "YX": // LMYX is not in the format; treated identically to LMXY
		a.MirrorX, a.MirrorY = -1, -1
	default:
		return newFault(KindInvalidCommand, lines, "LM: expected N, X, Y, XY, or YX, got %q", body)
	}
	return nil
}

func (a *ApertureTransformation) setLR(deg float64) { a.Rotation = deg }

func (a *ApertureTransformation) setLS(scale float64, lines LineRange) error {
	if !(scale > 0) {
		return newFault(KindInvalidCommand, lines, "LS: scale must be positive, got %v", scale)
	}
	a.Scale = scale
	return nil
}

package gerber

import (
	"math"

	"gerberflow/geom"
)

// StepAndRepeatParams is the parsed body of an SR<...>* open command:
// "%SRXaYbIdXJdY*%".
type StepAndRepeatParams struct {
	CountX, CountY int
	StepX, StepY   float64
}

// isLegacyNoop recognizes the deprecated SRX1Y1I0J0 form, a no-op: the
// recorded objects pass through untranslated and without repeat metadata.
func (p StepAndRepeatParams) isLegacyNoop() bool {
	return p.CountX == 1 && p.CountY == 1 && p.StepX == 0 && p.StepY == 0
}

// validateStepAndRepeat enforces counts >= 1, steps finite, and a
// nonzero step whenever its axis repeats more than once.
func validateStepAndRepeat(p StepAndRepeatParams, lines LineRange) error {
	if p.CountX < 1 || p.CountY < 1 {
		return newFault(KindInvalidSR, lines, "SR: countX and countY must be >= 1, got %d,%d", p.CountX, p.CountY)
	}
	if math.IsNaN(p.StepX) || math.IsInf(p.StepX, 0) || math.IsNaN(p.StepY) || math.IsInf(p.StepY, 0) {
		return newFault(KindInvalidSR, lines, "SR: step values must be finite")
	}
	if p.CountX > 1 && p.StepX == 0 {
		return newFault(KindInvalidSR, lines, "SR: stepX must be nonzero when countX > 1")
	}
	if p.CountY > 1 && p.StepY == 0 {
		return newFault(KindInvalidSR, lines, "SR: stepY must be nonzero when countY > 1")
	}
	return nil
}

// blockFrame is one entry of the interpreter's open-block stack. Block
// and Step-and-Repeat share the same buffering semantics, differing only
// in how they are closed.
type blockFrame struct {
	kind     ApertureKind // ApertureBlock or ApertureStepAndRepeat
	aptID    string       // decimal string id; Block only
	snapshot AttributeDictionary
	stream   GraphicsStream
	sr       StepAndRepeatParams
}

// newBlockFrame opens an AB frame, snapshotting the dictionary's current
// Aperture-type attributes; dictionary mutations between open and close
// do not affect the block.
func newBlockFrame(id string, liveAttrs AttributeDictionary) *blockFrame {
	return &blockFrame{kind: ApertureBlock, aptID: id, snapshot: liveAttrs.FilterType(AttributeAperture)}
}

// newStepAndRepeatFrame opens an SR frame with the same snapshot semantics.
func newStepAndRepeatFrame(params StepAndRepeatParams, liveAttrs AttributeDictionary) *blockFrame {
	return &blockFrame{kind: ApertureStepAndRepeat, snapshot: liveAttrs.FilterType(AttributeAperture), sr: params}
}

// emit appends an object to this frame's internal stream.
func (f *blockFrame) emit(o GraphicalObject) {
	f.stream.Append(o)
}

// stampedObjects returns the frame's recorded objects with the snapshotted
// aperture attributes merged in, after each object's own attributes.
func (f *blockFrame) stampedObjects() []GraphicalObject {
	out := make([]GraphicalObject, len(f.stream.Objects))
	for i, o := range f.stream.Objects {
		oc := o.clone()
		oc.Attributes = oc.Attributes.Merge(f.snapshot)
		out[i] = oc
	}
	return out
}

// closeAsBlockAperture registers the frame's stamped stream as a composite
// Aperture under its declared id.
func (f *blockFrame) closeAsBlockAperture() *Aperture {
	return &Aperture{
		ID:         f.aptID,
		Kind:       ApertureBlock,
		Stream:     GraphicsStream{Objects: f.stampedObjects()},
		Attributes: f.snapshot,
	}
}

// flattenStepAndRepeat replicates the frame's stamped stream across a
// countX x countY grid, Y-major within each X, and returns the
// objects ready to append to the enclosing stream (outer stream or
// enclosing block).
func (f *blockFrame) flattenStepAndRepeat() []GraphicalObject {
	stamped := f.stampedObjects()
	if f.sr.isLegacyNoop() {
		return stamped
	}
	out := make([]GraphicalObject, 0, len(stamped)*f.sr.CountX*f.sr.CountY)
	for i := 0; i < f.sr.CountX; i++ {
		for j := 0; j < f.sr.CountY; j++ {
			translate := geom.Translate(float64(i)*f.sr.StepX, float64(j)*f.sr.StepY)
			rc := RepeatCount{X: i + 1, Y: j + 1}
			for _, o := range stamped {
				oc := o.transform(translate, false)
				r := rc
				oc.Metadata.Repeat = &r
				out = append(out, oc)
			}
		}
	}
	return out
}

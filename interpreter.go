// Package gerber implements a Gerber Layer Format reader: see doc comment
// in errors.go for the package-level overview.
package gerber

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gerberflow/geom"
)

// ErrCancelled is returned by Parse when a cooperative cancellation
// signal is observed between commands.
var ErrCancelled = newFault(KindStateError, LineRange{}, "parse cancelled")

// Result is the read-only output of a completed parse.
type Result struct {
	Stream         GraphicsStream
	FileAttributes AttributeDictionary
	Units          Unit
	MD5            string
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithLogger installs a structured logger emitting debug events per
// word command dispatched and per object emitted. The default is
// zerolog.Nop(), so library use is silent unless a caller opts in.
func WithLogger(l zerolog.Logger) Option { return func(ip *Interpreter) { ip.logger = l } }

// WithDigest enables the MD5 accumulator.
func WithDigest(enabled bool) Option { return func(ip *Interpreter) { ip.wantDigest = enabled } }

// WithCancel wires a cooperative cancellation channel, polled between
// commands.
func WithCancel(ch <-chan struct{}) Option { return func(ip *Interpreter) { ip.cancelCh = ch } }

// WithProgress installs a callback invoked with a coarse fraction-of-bytes-
// consumed progress value after each command.
func WithProgress(fn func(float64)) Option { return func(ip *Interpreter) { ip.progressFn = fn } }

// Interpreter is the graphics state machine: it maintains the Gerber
// abstract machine (coordinate format, units, plot mode, current point,
// current aperture, aperture transformation, attribute dictionaries,
// region and block nesting) and dispatches each tokenizer command,
// emitting GraphicalObjects into the output stream or the currently open
// block.
type Interpreter struct {
	tok    *Tokenizer
	logger zerolog.Logger

	wantDigest bool
	cancelCh   <-chan struct{}
	progressFn func(float64)

	// Graphics state.
	format            CoordinateFormat
	unit              Unit
	currentPoint      geom.Point
	singleQuadrant    bool
	currentApertureID string
	plotState         PlotState
	xform             ApertureTransformation

	// File-scoped dictionaries and nesting state.
	templates map[string]ApertureTemplate
	apertures map[string]*Aperture
	fileAttrs AttributeDictionary
	liveAttrs AttributeDictionary
	stack     []*blockFrame
	region    *regionBuilder

	inMacroDef bool
	macroName  string
	macroLines []string

	stream     GraphicsStream
	done       bool
	lastPlotOp string // "01", "02", or "03": the most recent plot operation

	newBlockID blockIDGenerator
}

// New builds an Interpreter over the full input bytes.
func New(data []byte, opts ...Option) *Interpreter {
	ip := &Interpreter{
		unit:       UnitInch,
		plotState:  PlotLinear,
		xform:      DefaultApertureTransformation(),
		templates:  StandardTemplates(),
		apertures:  make(map[string]*Aperture),
		fileAttrs:  NewAttributeDictionary(),
		liveAttrs:  NewAttributeDictionary(),
		logger:     zerolog.Nop(),
		newBlockID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(ip)
	}
	ip.tok = NewTokenizer(data, ip.wantDigest)
	return ip
}

// Parse runs the interpreter to completion, returning the produced
// graphics stream and dictionaries. Every fault is fatal: no object is
// emitted after an error is observed.
func (ip *Interpreter) Parse() (*Result, error) {
	for {
		if ip.cancelCh != nil {
			select {
			case <-ip.cancelCh:
				ip.logger.Warn().Msg("parse cancelled")
				return nil, ErrCancelled
			default:
			}
		}

		tok, err := ip.tok.Next()
		if err != nil {
			return nil, err
		}
		if ip.progressFn != nil {
			ip.progressFn(ip.tok.Progress())
		}

		switch tok.Kind {
		case TokenEOF:
			if !ip.done {
				return nil, newFault(KindTruncated, tok.Lines, "file ends without M00/M02")
			}
			return ip.result(), nil

		case TokenPercent:
			if err := ip.consumeExtendedGroup(); err != nil {
				return nil, err
			}

		case TokenCommand:
			ip.logger.Debug().Str("command", tok.Text).Msg("dispatch word command")
			if err := ip.handleWordCommand(tok); err != nil {
				return nil, err
			}
			if ip.done {
				return ip.result(), nil
			}
		}
	}
}

func (ip *Interpreter) result() *Result {
	return &Result{
		Stream:         ip.stream,
		FileAttributes: ip.fileAttrs,
		Units:          ip.unit,
		MD5:            ip.tok.Digest(),
	}
}

// emit routes a produced GraphicalObject to the innermost open block's
// buffer, or the file's output stream.
func (ip *Interpreter) emit(o GraphicalObject) {
	ip.logger.Debug().Str("polarity", o.Polarity.String()).Msg("emit object")
	if len(ip.stack) > 0 {
		ip.stack[len(ip.stack)-1].emit(o)
		return
	}
	ip.stream.Append(o)
}

// --- Extended commands -------------------------------------------------

func (ip *Interpreter) consumeExtendedGroup() error {
	for {
		tok, err := ip.tok.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenPercent:
			if ip.inMacroDef {
				return ip.finishMacroDef(tok.Lines)
			}
			return nil
		case TokenCommand:
			if ip.inMacroDef {
				ip.macroLines = append(ip.macroLines, tok.Text)
				continue
			}
			if err := ip.handleExtendedCommand(tok); err != nil {
				return err
			}
		case TokenEOF:
			return newFault(KindTruncated, tok.Lines, "unterminated extended command group")
		}
	}
}

func (ip *Interpreter) handleExtendedCommand(tok Token) error {
	text, lines := tok.Text, tok.Lines
	switch {
	case strings.HasPrefix(text, "FS"):
		if ip.format.Set() {
			return newFault(KindStateError, lines, "FS: coordinate format already set")
		}
		f, err := parseFS(text[2:], lines)
		if err != nil {
			return err
		}
		ip.format = f
		return nil

	case strings.HasPrefix(text, "MO"):
		return ip.handleMO(text[2:], lines)

	case strings.HasPrefix(text, "AD"):
		return ip.handleAD(text[2:], lines)

	case strings.HasPrefix(text, "AB"):
		return ip.handleAB(text[2:], lines)

	case strings.HasPrefix(text, "AM"):
		return ip.handleAMOpen(text[2:], lines)

	case strings.HasPrefix(text, "LP"):
		return ip.xform.setLP(text[2:], lines)

	case strings.HasPrefix(text, "LM"):
		return ip.xform.setLM(text[2:], lines)

	case strings.HasPrefix(text, "LR"):
		v, err := strconv.ParseFloat(text[2:], 64)
		if err != nil {
			return newFault(KindInvalidCommand, lines, "LR: malformed rotation %q", text[2:])
		}
		ip.xform.setLR(v)
		return nil

	case strings.HasPrefix(text, "LS"):
		v, err := strconv.ParseFloat(text[2:], 64)
		if err != nil {
			return newFault(KindInvalidCommand, lines, "LS: malformed scale %q", text[2:])
		}
		return ip.xform.setLS(v, lines)

	case strings.HasPrefix(text, "TF"):
		return ip.handleTF(text[2:], lines)

	case strings.HasPrefix(text, "TA"):
		return ip.handleTAttr(AttributeAperture, "TA", text[2:], lines)

	case strings.HasPrefix(text, "TO"):
		return ip.handleTAttr(AttributeObject, "TO", text[2:], lines)

	case strings.HasPrefix(text, "TD"):
		name := strings.TrimPrefix(text, "TD")
		if name == "" {
			ip.liveAttrs.Clear()
		} else {
			ip.liveAttrs.Delete(name)
		}
		return nil

	case strings.HasPrefix(text, "SR"):
		return ip.handleSR(text[2:], lines)

	case strings.HasPrefix(text, "IN"):
		return nil // file name, ignored

	case strings.HasPrefix(text, "LN"):
		return nil // layer name, deprecated, ignored

	case strings.HasPrefix(text, "AS"):
		return requireDefault(text, "ASAXBY", "AS", lines)

	case strings.HasPrefix(text, "IP"):
		return requireDefault(text, "IPPOS", "IP", lines)

	case strings.HasPrefix(text, "IR"):
		return requireDefault(text, "IR0", "IR", lines)

	case strings.HasPrefix(text, "MI"):
		return requireDefault(text, "MIA0B0", "MI", lines)

	case strings.HasPrefix(text, "OF"):
		return requireDefault(text, "OFA0B0", "OF", lines)

	case strings.HasPrefix(text, "SF"):
		return requireDefault(text, "SFA1B1", "SF", lines)

	default:
		return newFault(KindInvalidCommand, lines, "unrecognized extended command %q", text)
	}
}

func requireDefault(text, want, name string, lines LineRange) error {
	if text != want {
		return newFault(KindUnsupportedFormat, lines, "%s: only the default %q form is supported, got %q", name, want, text)
	}
	return nil
}

func (ip *Interpreter) handleMO(body string, lines LineRange) error {
	switch body {
	case "IN":
		ip.unit = UnitInch
	case "MM":
		ip.unit = UnitMillimeter
	default:
		return newFault(KindUnsupportedFormat, lines, "MO: expected IN or MM, got %q", body)
	}
	return nil
}

func parseAttrBody(body string) (name string, values []string) {
	parts := strings.Split(body, ",")
	name = parts[0]
	if len(parts) > 1 {
		values = parts[1:]
	}
	return name, values
}

func (ip *Interpreter) handleTF(body string, lines LineRange) error {
	name, values := parseAttrBody(body)
	if name == "" {
		return newFault(KindInvalidCommand, lines, "TF: missing attribute name")
	}
	ip.fileAttrs.Set(Attribute{Type: AttributeFile, Name: name, Values: values})
	return nil
}

func (ip *Interpreter) handleTAttr(t AttributeType, tag, body string, lines LineRange) error {
	name, values := parseAttrBody(body)
	if name == "" {
		return newFault(KindInvalidCommand, lines, "%s: missing attribute name", tag)
	}
	ip.liveAttrs.Set(Attribute{Type: t, Name: name, Values: values})
	return nil
}

func (ip *Interpreter) handleAD(body string, lines LineRange) error {
	if len(body) < 2 || body[0] != 'D' {
		return newFault(KindInvalidAperture, lines, "AD: expected Dn<template>, got %q", body)
	}
	rest := body[1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	idStr := rest[:i]
	if idStr == "" {
		return newFault(KindInvalidAperture, lines, "AD: missing aperture id")
	}
	if _, err := ValidateApertureID(idStr, lines); err != nil {
		return err
	}
	rest = rest[i:]
	name, paramStr := rest, ""
	if c := strings.IndexByte(rest, ','); c >= 0 {
		name, paramStr = rest[:c], rest[c+1:]
	}
	if name == "" {
		return newFault(KindInvalidAperture, lines, "AD: missing template name")
	}
	tmpl, ok := ip.templates[name]
	if !ok {
		return newFault(KindInvalidAperture, lines, "AD: unknown template %q", name)
	}
	params, err := ParseApertureParams(paramStr, lines)
	if err != nil {
		return err
	}
	ap, err := NewStandardOrMacroAperture(idStr, name, tmpl, params, ip.liveAttrs.FilterType(AttributeAperture), lines)
	if err != nil {
		return err
	}
	ip.apertures[idStr] = ap
	return nil
}

func (ip *Interpreter) handleAB(body string, lines LineRange) error {
	if body == "" {
		if len(ip.stack) == 0 || ip.stack[len(ip.stack)-1].kind != ApertureBlock {
			return newFault(KindStateError, lines, "AB: close without a matching open block")
		}
		return ip.closeTopFrame()
	}
	if body[0] != 'D' {
		return newFault(KindInvalidAperture, lines, "AB: expected Dn, got %q", body)
	}
	idStr := body[1:]
	if _, err := ValidateApertureID(idStr, lines); err != nil {
		return err
	}
	ip.stack = append(ip.stack, newBlockFrame(idStr, ip.liveAttrs))
	return nil
}

func (ip *Interpreter) handleSR(body string, lines LineRange) error {
	if body == "" {
		if len(ip.stack) == 0 || ip.stack[len(ip.stack)-1].kind != ApertureStepAndRepeat {
			return newFault(KindStateError, lines, "SR: close without a matching open Step-and-Repeat")
		}
		return ip.closeTopFrame()
	}
	if len(ip.stack) > 0 {
		return newFault(KindStateError, lines, "SR: nested Step-and-Repeat inside another open block is forbidden")
	}
	params, err := ip.parseSRParams(body, lines)
	if err != nil {
		return err
	}
	if err := validateStepAndRepeat(params, lines); err != nil {
		return err
	}
	ip.stack = append(ip.stack, newStepAndRepeatFrame(params, ip.liveAttrs))
	return nil
}

func (ip *Interpreter) parseSRParams(body string, lines LineRange) (StepAndRepeatParams, error) {
	p := StepAndRepeatParams{CountX: 1, CountY: 1}
	i := 0
	for i < len(body) {
		tag := body[i]
		i++
		start := i
		for i < len(body) && !isSRTag(body[i]) {
			i++
		}
		numStr := body[start:i]
		switch tag {
		case 'X':
			n, err := strconv.Atoi(numStr)
			if err != nil {
				return p, newFault(KindInvalidSR, lines, "SR: malformed X count %q", numStr)
			}
			p.CountX = n
		case 'Y':
			n, err := strconv.Atoi(numStr)
			if err != nil {
				return p, newFault(KindInvalidSR, lines, "SR: malformed Y count %q", numStr)
			}
			p.CountY = n
		case 'I':
			v, err := ip.parseAxisCoord('X', numStr, lines)
			if err != nil {
				return p, err
			}
			p.StepX = v
		case 'J':
			v, err := ip.parseAxisCoord('Y', numStr, lines)
			if err != nil {
				return p, err
			}
			p.StepY = v
		default:
			return p, newFault(KindInvalidSR, lines, "SR: unexpected tag %q", string(tag))
		}
	}
	return p, nil
}

func isSRTag(b byte) bool {
	switch b {
	case 'X', 'Y', 'I', 'J':
		return true
	}
	return false
}

func (ip *Interpreter) handleAMOpen(name string, lines LineRange) error {
	if name == "" {
		return newFault(KindInvalidMacro, lines, "AM: missing macro name")
	}
	ip.inMacroDef = true
	ip.macroName = name
	ip.macroLines = nil
	return nil
}

func (ip *Interpreter) finishMacroDef(lines LineRange) error {
	body, err := compileMacroBody(ip.macroLines, lines)
	if err != nil {
		return err
	}
	ip.templates[ip.macroName] = ApertureTemplate{Kind: TemplateMacro, Name: ip.macroName, MacroBody: body}
	ip.inMacroDef, ip.macroName, ip.macroLines = false, "", nil
	return nil
}

func (ip *Interpreter) closeTopFrame() error {
	top := ip.stack[len(ip.stack)-1]
	ip.stack = ip.stack[:len(ip.stack)-1]
	switch top.kind {
	case ApertureBlock:
		ap := top.closeAsBlockAperture()
		ip.apertures[ap.ID] = ap
	case ApertureStepAndRepeat:
		for _, o := range top.flattenStepAndRepeat() {
			ip.emit(o)
		}
	}
	return nil
}

// --- Word commands -----------------------------------------------------

// isLexemeStart reports the letters that may start a new lexeme within a
// word command string.
func isLexemeStart(b byte) bool {
	switch b {
	case 'N', 'G', 'X', 'Y', 'I', 'J', 'D', 'M':
		return true
	}
	return false
}

func splitWordLexemes(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		start := i
		i++
		for i < len(s) && !isLexemeStart(s[i]) {
			i++
		}
		out = append(out, s[start:i])
	}
	return out
}

func (ip *Interpreter) handleWordCommand(tok Token) error {
	text := tok.Text
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "G04") {
		return nil // comment, rest of command discarded
	}

	lexemes := splitWordLexemes(text)
	if len(lexemes) == 0 {
		return newFault(KindInvalidCommand, tok.Lines, "empty or malformed word command %q", text)
	}

	var pendingX, pendingY, pendingI, pendingJ *float64
	sawD := false
	onlyCoords := true

	for _, lex := range lexemes {
		body := lex[1:]
		switch lex[0] {
		case 'N':
			onlyCoords = false
		case 'G':
			onlyCoords = false
			if err := ip.handleGCode(body, tok.Lines); err != nil {
				return err
			}
		case 'X':
			v, err := ip.parseAxisCoord('X', body, tok.Lines)
			if err != nil {
				return err
			}
			pendingX = &v
		case 'Y':
			v, err := ip.parseAxisCoord('Y', body, tok.Lines)
			if err != nil {
				return err
			}
			pendingY = &v
		case 'I':
			v, err := ip.parseAxisCoord('X', body, tok.Lines)
			if err != nil {
				return err
			}
			pendingI = &v
		case 'J':
			v, err := ip.parseAxisCoord('Y', body, tok.Lines)
			if err != nil {
				return err
			}
			pendingJ = &v
		case 'D':
			onlyCoords = false
			sawD = true
			if err := ip.handleDCode(body, pendingX, pendingY, pendingI, pendingJ, tok.Lines); err != nil {
				return err
			}
		case 'M':
			onlyCoords = false
			if err := ip.handleMCode(body, tok.Lines); err != nil {
				return err
			}
		default:
			return newFault(KindInvalidCommand, tok.Lines, "unexpected lexeme %q", lex)
		}
	}

	if !sawD && onlyCoords {
		// Deprecated implicit operation: permitted only when the previous
		// operation was a D01.
		if ip.lastPlotOp != "01" {
			return newFault(KindInvalidCommand, tok.Lines, "bare coordinates %q are only permitted immediately after a D01", text)
		}
		if err := ip.handleDCode("01", pendingX, pendingY, pendingI, pendingJ, tok.Lines); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) handleGCode(body string, lines LineRange) error {
	switch body {
	case "01":
		ip.plotState = PlotLinear
	case "02":
		ip.plotState = PlotClockwise
	case "03":
		ip.plotState = PlotCounterClockwise
	case "36":
		return ip.openRegion(lines)
	case "37":
		return ip.closeRegion(lines)
	case "54", "55":
		// deprecated aperture-select-via-G-code forms; ignored
	case "70":
		ip.unit = UnitInch
	case "71":
		ip.unit = UnitMillimeter
	case "74":
		ip.singleQuadrant = true
	case "75":
		ip.singleQuadrant = false
	case "90":
		// absolute notation, the only supported mode; accepted silently
	case "91":
		return newFault(KindUnsupportedFormat, lines, "G91 (incremental notation) is not supported")
	default:
		return newFault(KindInvalidCommand, lines, "unknown G-code G%s", body)
	}
	return nil
}

func (ip *Interpreter) handleMCode(body string, lines LineRange) error {
	switch body {
	case "00", "02":
		if len(ip.stack) > 0 {
			if ip.stack[len(ip.stack)-1].kind == ApertureStepAndRepeat && len(ip.stack) == 1 {
				if err := ip.closeTopFrame(); err != nil {
					return err
				}
			} else {
				return newFault(KindStateError, lines, "unclosed block at M%s", body)
			}
		}
		if ip.region != nil {
			return newFault(KindStateError, lines, "unclosed region at M%s", body)
		}
		ip.done = true
	case "01":
		// program stop, no semantic effect here; ignored
	default:
		return newFault(KindInvalidCommand, lines, "unknown M-code M%s", body)
	}
	return nil
}

func (ip *Interpreter) handleDCode(body string, px, py, pi, pj *float64, lines LineRange) error {
	n, err := strconv.Atoi(body)
	if err != nil {
		return newFault(KindInvalidCommand, lines, "malformed D-code D%s", body)
	}
	if n >= 10 {
		id := strconv.Itoa(n)
		if _, ok := ip.apertures[id]; !ok {
			return newFault(KindStateError, lines, "D%d: aperture not defined", n)
		}
		ip.currentApertureID = id
		return nil
	}
	switch n {
	case 1:
		ip.lastPlotOp = "01"
		return ip.plot(px, py, pi, pj, lines)
	case 2:
		ip.lastPlotOp = "02"
		return ip.move(px, py, lines)
	case 3:
		ip.lastPlotOp = "03"
		return ip.flash(px, py, lines)
	default:
		return newFault(KindInvalidCommand, lines, "unsupported D-code D%d", n)
	}
}

func (ip *Interpreter) parseAxisCoord(axis byte, body string, lines LineRange) (float64, error) {
	if !ip.format.Set() {
		return 0, newFault(KindInvalidCoordinate, lines, "coordinate consumed before FS set the format")
	}
	var intDigits, fracDigits int
	switch axis {
	case 'X':
		intDigits, fracDigits = ip.format.XInt, ip.format.XFrac
	case 'Y':
		intDigits, fracDigits = ip.format.YInt, ip.format.YFrac
	}
	return ParseCoordinate(body, intDigits, fracDigits, ip.format.OmitTrailing)
}

func (ip *Interpreter) resolveEndpoint(px, py *float64) geom.Point {
	p := ip.currentPoint
	if px != nil {
		p.X = *px
	}
	if py != nil {
		p.Y = *py
	}
	return p
}

// --- D01/D02/D03 ---------------------------------------------------------

func (ip *Interpreter) move(px, py *float64, lines LineRange) error {
	if !ip.format.Set() {
		return newFault(KindInvalidCoordinate, lines, "D02 before FS set the format")
	}
	end := ip.resolveEndpoint(px, py)
	if ip.region != nil {
		ip.region.moveTo(end)
	}
	ip.currentPoint = end
	return nil
}

func (ip *Interpreter) flash(px, py *float64, lines LineRange) error {
	if !ip.format.Set() {
		return newFault(KindInvalidCoordinate, lines, "D03 before FS set the format")
	}
	if ip.region != nil {
		return newFault(KindStateError, lines, "D03 is not allowed inside an open region")
	}
	if ip.currentApertureID == "" {
		return newFault(KindStateError, lines, "D03 before an aperture is selected")
	}
	end := ip.resolveEndpoint(px, py)
	ap := ip.apertures[ip.currentApertureID]
	objAttrs := ip.liveAttrs.FilterType(AttributeObject)
	for _, o := range ap.Flash(end, ip.xform, objAttrs, ip.newBlockID) {
		ip.emit(o)
	}
	ip.currentPoint = end
	return nil
}

func (ip *Interpreter) plot(px, py, pi, pj *float64, lines LineRange) error {
	if !ip.format.Set() {
		return newFault(KindInvalidCoordinate, lines, "D01 before FS set the format")
	}
	end := ip.resolveEndpoint(px, py)

	if ip.region != nil {
		switch ip.plotState {
		case PlotLinear:
			ip.region.lineTo(end)
		case PlotClockwise, PlotCounterClockwise:
			params, err := ip.computeArc(end, pi, pj, lines)
			if err != nil {
				return err
			}
			ip.region.arcTo(params.Center, params.Radius, params.StartAngleDeg, params.ExtentAngleDeg)
		}
		ip.currentPoint = end
		return nil
	}

	if ip.currentApertureID == "" {
		return newFault(KindStateError, lines, "D01 before an aperture is selected")
	}
	ap := ip.apertures[ip.currentApertureID]
	if ap.Kind != ApertureStandardOrMacro {
		return newFault(KindInvalidAperture, lines, "D01: block apertures cannot be used as a stroking pen")
	}

	switch ip.plotState {
	case PlotLinear:
		obj, err := ip.strokeLinear(ap, ip.currentPoint, end, lines)
		if err != nil {
			return err
		}
		ip.emit(obj)
	case PlotClockwise, PlotCounterClockwise:
		objs, err := ip.strokeArc(ap, ip.currentPoint, end, pi, pj, lines)
		if err != nil {
			return err
		}
		for _, o := range objs {
			ip.emit(o)
		}
	}
	ip.currentPoint = end
	return nil
}

func (ip *Interpreter) computeArc(end geom.Point, pi, pj *float64, lines LineRange) (geom.ArcParams, error) {
	i, j := 0.0, 0.0
	if pi != nil {
		i = *pi
	}
	if pj != nil {
		j = *pj
	}
	params, err := geom.ComputeArcParameters(ip.currentPoint, end, i, j, ip.plotState == PlotClockwise, ip.singleQuadrant)
	if err != nil {
		return geom.ArcParams{}, wrapFault(KindInvalidArc, lines, err, "arc parameter solve")
	}
	return params, nil
}

// strokeLinear strokes a straight draw. Only circle and rectangle
// apertures may pen a linear D01 (rectangle is deprecated but supported).
func (ip *Interpreter) strokeLinear(ap *Aperture, cur, end geom.Point, lines LineRange) (GraphicalObject, error) {
	switch ap.StandardShape {
	case TemplateCircle:
		diameter := ap.Params[0] * ip.xform.Matrix().ScaleMagnitude()
		if diameter < 1e-7 {
			diameter = 1e-7
		}
		shape := geom.StrokeLineRoundCap(cur, end, diameter)
		return ip.makeStrokeObject(shape, []geom.Point{cur, end}), nil

	case TemplateRectangle:
		w, h := ap.Params[0], ap.Params[1]
		hw, hh := w/2, h/2
		m := ip.xform.Matrix()
		corners := [4]geom.Point{
			m.Apply(geom.Point{X: -hw, Y: -hh}),
			m.Apply(geom.Point{X: hw, Y: -hh}),
			m.Apply(geom.Point{X: hw, Y: hh}),
			m.Apply(geom.Point{X: -hw, Y: hh}),
		}
		shape := geom.StrokeRectangleHexagon(cur, end, corners)
		return ip.makeStrokeObject(shape, []geom.Point{cur, end}), nil

	default:
		return GraphicalObject{}, newFault(KindInvalidAperture, lines, "linear plot state only supports circle or rectangle apertures")
	}
}

// strokeArc strokes a circular draw. Only circle apertures may pen an
// arc D01; a zero-extent arc degrades to a flash at the end point.
func (ip *Interpreter) strokeArc(ap *Aperture, cur, end geom.Point, pi, pj *float64, lines LineRange) ([]GraphicalObject, error) {
	if ap.StandardShape != TemplateCircle {
		return nil, newFault(KindInvalidArc, lines, "arc plot state only supports circle apertures")
	}
	params, err := ip.computeArc(end, pi, pj, lines)
	if err != nil {
		return nil, err
	}
	if params.ExtentAngleDeg == 0 {
		objAttrs := ip.liveAttrs.FilterType(AttributeObject)
		return ap.Flash(end, ip.xform, objAttrs, ip.newBlockID), nil
	}
	diameter := ap.Params[0] * ip.xform.Matrix().ScaleMagnitude()
	if diameter < 1e-7 {
		diameter = 1e-7
	}
	shape := geom.StrokeArcRoundCap(params.Center, params.Radius, params.StartAngleDeg, params.ExtentAngleDeg, diameter)
	stroke := geom.ArcPolyline(params.Center, params.Radius, params.StartAngleDeg, params.ExtentAngleDeg)
	return []GraphicalObject{ip.makeStrokeObject(shape, stroke)}, nil
}

func (ip *Interpreter) makeStrokeObject(shape geom.Area, strokeInfo []geom.Point) GraphicalObject {
	ap := ip.apertures[ip.currentApertureID]
	attrs := ap.Attributes.Merge(ip.liveAttrs.FilterType(AttributeObject))
	return GraphicalObject{
		Area:       shape,
		Polarity:   ip.xform.Polarity,
		Attributes: attrs,
		Metadata:   ObjectMetadata{StrokeInfo: strokeInfo},
	}
}

// --- Region --------------------------------------------------------------

func (ip *Interpreter) openRegion(lines LineRange) error {
	if ip.region != nil {
		return newFault(KindStateError, lines, "G36 while a region is already open")
	}
	if !ip.format.Set() {
		return newFault(KindInvalidCoordinate, lines, "G36 before FS set the format")
	}
	ip.region = newRegionBuilder(ip.currentPoint, ip.liveAttrs.FilterType(AttributeAperture))
	return nil
}

func (ip *Interpreter) closeRegion(lines LineRange) error {
	if ip.region == nil {
		return newFault(KindStateError, lines, "G37 without a matching open region")
	}
	obj := ip.region.flush(ip.xform.Polarity, ip.liveAttrs.FilterType(AttributeObject))
	ip.region = nil
	ip.emit(obj)
	return nil
}

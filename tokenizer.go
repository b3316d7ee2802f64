package gerber

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"
)

// TokenKind classifies a Tokenizer event.
type TokenKind int

const (
	// TokenPercent is a '%' delimiter, opening or closing an extended
	// command group.
	TokenPercent TokenKind = iota
	// TokenCommand is a '*'-terminated (or EOF-terminated) command word.
	TokenCommand
	// TokenEOF marks the end of the byte stream.
	TokenEOF
)

// Token is one tokenizer event.
type Token struct {
	Kind  TokenKind
	Text  string
	Lines LineRange
}

// Tokenizer is a streaming command splitter: a stateful
// byte-to-command lexer with Unicode-escape expansion, CR/LF line
// tracking, and an optional running MD5 digest over a canonical byte
// window. A byte-level state machine is required here: line-oriented or
// regex splitting cannot express the CR/LF-significant-inside-attribute-
// values rule, Unicode escapes, or the digest cutoff rule.
type Tokenizer struct {
	data        []byte
	pos         int
	line        int
	lastWasStar bool // true at start of file and after each '*'-terminated command
	inExtended  bool // between an opening '%' and its matching close

	digest        hash.Hash
	digestStopped bool
	// pending holds digest bytes whose commit decision depends on the next
	// command: an opening '%' must be excluded when that command turns out
	// to be the TF.MD5 stop point (the digest window ends at the start of
	// "%TF.MD5,...*%", opening delimiter included).
	pending []byte
}

// NewTokenizer builds a Tokenizer over the full input. withDigest enables
// the running MD5 accumulator over the canonical byte window.
func NewTokenizer(data []byte, withDigest bool) *Tokenizer {
	t := &Tokenizer{data: data, line: 1, lastWasStar: true}
	if withDigest {
		t.digest = md5.New()
	}
	return t
}

// Progress reports the fraction of input bytes consumed so far, for a
// coarse progress callback. Returns 1 for empty input.
func (t *Tokenizer) Progress() float64 {
	if len(t.data) == 0 {
		return 1
	}
	return float64(t.pos) / float64(len(t.data))
}

// Digest returns the 32-hex-character MD5 signature accumulated so far.
// Only meaningful once parsing has completed; returns "" if the digest was
// not requested.
func (t *Tokenizer) Digest() string {
	if t.digest == nil {
		return ""
	}
	return hex.EncodeToString(t.digest.Sum(nil))
}

func (t *Tokenizer) digestActive() bool { return t.digest != nil && !t.digestStopped }

func (t *Tokenizer) commitPending() {
	if !t.digestActive() {
		return
	}
	if len(t.pending) > 0 {
		t.digest.Write(t.pending)
		t.pending = t.pending[:0]
	}
}

// skipStructuralWhitespace consumes CR/LF (counting lines) and blanks
// between commands. Blanks are structurally insignificant but still part of
// the digest window (only CR/LF are excluded), so they are queued
// behind any pending delimiter byte.
func (t *Tokenizer) skipStructuralWhitespace() {
	for t.pos < len(t.data) {
		switch c := t.data[t.pos]; c {
		case '\r', '\n':
			if c == '\r' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '\n' {
				t.pos++
			}
			t.pos++
			t.line++
		case ' ', '\t':
			if t.digestActive() {
				t.pending = append(t.pending, c)
			}
			t.pos++
		default:
			return
		}
	}
}

// Next returns the next tokenizer event, or an error for a '%' that does
// not immediately follow a '*'.
func (t *Tokenizer) Next() (Token, error) {
	t.skipStructuralWhitespace()
	if t.pos >= len(t.data) {
		return Token{Kind: TokenEOF, Lines: LineRange{t.line, t.line}}, nil
	}

	startLine := t.line

	if t.data[t.pos] == '%' {
		if !t.lastWasStar {
			return Token{}, newFault(KindInvalidCommand, LineRange{t.line, t.line}, "'%%' does not immediately follow '*'")
		}
		t.pos++
		opening := !t.inExtended
		t.inExtended = opening
		if t.digestActive() {
			if opening {
				// Whitespace queued before this delimiter precedes the
				// potential stop point, so it is safe to commit; the '%'
				// itself awaits the next command's verdict.
				t.commitPending()
				t.pending = append(t.pending, '%')
			} else {
				// A closing '%' always precedes any later stop point.
				t.pending = append(t.pending, '%')
				t.commitPending()
			}
		}
		return Token{Kind: TokenPercent, Lines: LineRange{startLine, startLine}}, nil
	}

	var text strings.Builder
	var lineBuf strings.Builder
	var raw []byte
	isAttrCommand := false
	attrDetermined := false
	seenComma := false

	flushLine := func(retaining bool) {
		if retaining {
			text.WriteString(lineBuf.String())
		} else {
			text.WriteString(strings.TrimSpace(lineBuf.String()))
		}
		lineBuf.Reset()
	}

	for t.pos < len(t.data) {
		c := t.data[t.pos]

		if c == '*' {
			t.pos++
			t.lastWasStar = true
			flushLine(isAttrCommand && seenComma)
			raw = append(raw, '*')
			tok := Token{Kind: TokenCommand, Text: expandUnicodeEscapes(text.String()), Lines: LineRange{startLine, t.line}}
			t.commitOrStopDigest(tok.Text, raw)
			return tok, nil
		}

		if c == '%' {
			return Token{}, newFault(KindInvalidCommand, LineRange{startLine, t.line}, "'%%' does not immediately follow '*'")
		}

		if c == '\r' || c == '\n' {
			consumed := 1
			if c == '\r' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '\n' {
				consumed = 2
			}
			t.pos += consumed
			t.line++
			if !attrDetermined && lineBuf.Len() >= 2 {
				attrDetermined = true
				isAttrCommand = hasAttrPrefix(lineBuf.String())
			}
			retaining := isAttrCommand && seenComma
			flushLine(retaining)
			if retaining {
				text.WriteByte('\n')
			}
			continue
		}

		lineBuf.WriteByte(c)
		raw = append(raw, c)
		if c == ',' {
			seenComma = true
		}
		if !attrDetermined && lineBuf.Len() >= 2 {
			attrDetermined = true
			isAttrCommand = hasAttrPrefix(lineBuf.String())
		}
		t.pos++
	}

	// EOF reached with accumulated text: a file lacking a final '*' yields
	// the text as a terminal CommandWord, then EndOfFile.
	flushLine(isAttrCommand && seenComma)
	if text.Len() == 0 {
		return Token{Kind: TokenEOF, Lines: LineRange{t.line, t.line}}, nil
	}
	t.lastWasStar = false
	tok := Token{Kind: TokenCommand, Text: expandUnicodeEscapes(text.String()), Lines: LineRange{startLine, t.line}}
	t.commitOrStopDigest(tok.Text, raw)
	return tok, nil
}

func hasAttrPrefix(s string) bool {
	if len(s) < 2 {
		return false
	}
	prefix := s[:2]
	return prefix == "TF" || prefix == "TA" || prefix == "TO"
}

// commitOrStopDigest implements the MD5 cutoff rule: digest
// accumulation stops at the first of a '%TF.MD5,...*%' attribute (its
// opening '%' excluded), a 'G04 ... #@! TF.MD5 ...' sentinel comment, or
// the 'M' of a terminating 'M00/M01/M02'. Bytes queued before the stop
// point (a previous group's closing '%', inter-command blanks) are still
// part of the window and get committed.
func (t *Tokenizer) commitOrStopDigest(text string, raw []byte) {
	if !t.digestActive() {
		return
	}
	if strings.HasPrefix(text, "TF.MD5") {
		t.digestStopped = true
		t.pending = nil
		return
	}
	if isWordDigestStop(text) {
		t.commitPending()
		t.digestStopped = true
		return
	}
	t.commitPending()
	t.digest.Write(raw)
}

func isWordDigestStop(text string) bool {
	if strings.HasPrefix(text, "G04") && strings.Contains(text, "#@! TF.MD5") {
		return true
	}
	switch text {
	case "M00", "M01", "M02":
		return true
	}
	return false
}

// expandUnicodeEscapes expands \uXXXX and \UXXXXXXXX escapes within a
// command word. Malformed escapes are passed through verbatim,
// backslash included.
func expandUnicodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			width := 4
			if s[i+1] == 'U' {
				width = 8
			}
			start := i + 2
			if start+width <= len(s) && isHex(s[start:start+width]) {
				v, err := strconv.ParseUint(s[start:start+width], 16, 32)
				if err == nil {
					b.WriteRune(rune(v))
					i = start + width
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return len(s) > 0
}

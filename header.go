package gerber

import "strings"

// Header is the file prologue: the file-attribute dictionary, units, and
// coordinate format declared before the first operation that touches an
// aperture.
type Header struct {
	FileAttributes AttributeDictionary
	Units          Unit
	Format         CoordinateFormat
}

// ParseHeader executes commands until the first word command carrying a
// D-code (aperture select, plot, move, or flash), then returns the file
// attributes and units collected so far. A file that ends, or reaches
// M00/M02, before any D-code yields whatever prologue it did declare.
func (ip *Interpreter) ParseHeader() (*Header, error) {
	for {
		tok, err := ip.tok.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokenEOF:
			return ip.header(), nil
		case TokenPercent:
			if err := ip.consumeExtendedGroup(); err != nil {
				return nil, err
			}
		case TokenCommand:
			if wordCommandUsesAperture(tok.Text) {
				return ip.header(), nil
			}
			if err := ip.handleWordCommand(tok); err != nil {
				return nil, err
			}
			if ip.done {
				return ip.header(), nil
			}
		}
	}
}

func (ip *Interpreter) header() *Header {
	return &Header{
		FileAttributes: ip.fileAttrs,
		Units:          ip.unit,
		Format:         ip.format,
	}
}

func wordCommandUsesAperture(text string) bool {
	if strings.HasPrefix(text, "G04") {
		return false
	}
	for _, lex := range splitWordLexemes(text) {
		if lex[0] == 'D' {
			return true
		}
	}
	return false
}

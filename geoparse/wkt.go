// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geoparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urbis-db/urbis"
)

// wktToken is a WKT token, one of: tokKeyword (a bare word, upper-cased),
// tokNumber (float64), or one of the punctuation runes '(', ')', ','.
type wktToken struct {
	kind  wktKind
	text  string
	value float64
}

type wktKind int

const (
	tokEOF wktKind = iota
	tokKeyword
	tokNumber
	tokLParen
	tokRParen
	tokComma
)

// wktLexer tokenizes a WKT string. Like the teacher's buffer, it exposes
// readByte/unreadByte over a single in-memory slice (WKT inputs are short
// enough that streaming buys nothing) plus a readToken entry point that
// skips whitespace and classifies the next lexeme.
type wktLexer struct {
	src []byte
	pos int
}

func newWKTLexer(s string) *wktLexer {
	return &wktLexer{src: []byte(s)}
}

func (l *wktLexer) readByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *wktLexer) unreadByte() {
	if l.pos > 0 {
		l.pos--
	}
}

func wktIsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func wktIsDelim(c byte) bool {
	switch c {
	case '(', ')', ',':
		return true
	}
	return false
}

func wktIsNumStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (l *wktLexer) readToken() (wktToken, error) {
	c := l.readByte()
	for wktIsSpace(c) {
		c = l.readByte()
	}
	if c == 0 {
		return wktToken{kind: tokEOF}, nil
	}

	switch c {
	case '(':
		return wktToken{kind: tokLParen}, nil
	case ')':
		return wktToken{kind: tokRParen}, nil
	case ',':
		return wktToken{kind: tokComma}, nil
	}

	if wktIsNumStart(c) {
		l.unreadByte()
		return l.readNumber()
	}

	l.unreadByte()
	return l.readKeyword()
}

func (l *wktLexer) readNumber() (wktToken, error) {
	start := l.pos
	c := l.readByte()
	if c == '+' || c == '-' {
		c = l.readByte()
	}
	sawDigit := false
	for (c >= '0' && c <= '9') || c == '.' {
		if c >= '0' && c <= '9' {
			sawDigit = true
		}
		c = l.readByte()
	}
	if c == 'e' || c == 'E' {
		c = l.readByte()
		if c == '+' || c == '-' {
			c = l.readByte()
		}
		for c >= '0' && c <= '9' {
			c = l.readByte()
		}
	}
	if c != 0 {
		l.unreadByte()
	}
	text := string(l.src[start:l.pos])
	if !sawDigit {
		return wktToken{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("malformed number %q", text))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return wktToken{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, err)
	}
	return wktToken{kind: tokNumber, text: text, value: v}, nil
}

func (l *wktLexer) readKeyword() (wktToken, error) {
	start := l.pos
	c := l.readByte()
	for c != 0 && !wktIsSpace(c) && !wktIsDelim(c) {
		c = l.readByte()
	}
	if c != 0 {
		l.unreadByte()
	}
	text := l.src[start:l.pos]
	if len(text) == 0 {
		return wktToken{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("unexpected character at offset %d", l.pos))
	}
	return wktToken{kind: tokKeyword, text: strings.ToUpper(string(text))}, nil
}

// wktParser is a small recursive-descent parser driven by wktLexer, in the
// teacher's token-at-a-time style (read, inspect, dispatch) rather than a
// generated grammar.
type wktParser struct {
	lex *wktLexer
	tok wktToken
}

func newWKTParser(s string) (*wktParser, error) {
	p := &wktParser{lex: newWKTLexer(s)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *wktParser) advance() error {
	tok, err := p.lex.readToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *wktParser) expect(kind wktKind, what string) error {
	if p.tok.kind != kind {
		return urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("expected %s, got %q", what, p.tok.text))
	}
	return p.advance()
}

// ParseWKT parses a single WKT geometry: POINT, LINESTRING, or POLYGON.
// Keywords are case-insensitive; whitespace around punctuation is
// tolerated.
func ParseWKT(s string) (urbis.SpatialObject, error) {
	p, err := newWKTParser(s)
	if err != nil {
		return urbis.SpatialObject{}, err
	}
	if p.tok.kind != tokKeyword {
		return urbis.SpatialObject{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("expected geometry keyword, got %q", p.tok.text))
	}

	switch p.tok.text {
	case "POINT":
		if err := p.advance(); err != nil {
			return urbis.SpatialObject{}, err
		}
		pt, err := p.parsePoint()
		if err != nil {
			return urbis.SpatialObject{}, err
		}
		return urbis.NewPointObject(pt), nil

	case "LINESTRING":
		if err := p.advance(); err != nil {
			return urbis.SpatialObject{}, err
		}
		pts, err := p.parsePointList()
		if err != nil {
			return urbis.SpatialObject{}, err
		}
		return urbis.NewLineStringObject(pts), nil

	case "POLYGON":
		if err := p.advance(); err != nil {
			return urbis.SpatialObject{}, err
		}
		rings, err := p.parseRingList()
		if err != nil {
			return urbis.SpatialObject{}, err
		}
		if len(rings) == 0 {
			return urbis.SpatialObject{}, urbis.WrapError("wkt_parse", urbis.KindInvalid, fmt.Errorf("polygon with no rings"))
		}
		var holes [][]urbis.Point
		if len(rings) > 1 {
			holes = rings[1:]
		}
		return urbis.NewPolygonObject(rings[0], holes), nil

	default:
		return urbis.SpatialObject{}, urbis.WrapError("wkt_parse", urbis.KindUnsupported, fmt.Errorf("unsupported WKT geometry %q", p.tok.text))
	}
}

// parsePoint parses "(x y)".
func (p *wktParser) parsePoint() (urbis.Point, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return urbis.Point{}, err
	}
	pt, err := p.parseCoordinate()
	if err != nil {
		return urbis.Point{}, err
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return urbis.Point{}, err
	}
	return pt, nil
}

// parseCoordinate parses "x y" (a z or m coordinate, if present, is
// consumed and discarded: this package is 2-D only).
func (p *wktParser) parseCoordinate() (urbis.Point, error) {
	if p.tok.kind != tokNumber {
		return urbis.Point{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("expected coordinate, got %q", p.tok.text))
	}
	x := p.tok.value
	if err := p.advance(); err != nil {
		return urbis.Point{}, err
	}
	if p.tok.kind != tokNumber {
		return urbis.Point{}, urbis.WrapError("wkt_parse", urbis.KindSyntax, fmt.Errorf("expected coordinate, got %q", p.tok.text))
	}
	y := p.tok.value
	if err := p.advance(); err != nil {
		return urbis.Point{}, err
	}
	for p.tok.kind == tokNumber {
		if err := p.advance(); err != nil {
			return urbis.Point{}, err
		}
	}
	return urbis.Point{X: x, Y: y}, nil
}

// parsePointList parses "(x y, x y, ...)".
func (p *wktParser) parsePointList() ([]urbis.Point, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var pts []urbis.Point
	for {
		pt, err := p.parseCoordinate()
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return pts, nil
}

// parseRingList parses "((x y, ...), (x y, ...), ...)".
func (p *wktParser) parseRingList() ([][]urbis.Point, error) {
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var rings [][]urbis.Point
	for {
		ring, err := p.parsePointList()
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return rings, nil
}

// ExportWKT renders obj as a WKT string.
func ExportWKT(obj urbis.SpatialObject) (string, error) {
	var b strings.Builder
	switch obj.Type {
	case urbis.GeomPoint:
		// Centroid, not Point: NewPointObject guarantees Centroid == Point,
		// and Centroid is the only field DeserializePage restores, so this
		// also works for an object read back from a persisted index.
		b.WriteString("POINT (")
		writeCoord(&b, obj.Centroid)
		b.WriteString(")")
	case urbis.GeomLineString:
		b.WriteString("LINESTRING ")
		writePointList(&b, obj.LineString)
	case urbis.GeomPolygon:
		b.WriteString("POLYGON (")
		writePointList(&b, obj.Polygon.Exterior)
		for _, hole := range obj.Polygon.Holes {
			b.WriteString(", ")
			writePointList(&b, hole)
		}
		b.WriteString(")")
	default:
		return "", urbis.WrapError("wkt_export", urbis.KindUnsupported, fmt.Errorf("unsupported geometry type %v", obj.Type))
	}
	return b.String(), nil
}

func writeCoord(b *strings.Builder, p urbis.Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
	b.WriteString(" ")
	b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
}

func writePointList(b *strings.Builder, pts []urbis.Point) {
	b.WriteString("(")
	for i, p := range pts {
		if i > 0 {
			b.WriteString(", ")
		}
		writeCoord(b, p)
	}
	b.WriteString(")")
}

// Package parser detects the dialect of a syndication document (RSS, Atom or
// RDF) and normalizes it into a single Feed model.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	nsAtom     = "http://www.w3.org/2005/Atom"
	nsContent  = "http://purl.org/rss/1.0/modules/content/"
	nsNewsSync = "http://www.newssync.net/schemas/atom"
)

var (
	attrRel     = xml.Name{Local: "rel"}
	attrHref    = xml.Name{Local: "href"}
	attrVersion = xml.Name{Local: "version"}
)

var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrUnsupportedFormat = errors.New("unsupported feed format")
)

// MalformedDocumentError reports XML that is not well-formed. Err is the
// diagnostic of the first parse attempt.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// UnsupportedFormatError reports a well-formed document whose root element
// is not a known feed dialect.
type UnsupportedFormatError struct {
	Root string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported feed format: root element <%s>", e.Root)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

type extractor func(root *Node, now time.Time) *Feed

var extractors = map[Format]extractor{
	FormatRSS:  extractRSS,
	FormatAtom: extractAtom,
	FormatRDF:  extractRDF,
}

// Parser turns raw feed documents into Feeds. The zero value is not usable;
// create one with NewParser. A Parser holds no per-document state and may be
// shared between goroutines.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// WithClock returns a copy of p that uses now for date fallbacks.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Run parses raw, detects its dialect and extracts the feed.
func (p *Parser) Run(raw string) (*Feed, error) {
	feed, _, err := p.RunWithFormat(raw)
	return feed, err
}

// RunWithFormat is Run that also reports the detected dialect.
func (p *Parser) RunWithFormat(raw string) (*Feed, Format, error) {
	root, err := parseWithRepair(raw)
	if err != nil {
		return nil, 0, err
	}

	format, err := DetectFormat(root)
	if err != nil {
		return nil, 0, err
	}

	return extractors[format](root, p.now()), format, nil
}

// DetectFormat maps the root element name to a dialect. Any RSS version is
// handled by the same extractor.
func DetectFormat(root *Node) (Format, error) {
	switch strings.ToLower(root.Name.Local) {
	case "rss":
		return FormatRSS, nil
	case "feed":
		return FormatAtom, nil
	case "rdf":
		return FormatRDF, nil
	default:
		return 0, &UnsupportedFormatError{Root: root.Name.Local}
	}
}

// RSSVersion returns the version attribute of an <rss> root, if any.
func RSSVersion(root *Node) string {
	return attrOf(root, attrVersion)
}

// parseWithRepair parses raw. An unescaped &nbsp; is the one malformation
// that gets repaired; everything else fails with the original diagnostic.
func parseWithRepair(raw string) (*Node, error) {
	root, err := parseDocument(raw)
	if err == nil {
		return root, nil
	}

	if !strings.Contains(err.Error(), "nbsp") {
		return nil, &MalformedDocumentError{Err: err}
	}

	root, retryErr := parseDocument(strings.ReplaceAll(raw, "&nbsp;", " "))
	if retryErr != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	return root, nil
}

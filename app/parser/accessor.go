package parser

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// Extractors read nodes only through these helpers. Each one is total: a
// missing node, a missing attribute or a malformed value yields the zero
// result instead of an error.

// strictLayouts are the only formats dateOf accepts. Loose RFC822 handling
// lives in rfcdate.
var strictLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func textOf(n *Node) string {
	return n.Text()
}

func attrOf(n *Node, name xml.Name) string {
	v, _ := n.Attribute(name)
	return v
}

func dateOf(n *Node) *time.Time {
	if n == nil {
		return nil
	}
	return parseStrictDate(n.Text())
}

func attrDateOf(n *Node, name xml.Name) *time.Time {
	v, ok := n.Attribute(name)
	if !ok {
		return nil
	}
	return parseStrictDate(v)
}

func intOf(n *Node) *int {
	if n == nil {
		return nil
	}
	return parseInt(n.Text())
}

func attrIntOf(n *Node, name xml.Name) *int {
	v, ok := n.Attribute(name)
	if !ok {
		return nil
	}
	return parseInt(v)
}

func boolOf(n *Node) *bool {
	if n == nil {
		return nil
	}
	return parseBool(n.Text())
}

func attrBoolOf(n *Node, name xml.Name) *bool {
	v, ok := n.Attribute(name)
	if !ok {
		return nil
	}
	return parseBool(v)
}

func parseStrictDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func parseInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseBool(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return nil
	}
	return &v
}

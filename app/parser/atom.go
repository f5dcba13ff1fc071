package parser

import (
	"encoding/xml"
	"time"
)

var (
	attrTerm         = xml.Name{Local: "term"}
	attrLabel        = xml.Name{Local: "label"}
	attrParentFeedID = xml.Name{Space: nsNewsSync, Local: "parentfeed-id"}
)

// atomLinks holds the <link> elements of a feed or entry sorted by rel.
type atomLinks struct {
	hub       *Node
	self      *Node
	alternate *Node
	replies   *Node
	bare      *Node // first link without a rel attribute
	first     *Node
}

func classifyLinks(links []*Node) atomLinks {
	var l atomLinks
	if len(links) > 0 {
		l.first = links[0]
	}
	for _, link := range links {
		rel, ok := link.Attribute(attrRel)
		switch {
		case !ok:
			if l.bare == nil {
				l.bare = link
			}
		case rel == "hub" && l.hub == nil:
			l.hub = link
		case rel == "self" && l.self == nil:
			l.self = link
		case rel == "alternate" && l.alternate == nil:
			l.alternate = link
		case rel == "replies" && l.replies == nil:
			l.replies = link
		}
	}
	return l
}

// webURI prefers the alternate link and falls back to the bare one.
func (l atomLinks) webURI() string {
	return coalesce(attrOf(l.alternate, attrHref), attrOf(l.bare, attrHref))
}

// extractAtom reads a <feed> document. Every lookup is qualified with the
// namespace the root element declares.
func extractAtom(root *Node, now time.Time) *Feed {
	ns := root.DefaultNamespace()
	if ns == "" {
		ns = root.Name.Space
	}
	name := func(local string) xml.Name {
		return xml.Name{Space: ns, Local: local}
	}

	links := classifyLinks(root.Elements(name("link")))

	feed := &Feed{
		Name:         textOf(root.Element(name("title"))),
		CanonicalURI: attrOf(links.self, attrHref),
		WebURI:       links.webURI(),
		HubURI:       attrOf(links.hub, attrHref),
		Categories:   []Category{},
		Items:        []Item{},
	}

	// Feed-level categories carry term and label as child elements.
	for _, c := range root.Elements(name("category")) {
		feed.Categories = append(feed.Categories, Category{
			Term:  textOf(c.Element(name("term"))),
			Label: textOf(c.Element(name("label"))),
		})
	}

	for _, e := range root.Elements(name("entry")) {
		feed.Items = append(feed.Items, atomEntry(e, name, now))
	}

	return feed
}

func atomEntry(e *Node, name func(string) xml.Name, now time.Time) Item {
	links := classifyLinks(e.Elements(name("link")))
	webURI := coalesce(links.webURI(), attrOf(links.first, attrHref))

	var author string
	if a := e.Element(name("author")); a != nil {
		author = textOf(a.Element(name("name")))
	}

	published := dateOf(e.Element(name("published")))
	if published == nil {
		published = dateOf(e.Element(name("updated")))
	}
	if published == nil {
		published = &now
	}

	// Entry categories carry term and label as attributes.
	categories := []Category{}
	for _, c := range e.Elements(name("category")) {
		categories = append(categories, Category{
			Term:  attrOf(c, attrTerm),
			Label: attrOf(c, attrLabel),
		})
	}

	return Item{
		ServerID:     coalesce(textOf(e.Element(name("id"))), webURI),
		Title:        textOf(e.Element(name("title"))),
		WebURI:       webURI,
		Author:       author,
		CommentsURI:  attrOf(links.replies, attrHref),
		Published:    published,
		Content:      coalesce(textOf(e.Element(name("content"))), textOf(e.Element(name("summary")))),
		Categories:   categories,
		ParentFeedID: attrIntOf(e, attrParentFeedID),
	}
}

package parser

import (
	"encoding/xml"
	"time"

	"github.com/lysyi3m/syndic/app/rfcdate"
)

var attrIsPermaLink = xml.Name{Local: "isPermaLink"}

// extractRSS reads an <rss> document. Only the first channel is used; a
// document without one yields an empty feed.
func extractRSS(root *Node, now time.Time) *Feed {
	channel := root.Element(xml.Name{Local: "channel"})

	atomLinks := channel.Elements(xml.Name{Space: nsAtom, Local: "link"})

	feed := &Feed{
		Name:         textOf(channel.Element(xml.Name{Local: "title"})),
		CanonicalURI: attrOf(linkWithRel(atomLinks, "self"), attrHref),
		WebURI:       textOf(channel.Element(xml.Name{Local: "link"})),
		HubURI:       attrOf(linkWithRel(atomLinks, "hub"), attrHref),
		Categories:   textCategories(channel, ""),
		Items:        []Item{},
		Version:      RSSVersion(root),
	}

	for _, i := range channel.Elements(xml.Name{Local: "item"}) {
		feed.Items = append(feed.Items, rssItem(i, now))
	}

	return feed
}

func rssItem(i *Node, now time.Time) Item {
	guid := i.Element(xml.Name{Local: "guid"})
	link := textOf(i.Element(xml.Name{Local: "link"}))

	webURI := link
	if webURI == "" {
		if permaLink := attrBoolOf(guid, attrIsPermaLink); permaLink != nil && *permaLink {
			webURI = textOf(guid)
		}
	}

	published := now
	if pubDate := i.Element(xml.Name{Local: "pubDate"}); pubDate != nil {
		published = rfcdate.ParseOr(textOf(pubDate), now)
	}

	return Item{
		ServerID:    coalesce(textOf(guid), link),
		Title:       textOf(i.Element(xml.Name{Local: "title"})),
		WebURI:      webURI,
		Author:      textOf(i.Element(xml.Name{Local: "author"})),
		CommentsURI: textOf(i.Element(xml.Name{Local: "comments"})),
		Published:   &published,
		Content: coalesce(
			textOf(i.Element(xml.Name{Space: nsContent, Local: "encoded"})),
			textOf(i.Element(xml.Name{Local: "description"})),
		),
		Categories: textCategories(i, ""),
	}
}

// textCategories reads <category> children whose text is the term.
func textCategories(n *Node, ns string) []Category {
	categories := []Category{}
	for _, c := range n.Elements(xml.Name{Space: ns, Local: "category"}) {
		categories = append(categories, Category{Term: textOf(c)})
	}
	return categories
}

// linkWithRel returns the first link whose rel attribute equals rel exactly.
func linkWithRel(links []*Node, rel string) *Node {
	for _, l := range links {
		if v, ok := l.Attribute(attrRel); ok && v == rel {
			return l
		}
	}
	return nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

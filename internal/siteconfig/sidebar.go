package siteconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SidebarNode is either a Leaf or a Group.
type SidebarNode interface {
	sidebarNode()
}

// Leaf links to a single page. A leaf without text renders with the title of
// the page it links to.
type Leaf struct {
	Text string
	Link string
}

// Group is a named collection of nodes. Relative child links and prefixes
// are resolved against Prefix.
type Group struct {
	Text        string
	Prefix      string
	Link        string
	Collapsible bool
	Children    Sidebar
}

func (Leaf) sidebarNode()  {}
func (Group) sidebarNode() {}

// Sidebar is an ordered sidebar tree.
type Sidebar []SidebarNode

// rawNode is the mapping form shared by the YAML and JSON decoders.
type rawNode struct {
	Text        string  `yaml:"text" json:"text"`
	Link        string  `yaml:"link" json:"link"`
	Prefix      string  `yaml:"prefix" json:"prefix"`
	Collapsible bool    `yaml:"collapsible" json:"collapsible"`
	Children    Sidebar `yaml:"children" json:"children"`
}

func (r rawNode) node() SidebarNode {
	if r.Children != nil || r.Prefix != "" {
		return Group{Text: r.Text, Prefix: r.Prefix, Link: r.Link, Collapsible: r.Collapsible, Children: r.Children}
	}
	return Leaf{Text: r.Text, Link: r.Link}
}

// UnmarshalYAML accepts bare strings (leaf links) and mappings.
func (s *Sidebar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: sidebar must be a sequence", value.Line)
	}
	out := make(Sidebar, 0, len(value.Content))
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, Leaf{Link: item.Value})
		case yaml.MappingNode:
			var raw rawNode
			if err := item.Decode(&raw); err != nil {
				return err
			}
			out = append(out, raw.node())
		default:
			return fmt.Errorf("line %d: sidebar entry must be a string or a mapping", item.Line)
		}
	}
	*s = out
	return nil
}

// UnmarshalJSON accepts bare strings (leaf links) and objects.
func (s *Sidebar) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("sidebar must be an array: %w", err)
	}
	out := make(Sidebar, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var link string
			if err := json.Unmarshal(item, &link); err != nil {
				return err
			}
			out = append(out, Leaf{Link: link})
			continue
		}
		var raw rawNode
		if err := json.Unmarshal(item, &raw); err != nil {
			return err
		}
		out = append(out, raw.node())
	}
	*s = out
	return nil
}

// MarshalJSON emits the theme's shapes: bare strings for text-less leaves,
// objects otherwise.
func (s Sidebar) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(s))
	for _, n := range s {
		switch v := n.(type) {
		case Leaf:
			if v.Text == "" {
				items = append(items, v.Link)
			} else {
				items = append(items, struct {
					Text string `json:"text"`
					Link string `json:"link"`
				}{v.Text, v.Link})
			}
		case Group:
			children := v.Children
			if children == nil {
				children = Sidebar{}
			}
			items = append(items, struct {
				Text        string  `json:"text"`
				Prefix      string  `json:"prefix,omitempty"`
				Link        string  `json:"link,omitempty"`
				Collapsible bool    `json:"collapsible,omitempty"`
				Children    Sidebar `json:"children"`
			}{v.Text, v.Prefix, v.Link, v.Collapsible, children})
		}
	}
	return json.Marshal(items)
}

// MarshalYAML mirrors MarshalJSON so configs round-trip through docsite init.
func (s Sidebar) MarshalYAML() (any, error) {
	items := make([]any, 0, len(s))
	for _, n := range s {
		switch v := n.(type) {
		case Leaf:
			if v.Text == "" {
				items = append(items, v.Link)
			} else {
				items = append(items, map[string]string{"text": v.Text, "link": v.Link})
			}
		case Group:
			m := map[string]any{"text": v.Text, "children": v.Children}
			if v.Prefix != "" {
				m["prefix"] = v.Prefix
			}
			if v.Link != "" {
				m["link"] = v.Link
			}
			if v.Collapsible {
				m["collapsible"] = true
			}
			items = append(items, m)
		}
	}
	return items, nil
}

// SidebarLink is one link found in a sidebar tree.
type SidebarLink struct {
	Text     string
	Link     string // as authored
	Prefix   string // effective prefix the link was resolved against
	Path     string // route path; empty for external links
	External bool
}

// Links walks the tree depth-first and returns every leaf link and group
// link, resolved against the effective prefixes.
func (s Sidebar) Links() []SidebarLink {
	var out []SidebarLink
	walkSidebar(s, "", &out)
	return out
}

func walkSidebar(nodes Sidebar, prefix string, out *[]SidebarLink) {
	for _, n := range nodes {
		switch v := n.(type) {
		case Leaf:
			*out = append(*out, newSidebarLink(v.Text, v.Link, prefix))
		case Group:
			groupPrefix := joinPrefix(prefix, v.Prefix)
			if v.Link != "" {
				*out = append(*out, newSidebarLink(v.Text, v.Link, groupPrefix))
			}
			walkSidebar(v.Children, groupPrefix, out)
		}
	}
}

func newSidebarLink(text, link, prefix string) SidebarLink {
	path, external := ResolveLink(prefix, link)
	return SidebarLink{Text: text, Link: link, Prefix: prefix, Path: path, External: external}
}

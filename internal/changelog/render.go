package changelog

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ReleaseResult is one release of the parsed structure.
type ReleaseResult struct {
	Version     string
	ChangeTypes []ChangeTypeResult
}

// ChangeTypeResult is one change type of a release.
type ChangeTypeResult struct {
	Name    string
	Entries []EntryResult
}

// EntryResult is one entry of a change type.
type EntryResult struct {
	PR          int
	Description string
}

// Result returns the parsed structure in document order: releases, their
// change types and their entries, each in first-appearance order.
func (c *Changelog) Result() []ReleaseResult {
	var result []ReleaseResult
	for _, r := range c.Releases {
		release := ReleaseResult{Version: r.Version}
		for _, cat := range r.Categories {
			ct := ChangeTypeResult{Name: cat.Name}
			for _, e := range cat.Entries {
				ct.Entries = append(ct.Entries, EntryResult{PR: e.PRNumber, Description: e.Description})
			}
			release.ChangeTypes = append(release.ChangeTypes, ct)
		}
		result = append(result, release)
	}
	return result
}

// MarshalYAML renders the result as nested mappings that keep document order.
func (c *Changelog) MarshalYAML() (any, error) {
	root := mappingNode()
	for _, r := range c.Result() {
		categories := mappingNode()
		for _, ct := range r.ChangeTypes {
			entries := mappingNode()
			for _, e := range ct.Entries {
				entry := mappingNode()
				appendPair(entry, stringNode("description"), stringNode(e.Description))
				appendPair(entries, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.PR)}, entry)
			}
			appendPair(categories, stringNode(ct.Name), entries)
		}
		appendPair(root, stringNode(r.Version), categories)
	}
	return root, nil
}

// RenderYAML writes the parsed structure as YAML.
func RenderYAML(c *Changelog, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding changelog YAML: %w", err)
	}
	return enc.Close()
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func appendPair(mapping, key, value *yaml.Node) {
	mapping.Content = append(mapping.Content, key, value)
}

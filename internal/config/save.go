package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/scopes/internal/log"
	"github.com/zjrosen/scopes/internal/theme"
)

// SaveGrammarDirs replaces grammar_dirs in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveGrammarDirs(configPath string, dirs []string) error {
	var node yaml.Node
	if err := node.Encode(dirs); err != nil {
		return fmt.Errorf("encoding grammar_dirs: %w", err)
	}
	if len(dirs) == 0 {
		node.Style = yaml.FlowStyle
	}
	return saveKey(configPath, []string{"grammar_dirs"}, &node)
}

// AddGrammarDir appends dir to the existing grammar directories and saves.
// A dir already present is not added twice.
func AddGrammarDir(configPath, dir string, existing []string) error {
	if slices.Contains(existing, dir) {
		return nil
	}
	dirs := append(slices.Clone(existing), dir)
	return SaveGrammarDirs(configPath, dirs)
}

// SaveThemeRules replaces theme.rules in the config file.
func SaveThemeRules(configPath string, rules []theme.Rule) error {
	var node yaml.Node
	if err := node.Encode(rules); err != nil {
		return fmt.Errorf("encoding theme rules: %w", err)
	}
	return saveKey(configPath, []string{"theme", "rules"}, &node)
}

// saveKey sets the value at the mapping path keys, creating intermediate
// mappings as needed, and writes the file atomically.
func saveKey(configPath string, keys []string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	m := doc.Content[0]
	for i, key := range keys {
		last := i == len(keys)-1
		child := lookup(m, key)
		switch {
		case last && child != nil:
			*child = *value
		case last:
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
		case child == nil || child.Kind != yaml.MappingNode:
			next := &yaml.Node{Kind: yaml.MappingNode}
			if child != nil {
				*child = *next
				next = child
			} else {
				m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, next)
			}
			m = next
		default:
			m = child
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved config", "path", configPath, "key", keys)
	return nil
}

// lookup returns the value node for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".scopes.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

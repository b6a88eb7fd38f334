// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	// KeywordsKey names the list that is crossed with the state list.
	KeywordsKey = "damage_keywords"

	// legacyKeywordsKey is accepted when KeywordsKey is absent.
	legacyKeywordsKey = "peril_keywords"
)

// DefaultKeywords is the stock peril list used to seed a new keyword file.
var DefaultKeywords = []string{
	"explosion damage", "lightning damage", "flood damage", "freezing damage",
	"tornado damage", "storm damage", "hail damage", "pipe burst damage",
	"structure damage", "water damage", "smoke damage",
}

// KeywordFile is a parsed keyword source.
type KeywordFile struct {
	// Keywords are crossed with the state list.
	Keywords []string

	// Extra holds queries from any other list in the file. They are issued
	// verbatim after the cross-product.
	Extra []string
}

// section is one member of a keyword document, in file order.
type section struct {
	name   string
	isList bool
	list   []string
	sub    []section
}

// LoadKeywords reads the keyword list from path.
func LoadKeywords(path string) ([]string, error) {
	kf, err := LoadKeywordFile(path)
	if err != nil {
		return nil, err
	}
	return kf.Keywords, nil
}

// LoadKeywordFile reads and parses a keyword source. Files ending in .yaml
// or .yml are parsed as YAML, everything else as JSON. The document is
// either a list of keywords or an object holding a damage_keywords list
// plus optional extra lists. Any failure is a *ConfigLoadError.
func LoadKeywordFile(path string) (*KeywordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: err}
	}

	var (
		top      []string
		sections []section
		isList   bool
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		top, sections, isList, err = parseYAML(data)
	default:
		top, sections, isList, err = parseJSON(data)
	}
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: err}
	}

	if isList {
		return &KeywordFile{Keywords: clean(top)}, nil
	}

	kf, err := fromSections(sections)
	if err != nil {
		return nil, &ConfigLoadError{Path: path, Err: err}
	}
	return kf, nil
}

// fromSections picks the keyword list and gathers the extra queries.
func fromSections(sections []section) (*KeywordFile, error) {
	key := ""
	for _, name := range []string{KeywordsKey, legacyKeywordsKey} {
		if s, ok := find(sections, name); ok {
			if !s.isList {
				return nil, fmt.Errorf("%s is not a list of strings", name)
			}
			key = name
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("no %s list", KeywordsKey)
	}

	kf := &KeywordFile{}
	for _, s := range sections {
		switch {
		case s.name == key:
			kf.Keywords = clean(s.list)
		case s.isList:
			kf.Extra = append(kf.Extra, clean(s.list)...)
		default:
			for _, sub := range s.sub {
				if sub.isList {
					kf.Extra = append(kf.Extra, clean(sub.list)...)
				}
			}
		}
	}
	return kf, nil
}

func find(sections []section, name string) (section, bool) {
	for _, s := range sections {
		if s.name == name {
			return s, true
		}
	}
	return section{}, false
}

// clean trims entries and drops blanks, preserving order.
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseJSON decodes a JSON keyword document. Object members are read with
// the token stream so file order is kept.
func parseJSON(data []byte) ([]string, []section, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, false, errors.New("empty document")
	}
	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, nil, false, fmt.Errorf("parsing keyword list: %w", err)
		}
		return list, nil, true, nil
	case '{':
		sections, err := jsonSections(trimmed)
		if err != nil {
			return nil, nil, false, err
		}
		return nil, sections, false, nil
	default:
		return nil, nil, false, errors.New("document is neither a list nor an object")
	}
}

func jsonSections(obj []byte) ([]section, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing keyword object: %w", err)
	}

	var out []section
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing keyword object: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing keyword object: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", name, err)
		}

		s := section{name: name}
		switch raw[0] {
		case '[':
			if err := json.Unmarshal(raw, &s.list); err == nil {
				s.isList = true
			}
		case '{':
			sub, err := jsonSections(raw)
			if err != nil {
				return nil, err
			}
			s.sub = sub
		}
		out = append(out, s)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing keyword object: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("parsing keyword object: trailing data after object")
	}
	return out, nil
}

// parseYAML decodes a YAML keyword document with the same shapes as JSON.
func parseYAML(data []byte) ([]string, []section, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, false, fmt.Errorf("parsing keyword YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, false, errors.New("empty document")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := root.Decode(&list); err != nil {
			return nil, nil, false, fmt.Errorf("parsing keyword list: %w", err)
		}
		return list, nil, true, nil
	case yaml.MappingNode:
		return nil, yamlSections(root), false, nil
	default:
		return nil, nil, false, errors.New("document is neither a list nor a mapping")
	}
}

func yamlSections(m *yaml.Node) []section {
	var out []section
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		s := section{name: key.Value}
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&s.list); err == nil {
				s.isList = true
			}
		case yaml.MappingNode:
			s.sub = yamlSections(val)
		}
		out = append(out, s)
	}
	return out
}

// WriteDefaultKeywords creates path holding DefaultKeywords under
// damage_keywords. An existing file is left alone and the returned error
// wraps fs.ErrExist.
func WriteDefaultKeywords(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(map[string][]string{KeywordsKey: DefaultKeywords}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default keywords: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating keyword file: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("writing keyword file: %w", err)
	}
	return f.Close()
}

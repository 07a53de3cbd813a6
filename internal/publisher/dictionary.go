package publisher

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed publishers.yaml
var embeddedDictionary []byte

// Entry maps a lowercase name or link fragment to a publisher domain.
type Entry struct {
	Match  string `yaml:"match"`
	Domain string `yaml:"domain"`
}

// Dictionary is an ordered publisher list. Order is precedence: Lookup
// returns the first entry whose fragment occurs in the given text.
type Dictionary []Entry

// DefaultDictionary returns the dictionary shipped with the binary. The
// embedded file is fixed at build time, so a parse failure is a build
// defect and panics.
func DefaultDictionary() Dictionary {
	dict, err := ParseDictionary(embeddedDictionary)
	if err != nil {
		panic(fmt.Sprintf("embedded publisher dictionary: %v", err))
	}
	return dict
}

// LoadDictionaryFile reads an override dictionary from disk.
func LoadDictionaryFile(path string) (Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return ParseDictionary(raw)
}

// ParseDictionary decodes and normalizes dictionary YAML.
func ParseDictionary(raw []byte) (Dictionary, error) {
	var entries []Entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary is empty")
	}

	for i := range entries {
		entries[i].Match = strings.ToLower(strings.TrimSpace(entries[i].Match))
		entries[i].Domain = strings.ToLower(strings.TrimSpace(entries[i].Domain))
		if entries[i].Match == "" || entries[i].Domain == "" {
			return nil, fmt.Errorf("dictionary entry %d is incomplete", i)
		}
	}

	return entries, nil
}

// Lookup returns the domain of the first entry whose fragment occurs in
// text. Matching is case-insensitive.
func (d Dictionary) Lookup(text string) (string, bool) {
	lowered := strings.ToLower(text)
	if lowered == "" {
		return "", false
	}
	for _, entry := range d {
		if strings.Contains(lowered, entry.Match) {
			return entry.Domain, true
		}
	}
	return "", false
}

package publisher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultDictionaryLoads(t *testing.T) {
	t.Parallel()

	dict := DefaultDictionary()
	if len(dict) < 100 {
		t.Fatalf("expected at least 100 entries, got %d", len(dict))
	}
	for i, entry := range dict {
		if entry.Match == "" || entry.Domain == "" {
			t.Fatalf("entry %d is incomplete: %+v", i, entry)
		}
	}
}

func TestParseDictionaryRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseDictionary([]byte("{{{")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseDictionaryRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	if _, err := ParseDictionary([]byte("- {match: something}")); err == nil {
		t.Fatal("expected incomplete entry error")
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	t.Parallel()

	dict := Dictionary{
		{Match: "herald", Domain: "first.example"},
		{Match: "herald tribune", Domain: "second.example"},
	}

	got, ok := dict.Lookup("International Herald Tribune")
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "first.example" {
		t.Fatalf("expected first entry to win, got %s", got)
	}
}

func TestLookupMiss(t *testing.T) {
	t.Parallel()

	dict := Dictionary{{Match: "herald", Domain: "first.example"}}
	if _, ok := dict.Lookup("completely unrelated"); ok {
		t.Fatal("expected no match")
	}
}

func TestLoadDictionaryFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dict.yaml")
	content := "- {match: local gazette, domain: localgazette.example}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dict, err := LoadDictionaryFile(path)
	if err != nil {
		t.Fatalf("LoadDictionaryFile: %v", err)
	}
	got, ok := dict.Lookup("The Local Gazette Daily")
	if !ok || got != "localgazette.example" {
		t.Fatalf("unexpected lookup result: %s, %v", got, ok)
	}
}

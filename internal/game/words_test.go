package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" CAT ", "cat"},
		{"Ice Cream", "ice cream"},
		{"\tDog\n", "dog"},
		{"already fine", "already fine"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	if len(v.Words) == 0 {
		t.Fatal("no built-in words")
	}
	if len(v.Decoys) == 0 {
		t.Fatal("no built-in decoys")
	}
	for _, w := range v.Words {
		if w != Normalize(w) {
			t.Errorf("built-in word %q is not normalized", w)
		}
	}
}

func TestVocabularyPick(t *testing.T) {
	v := &Vocabulary{Words: []string{"cat", "dog", "tree"}}
	members := map[string]bool{"cat": true, "dog": true, "tree": true}
	for i := 0; i < 50; i++ {
		if w := v.Pick(); !members[w] {
			t.Fatalf("picked %q, not in the vocabulary", w)
		}
	}
}

func TestVocabularyDecoy(t *testing.T) {
	v := &Vocabulary{Decoys: []string{"apple", "moon", "chair"}}
	for i := 0; i < 50; i++ {
		if d := v.Decoy("apple"); d == "apple" {
			t.Fatal("decoy matched the excluded word")
		}
	}
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
		return path
	}

	t.Run("loads and normalizes word lists", func(t *testing.T) {
		path := write("words.yaml", "words:\n  - Cat\n  - \"ICE CREAM\"\ndecoys:\n  - Moon\n")
		v, err := LoadVocabulary(path)
		if err != nil {
			t.Fatalf("LoadVocabulary failed: %v", err)
		}
		if len(v.Words) != 2 || v.Words[0] != "cat" || v.Words[1] != "ice cream" {
			t.Errorf("unexpected words: %v", v.Words)
		}
		if len(v.Decoys) != 1 || v.Decoys[0] != "moon" {
			t.Errorf("unexpected decoys: %v", v.Decoys)
		}
	})

	t.Run("missing decoys fall back to the built-ins", func(t *testing.T) {
		path := write("no_decoys.yaml", "words:\n  - cat\n")
		v, err := LoadVocabulary(path)
		if err != nil {
			t.Fatalf("LoadVocabulary failed: %v", err)
		}
		if len(v.Decoys) != len(DefaultVocabulary().Decoys) {
			t.Errorf("expected built-in decoys, got %v", v.Decoys)
		}
	})

	t.Run("empty word list is rejected", func(t *testing.T) {
		path := write("empty.yaml", "decoys:\n  - moon\n")
		if _, err := LoadVocabulary(path); err == nil {
			t.Error("expected an error for a file without words")
		}
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		path := write("broken.yaml", "words: [unclosed\n")
		if _, err := LoadVocabulary(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("missing file is reported", func(t *testing.T) {
		if _, err := LoadVocabulary(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

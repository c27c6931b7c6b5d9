package game

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normalize lowercases and trims a word or guess. Guess comparison is exact
// string equality after both sides pass through here.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Vocabulary holds the words rounds draw from and the decoy words simulated
// agents guess with when they miss.
type Vocabulary struct {
	Words  []string `yaml:"words"`
	Decoys []string `yaml:"decoys"`
}

// DefaultVocabulary returns the built-in word lists
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Words: []string{
			"cat", "dog", "house", "tree", "car", "bicycle", "airplane",
			"guitar", "piano", "elephant", "giraffe", "penguin", "octopus",
			"butterfly", "mountain", "beach", "castle", "bridge", "rocket",
			"robot", "pizza", "hamburger", "ice cream", "cupcake", "banana",
			"umbrella", "glasses", "backpack", "camera", "telescope",
			"lighthouse", "windmill", "snowman", "campfire", "rainbow",
			"tornado", "volcano", "island", "submarine", "helicopter",
			"dragon", "unicorn", "mermaid", "wizard", "pirate", "astronaut",
			"dinosaur", "skeleton", "scarecrow", "jellyfish",
		},
		Decoys: []string{
			"apple", "chair", "cloud", "fish", "flower", "hat", "key",
			"ladder", "moon", "pencil", "shoe", "spider", "star", "sun",
			"train", "whale", "window", "balloon", "candle", "drum",
		},
	}
}

// LoadVocabulary reads word lists from a YAML file. Missing decoys fall back
// to the built-in set so agent simulation always has something to miss with.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}

	v := &Vocabulary{}
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	if len(v.Words) == 0 {
		return nil, fmt.Errorf("vocabulary file %s contains no words", path)
	}

	for i, w := range v.Words {
		v.Words[i] = Normalize(w)
	}
	for i, d := range v.Decoys {
		v.Decoys[i] = Normalize(d)
	}
	if len(v.Decoys) == 0 {
		v.Decoys = DefaultVocabulary().Decoys
	}
	return v, nil
}

// Pick returns a random target word
func (v *Vocabulary) Pick() string {
	return v.Words[rand.Intn(len(v.Words))]
}

// Decoy returns a random decoy word distinct from the excluded one, so a
// deliberately wrong guess never turns out right by accident.
func (v *Vocabulary) Decoy(exclude string) string {
	for i := 0; i < 10; i++ {
		d := v.Decoys[rand.Intn(len(v.Decoys))]
		if d != exclude {
			return d
		}
	}
	return v.Decoys[rand.Intn(len(v.Decoys))]
}

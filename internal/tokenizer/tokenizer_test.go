package tokenizer

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/catalogsearch/internal/domain"
)

func keys(s Set) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Red SILK", "red silk"},
		{"punctuation becomes space", "hand-woven,silk!", "hand woven silk"},
		{"collapses and trims", "  a \t\n b  ", "a b"},
		{"keeps digits", "Size 42", "size 42"},
		{"keeps non-latin letters", "Çanta Kadın", "çanta kadın"},
		{"empty", "", ""},
		{"only symbols", "--- ***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", "Red Silk Saree", "hand-woven / pure SILK!!", "ÄÖÜ straße", "a b", "x  y",
		"İstanbul", "12-34_56", "emoji 🎉 dress", "ǅemal", "\tTabs\nand\rbreaks",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokenize_WordsAndTrigrams(t *testing.T) {
	got := Tokenize("Silk Sari", 3)
	want := []string{"ari", "ilk", "ksa", "lks", "sar", "sari", "sil", "silk"}
	assert.Equal(t, want, keys(got))
}

func TestTokenize_ShortCompactForm(t *testing.T) {
	got := Tokenize("a b", 3)
	assert.Equal(t, []string{"a", "b"}, keys(got))

	got = Tokenize("ab", 3)
	assert.Equal(t, []string{"ab"}, keys(got))
}

func TestTokenize_ExactWidth(t *testing.T) {
	assert.Equal(t, []string{"red"}, keys(Tokenize("RED", 3)))
}

func TestTokenize_DefaultWidth(t *testing.T) {
	assert.Equal(t, keys(Tokenize("cotton", DefaultN)), keys(Tokenize("cotton", 0)))
}

func TestTokenize_MultibyteRunes(t *testing.T) {
	got := Tokenize("çay", 3)
	assert.True(t, got.Has("çay"))
	assert.Len(t, got, 1)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize("   ", 3))
}

func TestDocumentTokens(t *testing.T) {
	doc := &domain.IndexedDocument{
		ID:     "p1",
		Name:   "Kurti",
		Fabric: []string{"Cotton"},
		Colors: []string{"Blue"},
		Slug:   "zzzz-slug",
	}
	tokens := DocumentTokens(doc)
	for _, want := range []string{"kurti", "cotton", "blue", "tic"} {
		assert.True(t, tokens.Has(want), want)
	}
	assert.False(t, tokens.Has("zzzz"))
}

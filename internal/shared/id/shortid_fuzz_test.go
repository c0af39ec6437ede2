package id

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzParsePrefixedID(f *testing.F) {
	for _, seed := range []string{
		"off_xK9mP2vL3nQ",
		"wtx_abc123",
		"",
		"nounderscore",
		"_leading",
		"trailing_",
		"multiple_under_scores",
		"中文_测试",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}
		prefix, rest, err := ParsePrefixedID(input)
		if !strings.Contains(input, "_") {
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if prefix+"_"+rest != input {
			t.Fatalf("round trip mismatch: %q -> %q + %q", input, prefix, rest)
		}
	})
}

func TestGenerateWithPrefix(t *testing.T) {
	got, err := GenerateWithPrefix(PrefixOfflineTransaction, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !HasPrefix(got, PrefixOfflineTransaction) || len(got) != len("off_")+10 {
		t.Fatalf("unexpected id %q", got)
	}
}

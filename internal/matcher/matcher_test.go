package matcher

import "testing"

func allowList() []AllowEntry {
	return []AllowEntry{
		{Name: "Non-Standard Equipment", PositiveTokens: []string{"non", "standard", "equipment"}},
		{Name: "Standard Equipment", PositiveTokens: []string{"standard", "equipment"}, NegativeTokens: []string{"non"}},
	}
}

func TestMatchDisambiguatesNonStandardVsStandard(t *testing.T) {
	entry, ok := Match("Non-Standard Equipment ○", allowList())
	if !ok || entry.Name != "Non-Standard Equipment" {
		t.Fatalf("got %+v, %v", entry, ok)
	}

	entry2, ok2 := Match("Standard Equipment ◎", allowList())
	if !ok2 || entry2.Name != "Standard Equipment" {
		t.Fatalf("got %+v, %v", entry2, ok2)
	}
}

func TestMatchNoEntryFound(t *testing.T) {
	_, ok := Match("Completely Unrelated Skill", allowList())
	if ok {
		t.Fatal("expected no match")
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	tokens := Tokenize("The Speed of a Champion")
	want := map[string]bool{"speed": true, "champion": true}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v", tokens)
	}
	for _, tok := range tokens {
		if !want[tok] {
			t.Fatalf("unexpected token %q in %v", tok, tokens)
		}
	}
}

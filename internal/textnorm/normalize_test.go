package textnorm

import (
	"reflect"
	"testing"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"São Paulo", "sao paulo"},
		{"  Sao Paulo!! ", "sao paulo"},
		{"SP", "sp"},
		{"Rio-de-Janeiro", "rio-de-janeiro"},
		{"Ação & Reação", "acao  reacao"},
		{"...", ""},
		{42, "42"},
		{3.5, "35"},
		{nil, "none"},
		{"snake_case", "snake_case"},
		{"a\vb", "a\vb"},
		{"a\x1fb", "a\x1fb"},
		{"a\x00b", "ab"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "São Paulo", "ÁÉÍÓÚ çãõ", "a - b", "  !x! ", "Straße", "Ελληνικά", "東京",
		"tab\there", "v\vtab", "unit\x1fsep", "½ cup", "co-op's", "N°123", "—dash—", "ß", "İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanTextKeepsPunctuation(t *testing.T) {
	if got := CleanText("  Olá, Mundo! "); got != "ola, mundo!" {
		t.Fatalf("CleanText = %q", got)
	}
}

func TestTokensDropsStopwordsAndShortWords(t *testing.T) {
	got := Tokens("O atendimento da loja é ótimo e rápido", NewStopwordSet())
	want := []string{"atendimento", "loja", "otimo", "rapido"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokens = %v, want %v", got, want)
	}
	got = Tokens("entrega atrasada x", NewStopwordSet("entrega"))
	if !reflect.DeepEqual(got, []string{"atrasada"}) {
		t.Fatalf("custom stopwords not applied: %v", got)
	}
}

func TestTermFrequencies(t *testing.T) {
	tb, err := table.New("t",
		table.NewColumn("id", []string{"1", "2", "3"}),
		table.NewColumn("comment", []string{"Entrega rápida", "entrega atrasada", ""}),
		table.NewColumn("extra", []string{"rápida demais", "", "Entrega"}),
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	rows, err := TermFrequencies(tb, []string{"comment", "extra"}, "id", NewStopwordSet())
	if err != nil {
		t.Fatalf("TermFrequencies: %v", err)
	}
	want := []TermFrequency{
		{Term: "entrega", Frequency: 3, UniqueIDs: 3},
		{Term: "rapida", Frequency: 2, UniqueIDs: 1},
		{Term: "atrasada", Frequency: 1, UniqueIDs: 1},
		{Term: "demais", Frequency: 1, UniqueIDs: 1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}
	if _, err := TermFrequencies(tb, []string{"missing"}, "", nil); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

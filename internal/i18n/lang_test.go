package i18n

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Lang{"AR": Arabic, " fr-CA ": French, "en_US": English}
	for in, want := range cases {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Fatalf("Parse(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := Parse("de"); ok {
		t.Fatal("Parse(de) should fail")
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		header string
		want   Lang
	}{
		{"query wins", "ar", "fr-FR,fr;q=0.9", Arabic},
		{"unsupported query falls to header", "de", "fr-FR,fr;q=0.9", French},
		{"header quality order", "", "de-DE,ar;q=0.8,en;q=0.5", Arabic},
		{"nothing supported", "", "ja-JP", English},
		{"empty", "", "", English},
		{"malformed header", "", ";;;", English},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Negotiate(tc.query, tc.header); got != tc.want {
				t.Fatalf("Negotiate(%q, %q) = %q, want %q", tc.query, tc.header, got, tc.want)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	if Direction(Arabic) != "rtl" || Direction(French) != "ltr" {
		t.Fatal("unexpected direction")
	}
}

func TestResolveFallbacks(t *testing.T) {
	tr := map[string]string{"en": "Hotel", "fr": "Hôtel"}

	if got, used, _ := Resolve(tr, French); got != "Hôtel" || used != French {
		t.Fatalf("exact: got %q (%s)", got, used)
	}
	if got, used, _ := Resolve(tr, Arabic); got != "Hotel" || used != English {
		t.Fatalf("english fallback: got %q (%s)", got, used)
	}

	onlyOthers := map[string]string{"fr": "Voiture", "ar": "سيارة"}
	if got, used, _ := Resolve(onlyOthers, English); used != Arabic || got != "سيارة" {
		t.Fatalf("first available: got %q (%s)", got, used)
	}

	if _, _, ok := Resolve(map[string]string{}, English); ok {
		t.Fatal("empty map should report ok=false")
	}
}

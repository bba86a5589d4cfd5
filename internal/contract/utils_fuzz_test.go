package contract

import (
	"testing"
)

// FuzzNormalizeFIPS fuzzes NormalizeFIPS with arbitrary county codes.
func FuzzNormalizeFIPS(f *testing.F) {
	for _, seed := range []string{"1001", "01001", "53033.0", "", " 6037", "123456", "abc", ".0"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		got, err := NormalizeFIPS(input)
		if err != nil || got == "" {
			return
		}
		if len(got) != 5 {
			t.Fatalf("NormalizeFIPS(%q) = %q, want 5 digits", input, got)
		}
		again, err := NormalizeFIPS(got)
		if err != nil || again != got {
			t.Fatalf("NormalizeFIPS not idempotent for %q: %q then %q (%v)", input, got, again, err)
		}
	})
}

package normalization

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "apostrophe_and_punctuation",
			input: "Joe's Pizza!!",
			want:  "joes pizza",
		},
		{
			name:  "already_normalized",
			input: "joes pizza",
			want:  "joes pizza",
		},
		{
			name:  "collapses_whitespace",
			input: "  Tasty   \t Kitchen \n",
			want:  "tasty kitchen",
		},
		{
			name:  "digits_survive",
			input: "5 Guys & Co.",
			want:  "5 guys co",
		},
		{
			name:  "punctuation_only",
			input: "!!! *** ???",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "unicode_letters_kept",
			input: "Café München",
			want:  "café münchen",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeName(tc.input)
			if got != tc.want {
				t.Fatalf("NormalizeName(%q)=%q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"Joe's Pizza!!",
		"TWO'S  DINER & GRILL",
		"café  !! münchen",
		"",
		"plain name",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		twice := NormalizeName(once)
		if once != twice {
			t.Fatalf("NormalizeName not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

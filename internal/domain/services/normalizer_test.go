package services

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"collapses runs", "보증금   2억\n\n임대인\t홍길동", "보증금 2억 임대인 홍길동"},
		{"lowercases latin", "HUG 보증보험", "hug 보증보험"},
		{"already normalized", "근저당 설정", "근저당 설정"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()
	inputs := []string{
		"보증금: 200,000,000원\n임대인 홍길동",
		"  HUG  SGI  ",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

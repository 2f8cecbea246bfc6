package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input  string
		region string
		want   string
	}{
		{"(202) 555-0123", "US", "+12025550123"},
		{"+12025550123", "US", "+12025550123"},
		{"06 1234 5678", "NL", "+31612345678"},
		{"  +12025550123  ", "US", "+12025550123"},
		{"not a number", "US", "not a number"},
		{"", "US", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input, tc.region); got != tc.want {
			t.Fatalf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
		}
	}
}

func TestIsDialable(t *testing.T) {
	if !IsDialable("+12025550123", "US") {
		t.Fatal("valid E.164 number must be dialable")
	}
	if IsDialable("12345", "US") {
		t.Fatal("short junk must not be dialable")
	}
	if IsDialable("", "US") {
		t.Fatal("empty input must not be dialable")
	}
}

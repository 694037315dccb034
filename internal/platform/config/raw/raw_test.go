package raw

import "testing"

func TestGetPrefixesAndTrims(t *testing.T) {
	t.Setenv("LOG_SERVICE", " opsroute-api ")
	t.Setenv("LOG_FORMAT", "   ")

	log := New().Prefix("LOG_")
	if got := log.Get("SERVICE", "x"); got != "opsroute-api" {
		t.Fatalf("Get = %q", got)
	}
	if got := log.Get("FORMAT", "console"); got != "console" {
		t.Fatalf("blank value must fall back, got %q", got)
	}
	if got := New().Get("LOG_SERVICE", ""); got != "opsroute-api" {
		t.Fatalf("root Get = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{" YES ", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"maybe", true, false},
		{"", true, true},
		{"", false, false},
	}
	for _, tc := range cases {
		t.Setenv("LOG_CALLER", tc.val)
		if got := c.GetBool("CALLER", tc.def); got != tc.want {
			t.Fatalf("GetBool(%q, def=%v) = %v", tc.val, tc.def, got)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("LOG_")
	cases := map[string]int{
		"10":  10,
		" 3 ": 3,
		"0":   0,
		"-2":  7,
		"ten": 7,
		"":    7,
	}
	for val, want := range cases {
		t.Setenv("LOG_SAMPLE_EVERY", val)
		if got := c.GetInt("SAMPLE_EVERY", 7); got != want {
			t.Fatalf("GetInt(%q) = %d, want %d", val, got, want)
		}
	}
}

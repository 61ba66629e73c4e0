package memorial

import "testing"

func TestSlugifyNormalizes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Jane Doe":             "jane-doe",
		"  Jane   Doe  ":       "jane-doe",
		"José María O'Connor":  "jose-maria-o-connor",
		"Anne-Marie (Annie)":   "anne-marie-annie",
		"--Already--Hyphened--": "already-hyphened",
		"123 Main St.":         "123-main-st",
	}

	for input, expected := range cases {
		if got := Slugify(input); got != expected {
			t.Errorf("Slugify(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Jane Doe", "José María", "a b c", "x"}
	for _, input := range inputs {
		once := Slugify(input)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestSlugifyEmptyWhenNoAlphanumerics(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "!!!", "---", "()[]"} {
		if got := Slugify(input); got != "" {
			t.Errorf("Slugify(%q) = %q, expected empty", input, got)
		}
	}
}

func TestSlugifyEnforcesMaxLength(t *testing.T) {
	t.Parallel()

	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefghij "
	}

	got := Slugify(long)
	if len(got) > slugMaxLen {
		t.Fatalf("expected slug capped at %d characters, got %d", slugMaxLen, len(got))
	}
	if got[len(got)-1] == '-' {
		t.Fatalf("expected trailing hyphen trimmed, got %q", got)
	}
}

func TestNextSlugIncrementsSuffix(t *testing.T) {
	t.Parallel()

	if got := nextSlug("jane-doe", 1); got != "jane-doe-1" {
		t.Errorf("expected jane-doe-1, got %q", got)
	}

	if got := nextSlug("jane-doe-1", 2); got != "jane-doe-2" {
		t.Errorf("expected jane-doe-2, got %q", got)
	}

	if got := nextSlug("jane-doe-9", 3); got != "jane-doe-10" {
		t.Errorf("expected jane-doe-10, got %q", got)
	}
}

func TestNextSlugFallsBackToRandomToken(t *testing.T) {
	t.Parallel()

	got := nextSlug("jane-doe-25", slugConflictAttempts)
	if got == "jane-doe-26" {
		t.Fatalf("expected random fallback past attempt limit, got %q", got)
	}
	if len(got) <= len("jane-doe-") {
		t.Fatalf("expected token suffix, got %q", got)
	}
}

func TestSplitSlugSuffix(t *testing.T) {
	t.Parallel()

	base, n := splitSlugSuffix("jane-doe-3")
	if base != "jane-doe" || n != 3 {
		t.Errorf("expected (jane-doe, 3), got (%q, %d)", base, n)
	}

	base, n = splitSlugSuffix("jane-doe")
	if base != "jane-doe" || n != 0 {
		t.Errorf("expected (jane-doe, 0), got (%q, %d)", base, n)
	}

	base, n = splitSlugSuffix("route-66")
	if base != "route" || n != 66 {
		t.Errorf("expected (route, 66), got (%q, %d)", base, n)
	}
}

package pattern

import "testing"

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestExtract_Email(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("Напишите на ivan@test.com или admin@example.org.")
	if !contains(got, "ivan@test.com") {
		t.Errorf("Extract() = %v, missing ivan@test.com", got)
	}
	if !contains(got, "admin@example.org") {
		t.Errorf("Extract() = %v, missing admin@example.org", got)
	}
}

func TestExtract_Phone(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("Call +1 (555) 123-4567 now")
	found := false
	for _, s := range got {
		if countDigits(s) == 11 {
			found = true
		}
	}
	if !found {
		t.Errorf("Extract() = %v, expected a phone-like run", got)
	}
}

func TestExtract_PhoneTooShort(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("Room 123-45, floor 6")
	for _, s := range got {
		if countDigits(s) < 9 {
			t.Errorf("Extract() returned %q with fewer than 9 digits", s)
		}
	}
}

func TestExtract_SocialURL(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("Profile: https://t.me/someone and site https://example.com/page")
	if !contains(got, "https://t.me/someone") {
		t.Errorf("Extract() = %v, missing social link", got)
	}
	if contains(got, "https://example.com/page") {
		t.Errorf("Extract() = %v, should not contain non-social URL", got)
	}
}

func TestExtract_Dedup(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("a@b.io again a@b.io")
	count := 0
	for _, s := range got {
		if s == "a@b.io" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Extract() returned %d copies of the same literal, want 1", count)
	}
}

func TestExtract_Empty(t *testing.T) {
	e := NewExtractor()

	if got := e.Extract("plain text without anything sensitive"); len(got) != 0 {
		t.Errorf("Extract() = %v, want empty", got)
	}
}

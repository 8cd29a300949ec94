package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"HTTPS://IITU.EDU.KZ/About/", "https://iitu.edu.kz/About"},
		{"https://iitu.edu.kz", "https://iitu.edu.kz/"},
		{"https://iitu.edu.kz:443/a/../b", "https://iitu.edu.kz/b"},
		{"http://iitu.edu.kz:80/x", "http://iitu.edu.kz/x"},
		{"https://iitu.edu.kz/page#section", "https://iitu.edu.kz/page"},
		{"https://iitu.edu.kz/page?utm_source=tg&id=3", "https://iitu.edu.kz/page?id=3"},
		{"iitu.edu.kz/admissions", "https://iitu.edu.kz/admissions"},
	}
	for _, c := range cases {
		got, err := CanonicalURL(c.in)
		if err != nil {
			t.Fatalf("CanonicalURL(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	for _, in := range []string{"", "   "} {
		if _, err := CanonicalURL(in); err == nil {
			t.Errorf("CanonicalURL(%q): expected error", in)
		}
	}
}

func TestSameDomain(t *testing.T) {
	cases := []struct {
		url    string
		domain string
		want   bool
	}{
		{"https://iitu.edu.kz/page", "iitu.edu.kz", true},
		{"https://news.iitu.edu.kz/", "iitu.edu.kz", true},
		{"https://example.com/iitu.edu.kz", "iitu.edu.kz", false},
		{"https://notiitu.edu.kz/", "iitu.edu.kz", false},
		{"://bad", "iitu.edu.kz", false},
	}
	for _, c := range cases {
		if got := SameDomain(c.url, c.domain); got != c.want {
			t.Errorf("SameDomain(%q, %q) = %v, want %v", c.url, c.domain, got, c.want)
		}
	}
}

func TestResolve(t *testing.T) {
	got, err := Resolve("https://iitu.edu.kz/about/", "../contacts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "https://iitu.edu.kz/contacts" {
		t.Errorf("Resolve relative = %q", got)
	}

	got, err = Resolve("https://iitu.edu.kz/", "https://iitu.edu.kz/admissions")
	if err != nil || got != "https://iitu.edu.kz/admissions" {
		t.Errorf("Resolve absolute = %q, err %v", got, err)
	}

	if _, err := Resolve("https://iitu.edu.kz/", "mailto:info@iitu.edu.kz"); err == nil {
		t.Error("Resolve mailto: expected error")
	}
}

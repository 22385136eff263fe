package authz

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"Admin", RoleAdmin},
		{"  ADMIN  ", RoleAdmin},
		{"user", RoleUser},
		{"", RoleUser},
		{"superuser", RoleUser},
	}
	for _, c := range cases {
		if got := ParseRole(c.in); got != c.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAllow(t *testing.T) {
	if !Allow(RoleAdmin, RoleAdmin) {
		t.Fatal("admin should access admin endpoints")
	}
	if !Allow(RoleAdmin, RoleUser) {
		t.Fatal("admin should access user endpoints")
	}
	if Allow(RoleUser, RoleAdmin) {
		t.Fatal("user must not access admin endpoints")
	}
	if !Allow(RoleUser, RoleUser) {
		t.Fatal("user should access user endpoints")
	}
}

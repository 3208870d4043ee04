package auth

import (
	"testing"
	"time"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "rollcall-test"
)

func TestEstablishAndParse(t *testing.T) {
	session, err := Establish("2024001", testIssuer, testKey, time.Hour)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if session.Token == "" {
		t.Fatal("empty token")
	}

	identifier, err := Parse(session.Token, testKey, testIssuer)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identifier != "2024001" {
		t.Errorf("identifier = %q, want 2024001", identifier)
	}
}

func TestParseRejections(t *testing.T) {
	session, err := Establish("2024001", testIssuer, testKey, time.Hour)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{"wrong key", session.Token, "other-key", testIssuer},
		{"wrong issuer", session.Token, testKey, "someone-else"},
		{"garbage", "not.a.token", testKey, testIssuer},
		{"empty", "", testKey, testIssuer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.token, tc.key, tc.issuer); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseExpired(t *testing.T) {
	session, err := Establish("2024001", testIssuer, testKey, -time.Minute)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	if _, err := Parse(session.Token, testKey, testIssuer); err == nil {
		t.Error("expired token accepted")
	}
}

package handlers

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func TestFeedUserID(t *testing.T) {
	owner := uuid.New()

	got, err := feedUserID(jwt.MapClaims{"user_id": owner.String()})
	if err != nil {
		t.Fatalf("valid claim rejected: %v", err)
	}
	if got != owner {
		t.Fatalf("user id = %s, want %s", got, owner)
	}

	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing claim", jwt.MapClaims{"role": "student"}},
		{"non string claim", jwt.MapClaims{"user_id": 42.0}},
		{"not a uuid", jwt.MapClaims{"user_id": "not-a-uuid"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := feedUserID(tc.claims); err == nil {
				t.Fatalf("expected error for claims %v", tc.claims)
			}
		})
	}
}

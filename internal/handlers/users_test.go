package handlers

import (
	"net/http"
	"slices"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func TestUpdateAccount(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "alice")
	env.seedUser(t, "bob")

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"missingFullName", `{"email":"new@example.com"}`, http.StatusBadRequest, "fullName is required"},
		{"takenEmail", `{"fullName":"Alice","email":"bob@example.com"}`, http.StatusConflict, "email is already in use"},
		{"updated", `{"fullName":"Alice Liddell","email":"NEW@example.com"}`, http.StatusOK, "account details updated successfully"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPatch, "/api/v1/users/update-account", token, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if got := decodeEnvelope(t, rec).Message; got != tc.wantMsg {
				t.Fatalf("expected %q got %q", tc.wantMsg, got)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/users/current-user", token, nil)
	var user models.User
	decodeData(t, decodeEnvelope(t, rec), &user)
	if user.FullName != "Alice Liddell" || user.Email != "new@example.com" {
		t.Fatalf("unexpected current user %+v", user)
	}
}

func TestUpdateAvatarReapsPrevious(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "alice")

	rec := env.do(t, http.MethodPatch, "/api/v1/users/avatar", token, newMultipart(t, nil, nil))
	if rec.Code != http.StatusBadRequest || decodeEnvelope(t, rec).Message != "avatar is required" {
		t.Fatalf("expected missing avatar got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/users/avatar", token, newMultipart(t, nil, map[string]string{"avatar": "one.png"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var first models.User
	decodeData(t, decodeEnvelope(t, rec), &first)

	rec = env.do(t, http.MethodPatch, "/api/v1/users/avatar", token, newMultipart(t, nil, map[string]string{"avatar": "two.png"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	keys := env.media.discardedKeys()
	if len(keys) != 1 || !slices.ContainsFunc(env.media.stored, func(a models.Asset) bool { return a.PublicID == keys[0] && a.URL == first.Avatar }) {
		t.Fatalf("expected first avatar to be discarded got %v", keys)
	}
}

func TestChannelProfile(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.seedUser(t, "alice")
	_, token := env.seedUser(t, "bob")

	rec := env.do(t, http.MethodGet, "/api/v1/users/c/ALICE", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var profile models.ChannelProfile
	decodeData(t, decodeEnvelope(t, rec), &profile)
	if profile.ID != alice.ID {
		t.Fatalf("unexpected profile %+v", profile)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/c/nobody", token, nil)
	if rec.Code != http.StatusNotFound || decodeEnvelope(t, rec).Message != "channel does not exist" {
		t.Fatalf("expected missing channel got %d: %s", rec.Code, rec.Body.String())
	}
}

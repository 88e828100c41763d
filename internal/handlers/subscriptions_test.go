package handlers

import (
	"net/http"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

func TestSubscriptionToggle(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.seedUser(t, "alice")
	bob, bobToken := env.seedUser(t, "bob")

	for i, want := range []bool{true, false, true} {
		rec := env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+alice.ID, bobToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %d: expected 200 got %d", i, rec.Code)
		}
		var state map[string]bool
		decodeData(t, decodeEnvelope(t, rec), &state)
		if state["subscribed"] != want {
			t.Fatalf("toggle %d: expected subscribed=%v", i, want)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/c/"+alice.ID, aliceToken, nil)
	var subscribers struct {
		Count int                   `json:"Subscribers"`
		List  []models.Subscription `json:"totalSubscribers"`
	}
	decodeData(t, decodeEnvelope(t, rec), &subscribers)
	if subscribers.Count != 1 || len(subscribers.List) != 1 || subscribers.List[0].Subscriber.ID != bob.ID {
		t.Fatalf("unexpected subscribers %+v", subscribers)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/subscriptions/u/"+bob.ID, bobToken, nil)
	var channels struct {
		Count int                   `json:"Channels"`
		List  []models.Subscription `json:"totalChannels"`
	}
	decodeData(t, decodeEnvelope(t, rec), &channels)
	if channels.Count != 1 || channels.List[0].Channel.ID != alice.ID {
		t.Fatalf("unexpected channels %+v", channels)
	}
}

func TestSubscriptionToggleRejections(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.seedUser(t, "alice")

	cases := []struct {
		name       string
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"self", "/api/v1/subscriptions/c/" + alice.ID, http.StatusBadRequest, "you cannot subscribe to your own channel"},
		{"unknownChannel", "/api/v1/subscriptions/c/3c9d6a55-1d0b-4f6e-8f0e-2b7c4b1a9d44", http.StatusNotFound, "channel not found"},
		{"invalidID", "/api/v1/subscriptions/c/xyz", http.StatusBadRequest, "invalid channelId"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tc.path, aliceToken, nil)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d", tc.wantStatus, rec.Code)
			}
			if got := decodeEnvelope(t, rec).Message; got != tc.wantMsg {
				t.Fatalf("expected %q got %q", tc.wantMsg, got)
			}
		})
	}
}

func TestEmptySubscriberListIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seedUser(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/c/"+alice.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var subscribers struct {
		Count int `json:"Subscribers"`
	}
	decodeData(t, decodeEnvelope(t, rec), &subscribers)
	if subscribers.Count != 0 {
		t.Fatalf("expected no subscribers got %d", subscribers.Count)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seedUser(t, "alice")
	env.seedVideo(t, alice, "public", true)
	env.seedVideo(t, alice, "draft", false)
	env.stats.stats[alice.ID] = models.ChannelStats{TotalSubscribers: 3, TotalVideos: 2, TotalLikes: 5, TotalViews: 40}

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var stats models.ChannelStats
	decodeData(t, decodeEnvelope(t, rec), &stats)
	if stats != env.stats.stats[alice.ID] {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard/videos", token, nil)
	var videos []models.Video
	decodeData(t, decodeEnvelope(t, rec), &videos)
	if len(videos) != 2 {
		t.Fatalf("expected drafts to be included got %d videos", len(videos))
	}

	if rec := env.do(t, http.MethodGet, "/api/v1/dashboard/stats", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]models.User{}} }

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, username, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUsers) UpdateAccount(_ context.Context, id, fullName, email string, at time.Time) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	for _, other := range f.users {
		if other.ID != id && other.Email == email {
			return models.User{}, repositories.ErrConflict
		}
	}
	user.FullName, user.Email, user.UpdatedAt = fullName, email, at
	f.users[id] = user
	return user, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password, user.UpdatedAt = hash, at
	f.users[id] = user
	return nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, id string, avatar models.Asset, at time.Time) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.Avatar, user.AvatarKey, user.UpdatedAt = avatar.URL, avatar.PublicID, at
	f.users[id] = user
	return user, nil
}

func (f *fakeUsers) UpdateCoverImage(_ context.Context, id string, cover models.Asset, at time.Time) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.CoverImage, user.CoverImageKey, user.UpdatedAt = cover.URL, cover.PublicID, at
	f.users[id] = user
	return user, nil
}

func (f *fakeUsers) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return models.ChannelProfile{User: user}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

type fakeVideos struct {
	mu     sync.Mutex
	videos map[string]models.Video
	order  []string
}

func newFakeVideos() *fakeVideos { return &fakeVideos{videos: map[string]models.Video{}} }

func (f *fakeVideos) Create(_ context.Context, video models.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[video.ID] = video
	f.order = append(f.order, video.ID)
	return nil
}

func (f *fakeVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideos) Update(_ context.Context, video models.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideos) TogglePublished(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = at
	f.videos[id] = video
	return video.IsPublished, nil
}

func (f *fakeVideos) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideos) matching(filter repositories.VideoFilter) []models.Video {
	var out []models.Video
	for _, id := range f.order {
		video, ok := f.videos[id]
		if !ok {
			continue
		}
		if !video.IsPublished && video.OwnerID != filter.ViewerID {
			continue
		}
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(video.Title+" "+video.Description), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, video)
	}
	return out
}

func (f *fakeVideos) Count(_ context.Context, filter repositories.VideoFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeVideos) List(_ context.Context, filter repositories.VideoFilter, limit, offset int) ([]models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return window(f.matching(filter), limit, offset), nil
}

func (f *fakeVideos) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Video{}
	for _, id := range f.order {
		if video, ok := f.videos[id]; ok && video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (f *fakeVideos) RecordView(_ context.Context, videoID, _ string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	f.videos[videoID] = video
	return nil
}

func (f *fakeVideos) WatchHistory(context.Context, string) ([]models.Video, error) {
	return []models.Video{}, nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	order    []string
}

func newFakeComments() *fakeComments { return &fakeComments{comments: map[string]models.Comment{}} }

func (f *fakeComments) Create(_ context.Context, comment models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[comment.ID] = comment
	f.order = append(f.order, comment.ID)
	return nil
}

func (f *fakeComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id, content string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content, comment.UpdatedAt = content, at
	f.comments[id] = comment
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeComments) byVideo(videoID string) []models.Comment {
	var out []models.Comment
	for _, id := range slices.Backward(f.order) {
		if comment, ok := f.comments[id]; ok && comment.VideoID == videoID {
			out = append(out, comment)
		}
	}
	return out
}

func (f *fakeComments) CountByVideo(_ context.Context, videoID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byVideo(videoID))), nil
}

func (f *fakeComments) ListByVideo(_ context.Context, videoID string, limit, offset int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return window(f.byVideo(videoID), limit, offset), nil
}

type fakeLikes struct {
	mu     sync.Mutex
	likes  map[string]bool
	order  []string
	videos *fakeVideos
}

func newFakeLikes(videos *fakeVideos) *fakeLikes {
	return &fakeLikes{likes: map[string]bool{}, videos: videos}
}

func (f *fakeLikes) Toggle(_ context.Context, userID string, target models.LikeTarget) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + string(target.Kind()) + "/" + target.ID()
	if f.likes[key] {
		delete(f.likes, key)
		f.order = slices.DeleteFunc(f.order, func(k string) bool { return k == key })
		return false, nil
	}
	f.likes[key] = true
	f.order = append(f.order, key)
	return true, nil
}

func (f *fakeLikes) likedVideos(ctx context.Context, userID string) []models.LikedVideo {
	f.mu.Lock()
	keys := slices.Clone(f.order)
	f.mu.Unlock()

	prefix := userID + "/video/"
	out := []models.LikedVideo{}
	for i := len(keys) - 1; i >= 0; i-- {
		videoID, ok := strings.CutPrefix(keys[i], prefix)
		if !ok {
			continue
		}
		video, err := f.videos.FindByID(ctx, videoID)
		if err != nil || (!video.IsPublished && video.OwnerID != userID) {
			continue
		}
		out = append(out, models.LikedVideo{ID: keys[i], LikedBy: userID, Video: video})
	}
	return out
}

func (f *fakeLikes) CountLikedVideos(ctx context.Context, userID string) (int64, error) {
	return int64(len(f.likedVideos(ctx, userID))), nil
}

func (f *fakeLikes) ListLikedVideos(ctx context.Context, userID string, limit, offset int) ([]models.LikedVideo, error) {
	return window(f.likedVideos(ctx, userID), limit, offset), nil
}

type fakeTweets struct {
	mu     sync.Mutex
	tweets map[string]models.Tweet
}

func newFakeTweets() *fakeTweets { return &fakeTweets{tweets: map[string]models.Tweet{}} }

func (f *fakeTweets) Create(_ context.Context, tweet models.Tweet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tweets[tweet.ID] = tweet
	return nil
}

func (f *fakeTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tweet, ok := f.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (f *fakeTweets) UpdateContent(_ context.Context, id, content string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tweet, ok := f.tweets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content, tweet.UpdatedAt = content, at
	f.tweets[id] = tweet
	return nil
}

func (f *fakeTweets) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tweets, id)
	return nil
}

func (f *fakeTweets) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Tweet{}
	for _, tweet := range f.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakePlaylists struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
	videos    *fakeVideos
}

func newFakePlaylists(videos *fakeVideos) *fakePlaylists {
	return &fakePlaylists{playlists: map[string]models.Playlist{}, videos: videos}
}

func (f *fakePlaylists) Create(_ context.Context, playlist models.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist.VideoIDs = slices.Clone(playlist.VideoIDs)
	f.playlists[playlist.ID] = playlist
	return nil
}

func (f *fakePlaylists) FindByID(ctx context.Context, id, viewerID string) (models.Playlist, error) {
	f.mu.Lock()
	playlist, ok := f.playlists[id]
	f.mu.Unlock()
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Videos = []models.Video{}
	playlist.VideoIDs = []string{}
	for _, videoID := range f.entries(id) {
		video, err := f.videos.FindByID(ctx, videoID)
		if err != nil || (!video.IsPublished && video.OwnerID != viewerID) {
			continue
		}
		playlist.Videos = append(playlist.Videos, video)
		playlist.VideoIDs = append(playlist.VideoIDs, video.ID)
	}
	return playlist, nil
}

func (f *fakePlaylists) entries(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.playlists[id].VideoIDs)
}

func (f *fakePlaylists) ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.Playlist, error) {
	f.mu.Lock()
	var ids []string
	for id, playlist := range f.playlists {
		if playlist.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()

	out := []models.Playlist{}
	for _, id := range ids {
		playlist, err := f.FindByID(ctx, id, viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, playlist)
	}
	return out, nil
}

func (f *fakePlaylists) Update(_ context.Context, id, name, description string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.Name, playlist.Description, playlist.UpdatedAt = name, description, at
	f.playlists[id] = playlist
	return nil
}

func (f *fakePlaylists) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.playlists, id)
	return nil
}

func (f *fakePlaylists) AddVideo(_ context.Context, playlistID, videoID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	if !slices.Contains(playlist.VideoIDs, videoID) {
		playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	}
	playlist.UpdatedAt = at
	f.playlists[playlistID] = playlist
	return nil
}

func (f *fakePlaylists) RemoveVideo(_ context.Context, playlistID, videoID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	playlist, ok := f.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	if i := slices.Index(playlist.VideoIDs, videoID); i >= 0 {
		playlist.VideoIDs = slices.Delete(playlist.VideoIDs, i, i+1)
		playlist.UpdatedAt = at
	}
	f.playlists[playlistID] = playlist
	return nil
}

type fakeSubscriptions struct {
	mu    sync.Mutex
	pairs map[[2]string]bool
	users *fakeUsers
}

func newFakeSubscriptions(users *fakeUsers) *fakeSubscriptions {
	return &fakeSubscriptions{pairs: map[[2]string]bool{}, users: users}
}

func (f *fakeSubscriptions) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{subscriberID, channelID}
	if f.pairs[key] {
		delete(f.pairs, key)
		return false, nil
	}
	f.pairs[key] = true
	return true, nil
}

func (f *fakeSubscriptions) summary(ctx context.Context, id string) *models.UserSummary {
	user, err := f.users.FindByID(ctx, id)
	if err != nil {
		return &models.UserSummary{ID: id}
	}
	summary := user.Summary()
	return &summary
}

func (f *fakeSubscriptions) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Subscription{}
	for key := range f.pairs {
		if key[1] == channelID {
			out = append(out, models.Subscription{SubscriberID: key[0], ChannelID: key[1], Subscriber: f.summary(ctx, key[0])})
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) ListChannels(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Subscription{}
	for key := range f.pairs {
		if key[0] == subscriberID {
			out = append(out, models.Subscription{SubscriberID: key[0], ChannelID: key[1], Channel: f.summary(ctx, key[1])})
		}
	}
	return out, nil
}

type fakeStats struct {
	stats map[string]models.ChannelStats
}

func (f fakeStats) Stats(_ context.Context, channelID string) (models.ChannelStats, error) {
	return f.stats[channelID], nil
}

type fakeMedia struct {
	mu        sync.Mutex
	stored    []models.Asset
	discarded []models.Asset
	duration  int64
	failOn    string
}

func (f *fakeMedia) Store(_ context.Context, folder string, upload media.Upload) (models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if folder == f.failOn {
		return models.Asset{}, io.ErrUnexpectedEOF
	}
	key := folder + "/" + uuid.NewString() + "-" + upload.Filename
	asset := models.Asset{URL: "https://cdn.example/" + key, PublicID: key}
	f.stored = append(f.stored, asset)
	return asset, nil
}

func (f *fakeMedia) Duration(context.Context, media.Upload) int64 { return f.duration }

func (f *fakeMedia) Discard(_ context.Context, assets ...models.Asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, asset := range assets {
		if asset.PublicID != "" {
			f.discarded = append(f.discarded, asset)
		}
	}
}

func (f *fakeMedia) discardedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.discarded))
	for _, asset := range f.discarded {
		keys = append(keys, asset.PublicID)
	}
	return keys
}

func window[T any](records []T, limit, offset int) []T {
	if offset >= len(records) {
		return []T{}
	}
	end := min(offset+limit, len(records))
	return records[offset:end]
}

// testEnv is a router backed by in-memory stores.
type testEnv struct {
	router        http.Handler
	sessions      *auth.Manager
	users         *fakeUsers
	videos        *fakeVideos
	comments      *fakeComments
	likes         *fakeLikes
	tweets        *fakeTweets
	playlists     *fakePlaylists
	subscriptions *fakeSubscriptions
	stats         fakeStats
	media         *fakeMedia
	now           time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions, err := auth.NewManager(config.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, auth.NewInMemoryTokenStore())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	users := newFakeUsers()
	videos := newFakeVideos()
	env := &testEnv{
		sessions:      sessions,
		users:         users,
		videos:        videos,
		comments:      newFakeComments(),
		likes:         newFakeLikes(videos),
		tweets:        newFakeTweets(),
		playlists:     newFakePlaylists(videos),
		subscriptions: newFakeSubscriptions(users),
		stats:         fakeStats{stats: map[string]models.ChannelStats{}},
		media:         &fakeMedia{duration: 42},
		now:           time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	env.router = NewRouter(Dependencies{
		Users:          env.users,
		Sessions:       sessions,
		Tokens:         sessions,
		Videos:         env.videos,
		Comments:       env.comments,
		Likes:          env.likes,
		Tweets:         env.tweets,
		Playlists:      env.playlists,
		Subscriptions:  env.subscriptions,
		Stats:          env.stats,
		Media:          env.media,
		Ping:           func(context.Context) error { return nil },
		MaxUploadBytes: 1 << 20,
		NowFunc:        func() time.Time { return env.now },
	})
	return env
}

// seedUser stores an account with password "secret" and returns it with an
// access token.
func (e *testEnv) seedUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Password:     string(hash),
		WatchHistory: []string{},
		CreatedAt:    e.now,
		UpdatedAt:    e.now,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tokens, err := e.sessions.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return user, tokens.AccessToken
}

func (e *testEnv) seedVideo(t *testing.T, owner models.User, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " description",
		VideoFile:   models.Asset{URL: "https://cdn.example/videos/" + title, PublicID: "videos/" + title},
		Thumbnail:   models.Asset{URL: "https://cdn.example/thumbnails/" + title, PublicID: "thumbnails/" + title},
		Duration:    60,
		IsPublished: published,
		OwnerID:     owner.ID,
		CreatedAt:   e.now,
		UpdatedAt:   e.now,
	}
	if err := e.videos.Create(context.Background(), video); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}

// do sends a request through the router. body may be nil, a string of JSON or
// a *multipartBody.
func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case string:
		req = httptest.NewRequest(method, target, strings.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	case *multipartBody:
		req = httptest.NewRequest(method, target, bytes.NewReader(b.buf.Bytes()))
		req.Header.Set("Content-Type", b.contentType)
	default:
		t.Fatalf("unsupported body type %T", body)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type multipartBody struct {
	buf         bytes.Buffer
	contentType string
}

// newMultipart builds a form from fields and files keyed by field name.
func newMultipart(t *testing.T, fields map[string]string, files map[string]string) *multipartBody {
	t.Helper()
	body := &multipartBody{}
	writer := multipart.NewWriter(&body.buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("content of " + filename)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	body.contentType = writer.FormDataContentType()
	return body
}

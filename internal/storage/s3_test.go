package storage

import (
	"context"
	"testing"

	"github.com/vidtube/backend/internal/config"
)

func TestNewS3StorageRequiresBucket(t *testing.T) {
	if _, err := NewS3Storage(context.Background(), config.ObjectStoreConfig{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestS3StorageURL(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cases := []struct {
		name string
		cfg  config.ObjectStoreConfig
		want string
	}{
		{"publicBase", config.ObjectStoreConfig{Bucket: "media", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/videos/a.mp4"},
		{"endpoint", config.ObjectStoreConfig{Bucket: "media", Region: "us-east-1", Endpoint: "http://localhost:9000"}, "http://localhost:9000/media/videos/a.mp4"},
		{"aws", config.ObjectStoreConfig{Bucket: "media", Region: "us-east-1"}, "https://media.s3.amazonaws.com/videos/a.mp4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewS3Storage(context.Background(), tc.cfg)
			if err != nil {
				t.Fatalf("new storage: %v", err)
			}
			if got := s.URL("videos/a.mp4"); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

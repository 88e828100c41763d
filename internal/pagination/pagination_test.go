package pagination

import (
	"net/url"
	"testing"
)

func TestFromQuery(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 10}},
		{"explicit", "page=3&limit=25", Params{Page: 3, Limit: 25}},
		{"nonPositive", "page=0&limit=-4", Params{Page: 1, Limit: 10}},
		{"malformed", "page=abc&limit=1.5", Params{Page: 1, Limit: 10}},
		{"capped", "limit=1000", Params{Page: 1, Limit: MaxLimit}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			if got := FromQuery(values); got != tc.want {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestComputeBoundaries(t *testing.T) {
	cases := []struct {
		page      int
		total     int64
		wantPages int
		wantOK    bool
	}{
		{page: 1, total: 0, wantPages: 0, wantOK: true},
		{page: 5, total: 0, wantPages: 0, wantOK: true},
		{page: 1, total: 25, wantPages: 3, wantOK: true},
		{page: 3, total: 25, wantPages: 3, wantOK: true},
		{page: 4, total: 25, wantPages: 3, wantOK: false},
		{page: 2, total: 20, wantPages: 2, wantOK: true},
		{page: 3, total: 20, wantPages: 2, wantOK: false},
	}

	for _, tc := range cases {
		meta, ok := Params{Page: tc.page, Limit: 10}.Compute(tc.total)
		if ok != tc.wantOK || meta.TotalPages != tc.wantPages || meta.TotalPosts != tc.total || meta.CurrentPage != tc.page {
			t.Fatalf("page %d total %d: got meta %+v ok %v", tc.page, tc.total, meta, ok)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20 got %d", got)
	}
}

func TestPayloadLayout(t *testing.T) {
	out := Payload([]string{"a", "b"}, Meta{CurrentPage: 1, TotalPages: 1, TotalPosts: 2})
	if len(out) != 5 {
		t.Fatalf("expected 5 entries got %d", len(out))
	}
	if out[0] != "a" || out[1] != "b" {
		t.Fatalf("records should lead the payload: %v", out)
	}
	if m, ok := out[2].(map[string]int); !ok || m["currentPage"] != 1 {
		t.Fatalf("unexpected currentPage entry %v", out[2])
	}
	if m, ok := out[4].(map[string]int64); !ok || m["totalPosts"] != 2 {
		t.Fatalf("unexpected totalPosts entry %v", out[4])
	}
}

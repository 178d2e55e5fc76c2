package github

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-github/github"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "mock not found", err: &NotFoundError{Message: "gone"}, want: true},
		{
			name: "api 404",
			err:  &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}},
			want: true,
		},
		{
			name: "api 422",
			err:  &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusUnprocessableEntity}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("NewClient(\"\") expected error")
	}
	if _, err := NewClient("ghp_test"); err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
}

func TestMockClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()

	if _, err := mock.GetRelease(ctx, "TheMulhima", "Scarab", "v1.0.0.0"); !IsNotFound(err) {
		t.Fatalf("GetRelease() on empty mock error = %v, want not found", err)
	}

	tag := "v1.0.0.0"
	rel, err := mock.CreateRelease(ctx, "TheMulhima", "Scarab", &github.RepositoryRelease{TagName: &tag})
	if err != nil {
		t.Fatalf("CreateRelease() error = %v", err)
	}

	if _, err := mock.UploadReleaseAsset(ctx, "TheMulhima", "Scarab", rel.GetID(), "out/mac.zip"); err != nil {
		t.Fatalf("UploadReleaseAsset() error = %v", err)
	}

	got, err := mock.GetRelease(ctx, "TheMulhima", "Scarab", tag)
	if err != nil {
		t.Fatalf("GetRelease() error = %v", err)
	}
	if len(got.Assets) != 1 || got.Assets[0].GetName() != "mac.zip" {
		t.Errorf("release assets = %+v, want one mac.zip", got.Assets)
	}
}

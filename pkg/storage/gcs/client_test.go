package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenSource() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func TestUploadObjectReturnsPublicURL(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "agrikm-media",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodPost {
				t.Fatalf("expected POST, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if req.Header.Get("Content-Type") != "image/png" {
				t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
			}
			if !strings.Contains(req.URL.RawQuery, "name=products%2Ffile.png") {
				t.Fatalf("object name missing from query: %s", req.URL.RawQuery)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"name":"products/file.png"}`)),
				Header:     http.Header{},
			}
		})},
	}

	url, err := client.UploadObject(context.Background(), "products/file.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}
	if url != "https://storage.googleapis.com/agrikm-media/products/file.png" {
		t.Fatalf("unexpected public url %s", url)
	}
}

func TestUploadObjectUsesPublicBaseURL(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "agrikm-media",
		publicBaseURL: "https://media.agrikmzero.it",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{}`)),
				Header:     http.Header{},
			}
		})},
	}

	url, err := client.UploadObject(context.Background(), "logos/farm.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}
	if url != "https://media.agrikmzero.it/logos/farm.png" {
		t.Fatalf("unexpected public url %s", url)
	}
}

func TestDeleteObjectSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "agrikm-media",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Fatalf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.DeleteObject(context.Background(), "logos/farm.png"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
}

func TestDeleteObjectNotFound(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "agrikm-media",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.DeleteObject(context.Background(), "logos/farm.png"); err != nil {
		t.Fatalf("DeleteObject not found should succeed: %v", err)
	}
}

func TestUploadObjectRequiresName(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "agrikm-media", tokenSource: staticTokenSource()}
	if _, err := client.UploadObject(context.Background(), "", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty object name")
	}
}

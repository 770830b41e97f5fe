package ocr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGoogleVisionSendsImageURI(t *testing.T) {
	var got visionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		io.WriteString(w, `{"responses":[{"textAnnotations":[{"description":"OCEAN BASKET\nBill Total 524.00"},{"description":"OCEAN"}]}]}`)
	}))
	defer srv.Close()

	p := NewGoogleVisionProvider("k")
	p.endpoint = srv.URL

	d, err := p.DetectText(context.Background(), "https://cdn.example.com/r.jpg")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if src := got.Requests[0].Image.Source; src == nil || src.ImageURI != "https://cdn.example.com/r.jpg" {
		t.Errorf("source = %+v", src)
	}
	if text, _ := d.FullText(); !strings.HasPrefix(text, "OCEAN BASKET") {
		t.Errorf("full text = %q", text)
	}
}

func TestGoogleVisionInlinesLocalFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got visionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"responses":[{}]}`)
	}))
	defer srv.Close()

	p := NewGoogleVisionProvider("k")
	p.endpoint = srv.URL

	d, err := p.DetectText(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if got.Requests[0].Image.Content != "anBlZw==" {
		t.Errorf("content = %q", got.Requests[0].Image.Content)
	}
	if _, ok := d.FullText(); ok {
		t.Error("expected no annotations")
	}
}

func TestGoogleVisionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`)
	}))
	defer srv.Close()

	p := NewGoogleVisionProvider("k")
	p.endpoint = srv.URL

	if _, err := p.DetectText(context.Background(), "gs://bucket/r.jpg"); err == nil || !strings.Contains(err.Error(), "Bad image data") {
		t.Errorf("err = %v", err)
	}
}

func TestOCRSpaceParsedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if r.FormValue("url") != "https://cdn.example.com/r.jpg" {
			t.Errorf("url = %q", r.FormValue("url"))
		}
		io.WriteString(w, `{"ParsedResults":[{"ParsedText":"Joe's Diner\r\nR45.00"}],"OCRExitCode":1}`)
	}))
	defer srv.Close()

	p := NewOCRSpaceProvider("k")
	p.endpoint = srv.URL

	d, err := p.DetectText(context.Background(), "https://cdn.example.com/r.jpg")
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if text, ok := d.FullText(); !ok || !strings.Contains(text, "R45.00") {
		t.Errorf("full text = %q", text)
	}
}

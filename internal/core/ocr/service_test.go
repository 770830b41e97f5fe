package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type scriptedProvider struct {
	results []func(ctx context.Context) (*TextDetection, error)
	calls   int
}

func (p *scriptedProvider) DetectText(ctx context.Context, _ string) (*TextDetection, error) {
	r := p.results[p.calls]
	p.calls++
	return r(ctx)
}

func (p *scriptedProvider) GetProviderName() string { return "scripted" }

func fail(err error) func(context.Context) (*TextDetection, error) {
	return func(context.Context) (*TextDetection, error) { return nil, err }
}

func text(s string) func(context.Context) (*TextDetection, error) {
	return func(context.Context) (*TextDetection, error) {
		return &TextDetection{TextAnnotations: []TextAnnotation{{Description: s}, {Description: "word"}}}, nil
	}
}

func newTestService(p Provider, opts Options) (*Service, *[]time.Duration) {
	var slept []time.Duration
	s := NewService(p, opts, zerolog.Nop())
	s.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return s, &slept
}

func TestExtractTextUsesFirstAnnotation(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (*TextDetection, error){text("OCEAN BASKET\nBill Total 524.00")}}
	s, _ := newTestService(p, Options{})

	got, err := s.ExtractText(context.Background(), "https://img/1.jpg")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "OCEAN BASKET\nBill Total 524.00" {
		t.Errorf("got %q", got)
	}
}

func TestExtractTextRetriesWithBackoff(t *testing.T) {
	transient := errors.New("503")
	p := &scriptedProvider{results: []func(context.Context) (*TextDetection, error){fail(transient), fail(transient), text("ok")}}
	s, slept := newTestService(p, Options{MaxRetries: 2, Backoff: 100 * time.Millisecond})

	got, err := s.ExtractText(context.Background(), "img")
	if err != nil || got != "ok" {
		t.Fatalf("got (%q, %v)", got, err)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(*slept) != 2 || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoff = %v, want %v", *slept, want)
	}
}

func TestExtractTextGivesUp(t *testing.T) {
	transient := errors.New("503")
	p := &scriptedProvider{results: []func(context.Context) (*TextDetection, error){fail(transient), fail(transient)}}
	s, _ := newTestService(p, Options{MaxRetries: 1})

	_, err := s.ExtractText(context.Background(), "img")
	if !errors.Is(err, transient) {
		t.Fatalf("err = %v", err)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestExtractTextNoAnnotationsIsNotRetried(t *testing.T) {
	empty := func(context.Context) (*TextDetection, error) { return &TextDetection{}, nil }
	p := &scriptedProvider{results: []func(context.Context) (*TextDetection, error){empty, empty}}
	s, _ := newTestService(p, Options{MaxRetries: 1})

	if _, err := s.ExtractText(context.Background(), "img"); !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

func TestExtractTextTimeout(t *testing.T) {
	blocking := func(ctx context.Context) (*TextDetection, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p := &scriptedProvider{results: []func(context.Context) (*TextDetection, error){blocking}}
	s, _ := newTestService(p, Options{Timeout: 10 * time.Millisecond})

	_, err := s.ExtractText(context.Background(), "img")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

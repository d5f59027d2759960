package source

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const twoQuotes = `[
  {"quote":"D'oh","character":"Homer Simpson","image":"https://example.com/homer.png","characterDirection":"Right"},
  {"quote":"Eat my shorts","character":"Bart Simpson","image":"https://example.com/bart.png","characterDirection":"Left","extra":true}
]`

func TestHTTPLoader_FetchBatch(t *testing.T) {
	var gotCount, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoQuotes))
	}))
	defer srv.Close()

	l, err := NewHTTPLoader(srv.URL+"/quotes", time.Second)
	if err != nil {
		t.Fatalf("NewHTTPLoader: %v", err)
	}

	records, err := l.FetchBatch(context.Background(), 9)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) %d, want 2", len(records))
	}
	if records[0].Character != "Homer Simpson" || records[0].CharacterDirection != "Right" {
		t.Errorf("records[0] %+v", records[0])
	}
	if gotCount != "9" {
		t.Errorf("count query %q, want 9", gotCount)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept %q, want application/json", gotAccept)
	}
}

func TestHTTPLoader_ClampsCount(t *testing.T) {
	var gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	l, _ := NewHTTPLoader(srv.URL, time.Second)
	if _, err := l.FetchBatch(context.Background(), 50); err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if gotCount != "9" {
		t.Errorf("count query %q, want 9", gotCount)
	}
}

func TestHTTPLoader_StatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l, _ := NewHTTPLoader(srv.URL, time.Second)
	if _, err := l.FetchBatch(context.Background(), 4); !errors.Is(err, ErrNetwork) {
		t.Errorf("error %v, want ErrNetwork", err)
	}
}

func TestHTTPLoader_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l, _ := NewHTTPLoader(url, time.Second)
	if _, err := l.FetchBatch(context.Background(), 4); !errors.Is(err, ErrNetwork) {
		t.Errorf("error %v, want ErrNetwork", err)
	}
}

func TestHTTPLoader_ParseErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>`,
		"object":        `{"quote":"D'oh"}`,
		"null":          `null`,
		"string":        `"D'oh"`,
		"trailing data": `[] trailing garbage`,
		"two arrays":    `[] []`,
		"missing image": `[{"quote":"D'oh","character":"Homer","characterDirection":"Left"}]`,
		"bad direction": `[{"quote":"D'oh","character":"Homer","image":"x","characterDirection":"Up"}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			l, _ := NewHTTPLoader(srv.URL, time.Second)
			if _, err := l.FetchBatch(context.Background(), 4); !errors.Is(err, ErrParse) {
				t.Errorf("error %v, want ErrParse", err)
			}
		})
	}
}

func TestNewHTTPLoader_RejectsScheme(t *testing.T) {
	if _, err := NewHTTPLoader("ftp://example.com/quotes", time.Second); err == nil {
		t.Error("NewHTTPLoader accepted ftp scheme")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quotes.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoader_FetchBatch(t *testing.T) {
	l, err := NewFileLoader(writeFile(t, twoQuotes), rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatalf("NewFileLoader: %v", err)
	}

	one, err := l.FetchBatch(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("len %d, want 1", len(one))
	}

	all, _ := l.FetchBatch(context.Background(), 9)
	if len(all) != 2 {
		t.Errorf("len %d, want 2", len(all))
	}
	if all[0].Character == all[1].Character {
		t.Errorf("sample repeated a record: %+v", all)
	}
}

func TestFileLoader_CancelledContext(t *testing.T) {
	l, _ := NewFileLoader(writeFile(t, twoQuotes), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.FetchBatch(ctx, 2); !errors.Is(err, ErrNetwork) {
		t.Errorf("error %v, want ErrNetwork", err)
	}
}

func TestNewFileLoader_Errors(t *testing.T) {
	if _, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error %v, want os.ErrNotExist", err)
	}
	if _, err := NewFileLoader(writeFile(t, `[]`), nil); !errors.Is(err, ErrParse) {
		t.Errorf("empty file error %v, want ErrParse", err)
	}
	if _, err := NewFileLoader(writeFile(t, `nope`), nil); !errors.Is(err, ErrParse) {
		t.Errorf("garbage file error %v, want ErrParse", err)
	}
}

func TestClampBatch(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 4: 4, 9: 9, 10: 9}
	for in, want := range cases {
		if got := ClampBatch(in); got != want {
			t.Errorf("ClampBatch(%d) %d, want %d", in, got, want)
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// arxivFixture renders an Atom feed with n entries.
func arxivFixture(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<entry>
			<id>http://arxiv.org/abs/2301.0%d</id>
			<title>Deep   Learning
			    Paper %d</title>
			<summary>  An abstract
			  about machine learning.  </summary>
			<published>2023-01-1%dT00:00:00Z</published>
			<author><name>Alice Smith</name></author>
			<author><name>Bob Jones</name></author>
			<link href="http://arxiv.org/abs/2301.0%d" rel="alternate"/>
			<link href="http://arxiv.org/pdf/2301.0%d" rel="related" title="pdf"/>
		</entry>`, i, i, i%10, i, i)
	}
	b.WriteString(`</feed>`)
	return b.String()
}

func TestArxivFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_query"); got != "all:machine+learning" {
			t.Errorf("search_query = %q, want %q", got, "all:machine+learning")
		}
		fmt.Fprint(w, arxivFixture(6))
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	a := &Arxiv{Client: ts.Client(), Log: testLog()}
	records, err := a.Fetch(context.Background(), "machine learning", 5, testCfg())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}
	for i, r := range records {
		if !allFieldsSet(r) {
			t.Errorf("record %d has an empty field: %+v", i, r)
		}
		if r.Source != "arXiv" {
			t.Errorf("record %d source = %q, want arXiv", i, r.Source)
		}
		if !strings.HasPrefix(r.Link, "http://arxiv.org/pdf/") {
			t.Errorf("record %d link = %q, want PDF link under arxiv.org", i, r.Link)
		}
		if !strings.HasPrefix(r.CitationsOrMeta, "Published: 2023-01-1") {
			t.Errorf("record %d meta = %q", i, r.CitationsOrMeta)
		}
	}
	// Whitespace runs in titles and abstracts are collapsed.
	if records[0].Title != "Deep Learning Paper 0" {
		t.Errorf("title = %q", records[0].Title)
	}
	if records[0].Authors != "Alice Smith, Bob Jones" {
		t.Errorf("authors = %q", records[0].Authors)
	}
}

func TestArxivFetchNoMatches(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, arxivFixture(0))
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	a := &Arxiv{Client: ts.Client(), Log: testLog()}
	records, err := a.Fetch(context.Background(), "xyzzyunlikelyterm12345", 20, testCfg())
	if err != nil {
		t.Fatalf("no matches should not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestArxivFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	a := &Arxiv{Client: ts.Client(), Log: testLog()}
	_, err := a.Fetch(context.Background(), "quantum", 10, testCfg())

	var se *SourceError
	if !errors.As(err, &se) || se.Kind != KindHTTP {
		t.Fatalf("err = %v, want SourceError with KindHTTP", err)
	}
}

func TestArxivFetchMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not xml at all <<<")
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	a := &Arxiv{Client: ts.Client(), Log: testLog()}
	_, err := a.Fetch(context.Background(), "quantum", 10, testCfg())

	var se *SourceError
	if !errors.As(err, &se) || se.Kind != KindParse {
		t.Fatalf("err = %v, want SourceError with KindParse", err)
	}
}

func TestArxivFetchFallbacks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom">
			<entry><id>http://arxiv.org/abs/9999.9</id></entry></feed>`)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	a := &Arxiv{Client: ts.Client(), Log: testLog()}
	records, err := a.Fetch(context.Background(), "sparse entry", 1, testCfg())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	if r.Title != "No title available" || r.Authors != "No author information" || r.Abstract != "No abstract available" {
		t.Errorf("fallbacks not applied: %+v", r)
	}
}

func TestArxivFetchEmptyQuery(t *testing.T) {
	a := &Arxiv{Client: http.DefaultClient, Log: testLog()}
	if _, err := a.Fetch(context.Background(), "  ", 10, testCfg()); err == nil {
		t.Fatal("empty query should fail")
	}
}

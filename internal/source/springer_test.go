// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roodylabs/paperscout/pkg/types"
)

const springerFixture = `<html><body><ol>
<li class="has-cover">
  <h2><a href="/article/10.1007/s42452-021-0001">Materials Science Advances</a></h2>
  <span class="content-type">Article</span>
  <span class="authors__name">O. Oh</span>
  <span class="authors__name">P. Pea</span>
  <p class="meta">Published 12 March 2021</p>
</li>
<li class="has-cover">
  <h2><a href="https://link.springer.com/chapter/10.1007/xyz">A Book Chapter</a></h2>
</li>
</ol></body></html>`

func TestSpringerFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "materials" {
			t.Errorf("query = %q", got)
		}
		fmt.Fprint(w, springerFixture)
	}))
	defer ts.Close()

	old := springerBase
	springerBase = ts.URL
	defer func() { springerBase = old }()

	s := &Springer{Client: ts.Client(), Log: testLog()}
	records, err := s.Fetch(context.Background(), "materials", 10, testCfg())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	r := records[0]
	if r.Link != "https://link.springer.com/article/10.1007/s42452-021-0001" {
		t.Errorf("link = %q", r.Link)
	}
	if r.Authors != "O. Oh, P. Pea" {
		t.Errorf("authors = %q", r.Authors)
	}
	if r.CitationsOrMeta != "Article | Published 12 March 2021" {
		t.Errorf("meta = %q", r.CitationsOrMeta)
	}
	if r.Abstract != springerAbstractNote {
		t.Errorf("abstract = %q", r.Abstract)
	}

	// Entry with no type/date still carries the placeholder meta.
	if records[1].CitationsOrMeta != "Content type not specified | Date not available" {
		t.Errorf("sparse meta = %q", records[1].CitationsOrMeta)
	}
	if records[1].Authors != types.NoAuthors {
		t.Errorf("sparse authors = %q", records[1].Authors)
	}
}

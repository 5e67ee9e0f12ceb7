// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpx

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// BrowserIdentities is the fixed pool of client-identity strings rotated by
// adapters whose sites reject non-browser clients. The first entry is the
// default identity; retries cycle through the alternates.
var BrowserIdentities = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36 Edg/113.0.1774.57",
}

// RotationDelayMin and RotationDelayMax bound the randomized pause before a
// rotated retry. Tests override these to avoid real sleeps.
var (
	RotationDelayMin = 3 * time.Second
	RotationDelayMax = 7 * time.Second
)

// Denied reports whether a response looks like an anti-scraping block:
// HTTP 403, or a redirect to an "unsupported browser" interstitial (the
// check ScienceDirect uses).
func Denied(resp *http.Response) bool {
	if resp.StatusCode == http.StatusForbidden {
		return true
	}
	// After redirects resp.Request holds the final URL.
	if resp.Request != nil && resp.Request.URL != nil {
		return strings.Contains(resp.Request.URL.String(), "unsupported_browser")
	}
	return false
}

// DoWithIdentityRotation executes req, and on an access-denial response
// retries with the next User-Agent from identities (and a Referer swap to
// look like a search-engine visit), up to maxAttempts total attempts with a
// randomized pause between them. The last denied response is returned so
// the caller can classify the failure; transport errors abort immediately.
func DoWithIdentityRotation(ctx context.Context, client *http.Client, req *http.Request, identities []string, maxAttempts int) (*http.Response, error) {
	if len(identities) == 0 {
		identities = BrowserIdentities
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var resp *http.Response
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			drain(resp)
			if err := SleepJitter(ctx, RotationDelayMin, RotationDelayMax); err != nil {
				return nil, err
			}
		}

		r := req.Clone(ctx)
		r.Header.Set("User-Agent", identities[attempt%len(identities)])
		if attempt > 0 {
			r.Header.Set("Referer", "https://scholar.google.com/")
		}

		var err error
		resp, err = client.Do(r)
		if err != nil {
			return nil, err
		}
		if !Denied(resp) {
			return resp, nil
		}
	}
	return resp, nil
}

// SleepJitter pauses for a random duration in [min, max], or returns early
// with ctx.Err() when the context is cancelled. A non-positive range is a
// no-op so tests and tight loops can disable delays.
func SleepJitter(ctx context.Context, min, max time.Duration) error {
	if max <= 0 {
		return nil
	}
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

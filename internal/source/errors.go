// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"

	"github.com/roodylabs/paperscout/pkg/types"
)

// ErrorKind classifies an adapter failure. Every kind is contained at the
// aggregator boundary; the kind only drives logging and diagnostics.
type ErrorKind string

const (
	// KindNetwork covers timeouts and connection failures.
	KindNetwork ErrorKind = "network"
	// KindHTTP covers non-2xx status responses.
	KindHTTP ErrorKind = "http"
	// KindParse covers responses missing the expected structure.
	KindParse ErrorKind = "parse"
	// KindAccessDenied covers anti-scraping blocks that survived the
	// identity-rotation retries.
	KindAccessDenied ErrorKind = "access_denied"
	// KindConfig covers missing keys or invalid strategy settings.
	KindConfig ErrorKind = "config"
)

// SourceError is the error type adapters return. It carries the source,
// the failure kind, and the underlying cause.
type SourceError struct {
	Source types.Source
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func networkErr(src types.Source, err error) error {
	return &SourceError{Source: src, Kind: KindNetwork, Err: err}
}

func httpErr(src types.Source, status int) error {
	return &SourceError{Source: src, Kind: KindHTTP, Err: fmt.Errorf("unexpected HTTP %d", status)}
}

func parseErr(src types.Source, err error) error {
	return &SourceError{Source: src, Kind: KindParse, Err: err}
}

func accessDeniedErr(src types.Source, attempts int) error {
	return &SourceError{Source: src, Kind: KindAccessDenied, Err: fmt.Errorf("blocked after %d attempts", attempts)}
}

func configErr(src types.Source, err error) error {
	return &SourceError{Source: src, Kind: KindConfig, Err: err}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/httpx"
	"github.com/roodylabs/paperscout/pkg/types"
)

func init() {
	// No real sleeps in tests.
	httpx.RotationDelayMin = 0
	httpx.RotationDelayMax = time.Millisecond
	httpx.RetryBaseDelay = time.Millisecond
}

// testCfg returns a SearchConfig with all courtesy delays disabled.
func testCfg() types.SearchConfig {
	cfg := types.DefaultSearchConfig()
	cfg.InterSourceDelay = 0
	cfg.PageDelay = 0
	cfg.UserAgent = "paperscout-test/0.1"
	return cfg
}

func testLog() *zap.Logger { return zap.NewNop() }

// allFieldsSet reports whether every text field of r is non-empty.
func allFieldsSet(r types.PaperRecord) bool {
	return r.Title != "" && r.Authors != "" && r.Abstract != "" &&
		r.CitationsOrMeta != "" && r.Source != ""
}

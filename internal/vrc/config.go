package vrc

import "go.uber.org/zap"

// Config captures every tunable that the original source reads from
// process-wide environment variables (VRC_NOISY, VRC_DUMP_TILE,
// VRC_DUMP_PNG, VRC_MAX_SIZE). It is built once by the host and passed to
// Open; nothing in the decode hot path consults ambient process state.
type Config struct {
	// Noisy enables Info-level diagnostic logging for soft-check mismatches
	// and other Diagnostic-kind conditions (VRC_NOISY equivalent).
	Noisy bool
	// DumpDir, if non-empty, is where a host could write intermediate
	// PPM/PNG artefacts (VRC_DUMP_TILE/VRC_DUMP_PNG equivalent). The core
	// never writes there itself — dump-to-disk helpers are an external
	// collaborator — but components accept this field so a host
	// integration can opt in without the core reading the environment.
	DumpDir string
	// MaxSize caps the PNG reconstruction scratch buffer in bytes; 0 means
	// no cap (VRC_MAX_SIZE equivalent).
	MaxSize int64
	// CacheSize bounds the decoded sub-tile LRU; 0 selects a default.
	CacheSize int
	// Logger receives Diagnostic and Recoverable notices. A nil Logger is
	// replaced with a no-op logger at Open.
	Logger *zap.SugaredLogger
}

const defaultCacheSize = 256

func (c Config) normalized() Config {
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	return c
}

func (c Config) logDiagnostic(op, msg string, fields ...interface{}) {
	if !c.Noisy {
		return
	}
	c.Logger.Infow(msg, append([]interface{}{"op", op}, fields...)...)
}

func (c Config) logRecoverable(op, msg string, fields ...interface{}) {
	c.Logger.Warnw(msg, append([]interface{}{"op", op}, fields...)...)
}

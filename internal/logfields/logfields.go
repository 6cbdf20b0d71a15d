package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyMode       = "mode"
	KeyChunk      = "chunk"
	KeyFile       = "file"
	KeyExtension  = "extension"
	KeyAsset      = "asset"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Chunk(name string) slog.Attr     { return slog.String(KeyChunk, name) }
func File(name string) slog.Attr      { return slog.String(KeyFile, name) }
func Extension(ext string) slog.Attr  { return slog.String(KeyExtension, ext) }
func Asset(name string) slog.Attr     { return slog.String(KeyAsset, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

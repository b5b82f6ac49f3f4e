package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyLocale     = "locale"
	KeyQuery      = "query"
	KeySnapshotID = "snapshot_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyFile       = "file"
	KeyError      = "error"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Locale(l string) slog.Attr      { return slog.String(KeyLocale, l) }
func Query(q string) slog.Attr       { return slog.String(KeyQuery, q) }
func SnapshotID(id string) slog.Attr { return slog.String(KeySnapshotID, id) }
func Stage(name string) slog.Attr    { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func File(f string) slog.Attr        { return slog.String(KeyFile, f) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr  { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr  { return slog.String(KeyUserAgent, ua) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Package logfields holds the canonical slog attribute keys used across pubsite.
package logfields

import (
	"log/slog"
	"time"
)

const (
	KeySource     = "source"
	KeyOutput     = "output"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

func Source(path string) slog.Attr { return slog.String(KeySource, path) }
func Output(path string) slog.Attr { return slog.String(KeyOutput, path) }
func Pages(n int) slog.Attr        { return slog.Int(KeyPages, n) }
func Addr(addr string) slog.Attr   { return slog.String(KeyAddr, addr) }
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(KeyDurationMS, d.Milliseconds())
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

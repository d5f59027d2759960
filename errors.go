/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"log"
	"net/http"
	"time"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// sessionLogger adapts logf for a session's controller, tagging each line
// with the session ID.
func sessionLogger(cfg *Config, id string) func(format string, args ...any) {
	return func(format string, args ...any) {
		logf(cfg, format+" [%s]", append(args, id)...)
	}
}

func serverError(cfg *Config, w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := errorPage(cfg, http.StatusText(status), message).Render(r.Context(), w); err != nil {
		logf(cfg, "ERROR: %v", err)
	}
}

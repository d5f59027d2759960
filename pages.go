/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func pageHead(cfg *Config, title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			`<!DOCTYPE html><html lang="en"><head>`,
			`<meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			getFavicon(cfg),
			`<link rel="stylesheet" href="`, templ.EscapeString(cfg.prefix), `/assets/quiz/app.css">`,
			`<title>`, templ.EscapeString(title), `</title></head>`,
		)
	})
}

// sessionPage is the shell the browser client fills in over the websocket.
func sessionPage(cfg *Config, sessionID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := pageHead(cfg, "Who said it?").Render(ctx, w); err != nil {
			return err
		}

		base := templ.EscapeString(cfg.prefix + quizPath + "/" + sessionID)

		return write(w,
			`<body data-ws="`, base, `/ws">`,
			`<header><h1>Who said it?</h1>`,
			`<span id="score">Score: 0/0</span>`,
			`<button id="share" type="button">Share</button></header>`,
			`<main>`,
			`<blockquote id="quote">Loading quotes…</blockquote>`,
			`<ol id="options"></ol>`,
			`<p id="status" role="status"></p>`,
			`</main>`,
			`<dialog id="qr"><img src="`, base, `/qr" alt="QR code for this session" width="320" height="320">`,
			`<form method="dialog"><button>Close</button></form></dialog>`,
			`<script src="`, templ.EscapeString(cfg.prefix), `/assets/quiz/app.js"></script>`,
			`</body></html>`,
		)
	})
}

func errorPage(cfg *Config, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := pageHead(cfg, title).Render(ctx, w); err != nil {
			return err
		}

		return write(w,
			`<body class="error">`,
			`<a href="`, templ.EscapeString(cfg.prefix), `/">`, templ.EscapeString(message), `</a></body></html>`,
		)
	})
}

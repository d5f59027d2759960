// Who Said It, browser sessions
//
// Every session gets its own URL, its own score and its own round sequence,
// and may be watched by any number of browsers at once. All of them see the
// same round and any of them may answer it.
//
// Features:
// - WebSockets per session ID: /quiz/:session and /quiz/:session/ws
// - One hub goroutine per session owns the game controller and runs all of
//   its timed continuations, so game state is never shared between goroutines
// - Late joiners are caught up with the current round and score
// - Forged or stale selections are ignored by the controller
// - Sessions share one quote store, so later sessions rarely wait for quotes
// - Sessions are reaped after a configurable idle timeout
// - Random 8-char session IDs via crypto/rand, with server-side collision check
// - In-browser share button backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/whosaid/internal/game"
	"github.com/Seednode/whosaid/internal/quotes"
	"github.com/Seednode/whosaid/internal/round"
	"github.com/Seednode/whosaid/internal/source"
)

const (
	quizPath         = "/quiz"
	playerCookieName = "whosaid_id"
	sessionIDLength  = 8
	maxMessageSize   = 1024
	qrSize           = 320
)

// ClientMessage is the only thing browsers send: a pick.
type ClientMessage struct {
	Type      string `json:"type"` // "select"
	Character string `json:"character,omitempty"`
}

// SessionInfoMessage is sent first on every connect.
type SessionInfoMessage struct {
	Type    string `json:"type"` // "session_info"
	Session string `json:"session"`
	Phase   string `json:"phase"`
	Viewers int    `json:"viewers"`
}

type RoundMessage struct {
	Type    string      `json:"type"` // "round"
	Quote   string      `json:"quote"`
	Options []string    `json:"options"`
	Cards   []game.Card `json:"cards"`
}

type HighlightMessage struct {
	Type     string `json:"type"` // "highlight"
	Correct  string `json:"correct"`
	Selected string `json:"selected"`
}

type ExitMessage struct {
	Type  string `json:"type"` // "exit"
	Order []int  `json:"order"`
}

type ExitSlotMessage struct {
	Type string `json:"type"` // "exit_slot"
	Slot int    `json:"slot"`
}

type ScoreMessage struct {
	Type  string `json:"type"` // "score"
	Score int    `json:"score"`
	Asked int    `json:"asked"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type selectRequest struct {
	client    *Client
	character string
}

// Hub is one session. Its run goroutine is the only one that touches the
// controller or the client set; it is also the controller's game.Presenter.
type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	selects  chan selectRequest

	loop    *game.Loop
	ctrl    *game.Controller
	failure string

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

var _ game.Presenter = (*Hub)(nil)

func newHub(ctx context.Context, cfg *Config, id string, store *quotes.Store, loader source.Loader) *Hub {
	ctx, cancel := context.WithCancel(ctx)

	now := time.Now()
	h := &Hub{
		id:         id,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		selects:    make(chan selectRequest),
		loop:       game.NewLoop(),
		ctx:        ctx,
		cancel:     cancel,
		createdAt:  now,
		lastActive: now,
	}

	h.ctrl = game.NewController(game.Config{
		Store:     store,
		Loader:    loader,
		Generator: round.NewGenerator(nil),
		Scheduler: h.loop,
		Presenter: h,
		Options:   cfg.gameOptions(),
		Logf:      sessionLogger(cfg, id),
	})

	return h
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

func (h *Hub) stop() {
	h.cancel()
}

func (h *Hub) run(cfg *Config) {
	defer h.closeAll()

	h.ctrl.Start(h.ctx)

	for {
		select {
		case c := <-h.register:
			h.touch()
			h.clients[c] = true
			h.catchUp(c)

			logf(cfg, "GAMES: Player %s joined session %s (%d connected)", c.playerID, h.id, len(h.clients))

		case c := <-h.unreg:
			h.touch()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

			logf(cfg, "GAMES: Player %s left session %s (%d connected)", c.playerID, h.id, len(h.clients))

		case req := <-h.selects:
			h.touch()
			if h.ctrl.Select(req.character) {
				logf(cfg, "GAMES: Player %s picked %q in session %s", req.client.playerID, req.character, h.id)
			}

		case fn := <-h.loop.Tasks():
			fn()

		case <-h.ctx.Done():
			logf(cfg, "GAMES: Ended session %s after %s", h.id, time.Since(h.createdAt).Round(time.Second))

			return
		}
	}
}

// catchUp sends a newly registered client everything the others have seen.
func (h *Hub) catchUp(c *Client) {
	snap := h.ctrl.Snapshot()

	h.sendTo(c, SessionInfoMessage{
		Type:    "session_info",
		Session: h.id,
		Phase:   snap.Phase.String(),
		Viewers: len(h.clients),
	})
	if snap.HasRound {
		h.sendTo(c, newRoundMessage(snap.Round, snap.Cards))
	}
	if snap.Resolved {
		h.sendTo(c, HighlightMessage{Type: "highlight", Correct: snap.Result.Correct, Selected: snap.Result.Selected})
	}
	h.sendTo(c, ScoreMessage{Type: "score", Score: snap.Score, Asked: snap.Asked})
	if snap.Phase == game.Failed {
		h.sendTo(c, ErrorMessage{Type: "error", Message: h.failure})
	}
}

// sendTo drops a client whose buffer is full rather than stall the session.
func (h *Hub) sendTo(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

// closeAll disconnects every client and stops the session's scheduler.
func (h *Hub) closeAll() {
	h.loop.Stop()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func newRoundMessage(r round.Round, cards []game.Card) RoundMessage {
	return RoundMessage{
		Type:    "round",
		Quote:   r.Quote,
		Options: r.Options,
		Cards:   cards,
	}
}

func (h *Hub) Render(r round.Round, cards []game.Card) {
	h.broadcast(newRoundMessage(r, cards))
}

func (h *Hub) Highlight(correct, selected string) {
	h.broadcast(HighlightMessage{Type: "highlight", Correct: correct, Selected: selected})
}

func (h *Hub) AnimateExit(order []int) {
	h.broadcast(ExitMessage{Type: "exit", Order: order})
}

func (h *Hub) ExitSlot(slot int) {
	h.broadcast(ExitSlotMessage{Type: "exit_slot", Slot: slot})
}

func (h *Hub) UpdateScore(score, asked int) {
	h.broadcast(ScoreMessage{Type: "score", Score: score, Asked: asked})
}

func (h *Hub) Fail(err error) {
	h.failure = "Something went wrong: " + err.Error()
	if errors.Is(err, game.ErrLoadExhausted) {
		h.failure = "Could not load enough quotes to play. Please try a new game later."
	}
	h.broadcast(ErrorMessage{Type: "error", Message: h.failure})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// playerID returns the ID from the player cookie, or a fresh one.
func playerID(r *http.Request) (id string, known bool) {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), true
		}
	}

	return uuid.NewString(), false
}

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	id, known := playerID(r)
	if known {
		return id
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     cfg.prefix + "/",
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by session ID, so each
// /quiz/:session is its own isolated game.
type GameManager struct {
	cfg    *Config
	ctx    context.Context
	store  *quotes.Store
	loader source.Loader

	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
}

func newGameManager(ctx context.Context, cfg *Config, store *quotes.Store, loader source.Loader) *GameManager {
	gm := &GameManager{
		cfg:         cfg,
		ctx:         ctx,
		store:       store,
		loader:      loader,
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(id string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[id]; ok {
		return hub
	}

	hub := newHub(gm.ctx, gm.cfg, id, gm.store, gm.loader)
	gm.hubs[id] = hub
	go hub.run(gm.cfg)

	logf(gm.cfg, "GAMES: Started session %s (%d running)", id, len(gm.hubs))

	return hub
}

func (gm *GameManager) sessions() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return len(gm.hubs)
}

const sessionAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func validSessionID(id string) bool {
	if len(id) != sessionIDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(sessionAlphabet, r) {
			return false
		}
	}
	return true
}

// newGameID returns an unused session ID. rand.Text draws from the same
// base32 alphabet validSessionID accepts.
func (gm *GameManager) newGameID() string {
	for {
		id := rand.Text()[:sessionIDLength]

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap stops every hub idle since before now minus the idle timeout and
// returns how many it stopped.
func (gm *GameManager) reap(now time.Time) int {
	cutoff := now.Add(-gm.idleTimeout)

	gm.mu.Lock()
	defer gm.mu.Unlock()

	reaped := 0
	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			hub.stop()
			reaped++
		}
	}

	return reaped
}

func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := gm.reap(now); n > 0 {
				logf(gm.cfg, "GAMES: Reaped %d idle sessions", n)
			}
		case <-gm.ctx.Done():
			return
		}
	}
}

func (gm *GameManager) closeAll() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

func serveWS(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("session")
		if !validSessionID(id) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}

		player, _ := playerID(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade for session %s failed [%s]: %v", id, requestID(r), err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: player,
		}

		hub := gm.getHub(id)

		select {
		case hub.register <- client:
		case <-hub.ctx.Done():
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type != "select" {
			continue
		}

		select {
		case h.selects <- selectRequest{client: c, character: msg.Character}:
		case <-h.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveQR renders a PNG QR code pointing at the session page.
func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id := ps.ByName("session")
		if !validSessionID(id) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + quizPath + "/" + id

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code for session %s (%s) to %s in %s [%s]",
			id,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
			requestID(r),
		)
	}
}

func serveSession(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		id := ps.ByName("session")
		if !validSessionID(id) {
			serverError(cfg, w, r, http.StatusNotFound, "No such game. Start a new one?")
			return
		}

		_ = getOrSetPlayerID(cfg, w, r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		// Portraits come from the quote source's host.
		w.Header().Del("Cross-Origin-Embedder-Policy")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; connect-src 'self' ws://"+r.Host+" wss://"+r.Host)

		if err := sessionPage(cfg, id).Render(r.Context(), w); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Session page %s to %s in %s [%s]",
			id,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
			requestID(r),
		)
	}
}

// redirectNewGame handles GET /quiz by generating a new session ID and
// redirecting to /quiz/:session.
func redirectNewGame(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := gm.newGameID()

		logf(cfg, "GAMES: Created session %s for %s [%s]", id, realIP(r), requestID(r))

		http.Redirect(w, r, cfg.prefix+quizPath+"/"+id, http.StatusTemporaryRedirect)
	}
}

// registerQuiz sets up routes so that:
//   - /quiz                → redirects to a new session
//   - /quiz/:session       → HTML client
//   - /quiz/:session/ws    → WebSocket for that session
//   - /quiz/:session/qr    → PNG QR code for that session's URL
func registerQuiz(cfg *Config, mux *httprouter.Router, gm *GameManager, errs chan<- error) {
	mux.GET(cfg.prefix+quizPath, redirectNewGame(cfg, gm))
	mux.GET(cfg.prefix+quizPath+"/:session", serveSession(cfg, errs))
	mux.GET(cfg.prefix+quizPath+"/:session/ws", serveWS(cfg, gm))
	mux.GET(cfg.prefix+quizPath+"/:session/qr", serveQR(cfg, errs))
}

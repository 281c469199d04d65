/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Is this kimchi?
//
// A deck of food photos is dealt to each player, one card at a time. The
// player calls each card "kimchi" or "not kimchi" against the clock.
//
// - Survival: 5 seconds per card, reset on every correct answer; one wrong
//   answer ends the round and reveals what the card really was
// - Time attack: 30 seconds for the whole round; wrong answers cost 2 points
//   (never below zero)
// - Scores go to a per-mode hall of fame, one entry per nickname, best score kept
//
// Every player has their own websocket and session. The server owns all game
// state and sends the browser a fully rendered, localized state message after
// every event, including each tick of the one-second timer.

package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "start", "answer", "leaderboard", "retry", "submit", "menu", "language"
	Mode     string `json:"mode,omitempty"`     // start / leaderboard
	Kimchi   *bool  `json:"kimchi,omitempty"`   // answer
	Nickname string `json:"nickname,omitempty"` // submit
	Lang     string `json:"lang,omitempty"`     // language
}

// toEvent maps a client message to a session event. Malformed messages map
// to nothing.
func (m ClientMessage) toEvent() (Event, bool) {
	switch m.Type {
	case "start":
		return StartEvent{Mode: Mode(m.Mode)}, true
	case "answer":
		if m.Kimchi == nil {
			return nil, false
		}
		return AnswerEvent{Kimchi: *m.Kimchi}, true
	case "leaderboard":
		return LeaderboardEvent{Mode: Mode(m.Mode)}, true
	case "retry":
		return RetryEvent{}, true
	case "submit":
		return SubmitEvent{Nickname: m.Nickname}, true
	case "menu":
		return MenuEvent{}, true
	}
	return nil, false
}

// CardView is a card as the client sees it. While playing only the image is
// sent, so the answer cannot be read off the wire.
type CardView struct {
	ImageURL    string `json:"image_url"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

type BoardRow struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// StateMessage is the whole screen, sent after every event.
type StateMessage struct {
	Type      string            `json:"type"` // "state"
	View      View              `json:"view"`
	Lang      Lang              `json:"lang"`
	Mode      Mode              `json:"mode"`
	Score     int               `json:"score"`
	Time      int               `json:"time_remaining"`
	ScoreText string            `json:"score_text"`
	TimeText  string            `json:"time_text,omitempty"`
	Final     string            `json:"final_text,omitempty"`
	Card      *CardView         `json:"card,omitempty"`
	Reveal    *CardView         `json:"reveal,omitempty"`
	Notice    string            `json:"notice,omitempty"`
	BoardMode Mode              `json:"board_mode,omitempty"`
	Board     []BoardRow        `json:"board,omitempty"`
	Labels    map[string]string `json:"labels"`
}

func render(s Session, tr *Translator) StateMessage {
	lang := tr.Lang()

	msg := StateMessage{
		Type:      "state",
		View:      s.View,
		Lang:      lang,
		Mode:      s.Mode,
		Score:     s.Score,
		Time:      s.TimeRemaining,
		ScoreText: tr.T(MsgScore, s.Score),
		Labels:    tr.Labels(),
	}

	switch s.View {
	case ViewPlaying:
		msg.TimeText = tr.T(MsgTimeLeft, s.TimeRemaining)
		if card, ok := s.Deck.Front(); ok {
			msg.Card = &CardView{ImageURL: card.ImageURL}
		}

	case ViewGameOver:
		msg.Final = tr.T(MsgFinalScore, s.Score)
		if s.Reveal != nil {
			msg.Reveal = &CardView{
				ImageURL:    s.Reveal.ImageURL,
				Caption:     tr.T(MsgReveal, s.Reveal.Name.In(lang)),
				Description: s.Reveal.Description.In(lang),
			}
		}

	case ViewLeaderboard:
		msg.BoardMode = s.BoardMode
		msg.Board = []BoardRow{}
		for i, e := range s.Board.Top(s.BoardMode, leaderboardSize) {
			msg.Board = append(msg.Board, BoardRow{Rank: i + 1, Nickname: e.Nickname, Score: e.Score})
		}
	}

	if s.Notice != "" {
		if s.NoticeCard != nil {
			msg.Notice = tr.T(s.Notice, s.NoticeCard.Name.In(lang))
		} else {
			msg.Notice = tr.T(s.Notice)
		}
	}

	return msg
}

type inbound struct {
	event Event
	lang  Lang
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	inbound  chan inbound
	done     chan struct{}
	identity PlayerIdentity
}

// Game wires sessions to the shared catalog and score store.
type Game struct {
	ctx    context.Context
	cfg    *Config
	lib    *Library
	store  ScoreStore
	signer *TokenSigner
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const maxMessageSize = 1024

func (g *Game) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		identity, err := g.signer.identify(g.cfg, w, r)
		if err != nil {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(g.cfg, "ERROR: Websocket upgrade for %s failed: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			inbound:  make(chan inbound, 8),
			done:     make(chan struct{}),
			identity: identity,
		}

		logf(g.cfg, "GAMES: Player %s connected from %s", identity.ID, realIP(r))

		go client.writePump(g.cfg)
		go g.play(client)
		client.readPump(g.cfg)

		logf(g.cfg, "GAMES: Player %s disconnected", identity.ID)
	}
}

// play is the only goroutine touching the player's session. Ticks and
// client events are handled one at a time.
func (g *Game) play(c *Client) {
	defer func() {
		close(c.done)
		close(c.send)
	}()

	m := newMachine(g.lib.Dealer(newRand(), g.cfg.sampleSize), g.store)
	tr := newTranslator(c.identity.Lang)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
		starts int
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	syncTimer := func() {
		switch {
		case m.TimerActive() && (ticker == nil || m.TimerStarts() != starts):
			if ticker != nil {
				ticker.Stop()
			}
			ticker = time.NewTicker(time.Second)
			tick, starts = ticker.C, m.TimerStarts()
		case !m.TimerActive() && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}

	dispatch := func(ev Event) {
		before := m.Session()

		if err := m.Dispatch(g.ctx, ev); err != nil {
			logf(g.cfg, "GAMES: Player %s: %v", c.identity.ID, err)
		}
		syncTimer()

		after := m.Session()
		if after.View != before.View {
			logf(g.cfg, "GAMES: Player %s %s -> %s (%s, score %d)", c.identity.ID, before.View, after.View, after.Mode, after.Score)
		}

		c.send <- render(after, tr)
	}

	c.send <- render(m.Session(), tr)

	for {
		select {
		case <-g.ctx.Done():
			return

		case in, ok := <-c.inbound:
			if !ok {
				return
			}

			if in.lang != "" {
				tr = newTranslator(in.lang)
				c.send <- render(m.Session(), tr)
				continue
			}

			dispatch(in.event)

		case <-tick:
			dispatch(TickEvent{})
		}
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), int(math.Ceil(perSecond))*2)
}

func (c *Client) readPump(cfg *Config) {
	defer func() {
		close(c.inbound)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	limiter := newLimiter(cfg.messageRate)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !limiter.Allow() {
			logf(cfg, "GAMES: Player %s is sending too fast, dropped %q", c.identity.ID, msg.Type)
			continue
		}

		var in inbound
		if msg.Type == "language" {
			lang, ok := ParseLang(msg.Lang)
			if !ok {
				continue
			}
			in.lang = lang
		} else {
			ev, ok := msg.toEvent()
			if !ok {
				continue
			}
			in.event = ev
		}

		select {
		case c.inbound <- in:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump(cfg *Config) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.writeTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			// Keep draining so the session goroutine never blocks on a dead client.
			for range c.send {
			}
			return
		}
	}
}

// QR handler: generates a PNG QR code for the game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

// serveLanguage stores the player's language choice in their cookie.
func (g *Game) serveLanguage() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		lang, ok := ParseLang(p.ByName("lang"))
		if !ok {
			http.Error(w, "unsupported language", http.StatusBadRequest)
			return
		}

		identity, _, err := g.signer.resolve(r)
		if err != nil {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		identity.Lang = lang
		if err := g.signer.setCookie(g.cfg, w, identity); err != nil {
			http.Error(w, "unable to store language", http.StatusInternalServerError)
			return
		}

		securityHeaders(g.cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// serveCard streams a card image by its opaque token.
func (g *Game) serveCard() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		file := p.ByName("file")
		token, _, _ := strings.Cut(file, ".")

		root, name, ok := g.lib.Resolve(token)
		if !ok || !isImageFile(name) {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(g.cfg, w)

		http.ServeFileFS(w, r, os.DirFS(root), name)

		logf(g.cfg, "SERVE: Card %s to %s in %s",
			file,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveLeaderboard returns the stored leaderboard as JSON. Scores are only
// ever recorded by a finished session, never posted directly.
func (g *Game) serveLeaderboard() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		board, err := g.store.Load(r.Context())
		if err != nil {
			logf(g.cfg, "ERROR: Loading leaderboard for %s failed: %v", realIP(r), err)
			http.Error(w, "unable to load leaderboard", http.StatusInternalServerError)
			return
		}

		data, err := json.Marshal(board.normalized())
		if err != nil {
			http.Error(w, "unable to encode leaderboard", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(g.cfg, w)

		written, err := w.Write(data)
		if err != nil {
			logf(g.cfg, "ERROR: Writing leaderboard to %s failed: %v", realIP(r), err)
			return
		}

		logf(g.cfg, "SERVE: Leaderboard (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// registerKimchiGame sets up routes so that:
//   - $prefix/           → HTML client
//   - $prefix/ws         → websocket, one session per connection
//   - $prefix/qr         → PNG QR code for the game URL
//   - $prefix/lang/:lang → remembers the language toggle
//   - $prefix/cards/:file → card images
//   - $prefix/api/leaderboard → read-only leaderboard JSON
func registerKimchiGame(g *Game, mux *httprouter.Router) {
	cfg := g.cfg

	mux.GET(cfg.prefix+"/ws", g.serveWS())
	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))
	mux.POST(cfg.prefix+"/lang/:lang", g.serveLanguage())
	mux.GET(cfg.prefix+"/cards/:file", g.serveCard())
	mux.GET(cfg.prefix+"/api/leaderboard", g.serveLeaderboard())
}

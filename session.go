/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "strings"

// Mode selects the scoring rules for a round.
type Mode string

const (
	ModeSurvival   Mode = "survival"
	ModeTimeAttack Mode = "time_attack"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSurvival, ModeTimeAttack:
		return Mode(s), true
	}
	return "", false
}

const (
	survivalSeconds   = 5
	timeAttackSeconds = 30
	timeAttackPenalty = 2
	refillThreshold   = 5
)

// initialTime is the countdown a round starts with. In survival it is also
// the value restored after every correct answer.
func (m Mode) initialTime() int {
	if m == ModeTimeAttack {
		return timeAttackSeconds
	}
	return survivalSeconds
}

// View is the screen a session is on.
type View string

const (
	ViewMenu        View = "menu"
	ViewPlaying     View = "playing"
	ViewGameOver    View = "gameover"
	ViewLeaderboard View = "leaderboard"
	ViewNoContent   View = "nocontent"
)

// Session is one player's game state.
type Session struct {
	View          View
	Mode          Mode
	Score         int
	TimeRemaining int
	Deck          Deck
	Reveal        *Card

	BoardMode Mode
	Board     ScoreBoard

	Notice     Message
	NoticeCard *Card
}

func NewSession() Session {
	return Session{View: ViewMenu, Mode: ModeSurvival, BoardMode: ModeSurvival}
}

type TimerCommand int

const (
	TimerKeep TimerCommand = iota
	TimerStart
	TimerStop
)

type DealCommand int

const (
	DealNone DealCommand = iota
	DealNew
	DealMore
)

// Effect lists the side effects a transition asks the driver to perform.
type Effect struct {
	Timer     TimerCommand
	Deal      DealCommand
	Submit    *ScoreEntry
	LoadBoard bool
}

// Event is anything that can move a session.
type Event interface {
	event()
}

type (
	StartEvent       struct{ Mode Mode }
	TickEvent        struct{}
	AnswerEvent      struct{ Kimchi bool }
	LeaderboardEvent struct{ Mode Mode }
	RetryEvent       struct{}
	SubmitEvent      struct{ Nickname string }
	MenuEvent        struct{}

	DealtEvent struct {
		Cards Deck
		Fresh bool
	}
	SubmittedEvent struct {
		Board ScoreBoard
		Err   error
	}
	BoardLoadedEvent struct {
		Board ScoreBoard
		Err   error
	}
)

func (StartEvent) event()       {}
func (TickEvent) event()        {}
func (AnswerEvent) event()      {}
func (LeaderboardEvent) event() {}
func (RetryEvent) event()       {}
func (SubmitEvent) event()      {}
func (MenuEvent) event()        {}
func (DealtEvent) event()       {}
func (SubmittedEvent) event()   {}
func (BoardLoadedEvent) event() {}

// Reduce applies ev to s. It never performs I/O: decks, persistence and the
// timer are requested through the returned Effect. Events that do not apply
// to the current view return s unchanged.
func Reduce(s Session, ev Event) (Session, Effect) {
	// Notices last until the next player or timer event; driver feedback
	// belongs to the same step and keeps them.
	switch ev.(type) {
	case DealtEvent, SubmittedEvent, BoardLoadedEvent:
	default:
		s.Notice, s.NoticeCard = "", nil
	}

	switch ev := ev.(type) {
	case StartEvent:
		if s.View != ViewMenu {
			return s, Effect{}
		}
		return start(s, ev.Mode)

	case RetryEvent:
		if s.View != ViewGameOver {
			return s, Effect{}
		}
		return start(s, s.Mode)

	case DealtEvent:
		return dealt(s, ev)

	case TickEvent:
		if s.View != ViewPlaying {
			return s, Effect{}
		}
		s.TimeRemaining--
		if s.TimeRemaining <= 0 {
			s.TimeRemaining = 0
			if s.Mode == ModeSurvival {
				if card, ok := s.Deck.Front(); ok {
					s.Reveal = &card
				}
			}
			s.Notice = MsgTimeUp
			return gameOver(s)
		}
		return s, Effect{}

	case AnswerEvent:
		return answer(s, ev.Kimchi)

	case LeaderboardEvent:
		mode, ok := ParseMode(string(ev.Mode))
		if !ok {
			mode = s.Mode
		}

		switch s.View {
		case ViewMenu, ViewGameOver, ViewLeaderboard:
			s.View, s.BoardMode = ViewLeaderboard, mode
			return s, Effect{LoadBoard: true}
		case ViewPlaying:
			s.View, s.BoardMode = ViewLeaderboard, mode
			return s, Effect{Timer: TimerStop, LoadBoard: true}
		}
		return s, Effect{}

	case SubmitEvent:
		if s.View != ViewGameOver {
			return s, Effect{}
		}
		nickname := strings.TrimSpace(ev.Nickname)
		if nickname == "" {
			s.Notice = MsgNicknameRequired
			return s, Effect{}
		}
		return s, Effect{Submit: &ScoreEntry{Nickname: nickname, Score: s.Score}}

	case SubmittedEvent:
		if ev.Err != nil {
			s.Notice = MsgSaveFailed
			return s, Effect{}
		}
		s.View, s.BoardMode, s.Board = ViewLeaderboard, s.Mode, ev.Board
		return s, Effect{}

	case BoardLoadedEvent:
		if ev.Err != nil {
			s.Notice = MsgLoadFailed
		}
		s.Board = ev.Board
		return s, Effect{}

	case MenuEvent:
		if s.View == ViewMenu {
			return s, Effect{}
		}
		wasPlaying := s.View == ViewPlaying
		s.View, s.Deck, s.Reveal = ViewMenu, nil, nil
		if wasPlaying {
			return s, Effect{Timer: TimerStop}
		}
		return s, Effect{}
	}

	return s, Effect{}
}

func start(s Session, mode Mode) (Session, Effect) {
	if _, ok := ParseMode(string(mode)); !ok {
		return s, Effect{}
	}

	s.Mode = mode
	s.Score = 0
	s.TimeRemaining = mode.initialTime()
	s.Deck = nil
	s.Reveal = nil

	return s, Effect{Deal: DealNew}
}

func dealt(s Session, ev DealtEvent) (Session, Effect) {
	if !ev.Fresh {
		if s.View == ViewPlaying {
			s.Deck = append(s.Deck, ev.Cards...)
		}
		return s, Effect{}
	}

	if len(ev.Cards) == 0 {
		s.View, s.Deck = ViewNoContent, nil
		return s, Effect{Timer: TimerStop}
	}

	s.View, s.Deck = ViewPlaying, ev.Cards
	return s, Effect{Timer: TimerStart}
}

func answer(s Session, guess bool) (Session, Effect) {
	card, ok := s.Deck.Front()
	if s.View != ViewPlaying || !ok {
		return s, Effect{}
	}

	correct := card.IsKimchi == guess

	switch {
	case correct:
		s.Score++
		if s.Mode == ModeSurvival {
			s.TimeRemaining = survivalSeconds
		}
	case s.Mode == ModeSurvival:
		s.Reveal = &card
		return gameOver(s)
	default:
		s.Score = max(0, s.Score-timeAttackPenalty)
		s.Notice, s.NoticeCard = MsgPenalty, &card
	}

	s.Deck = s.Deck[1:]

	if len(s.Deck) < refillThreshold {
		return s, Effect{Deal: DealMore}
	}
	return s, Effect{}
}

func gameOver(s Session) (Session, Effect) {
	s.View = ViewGameOver
	return s, Effect{Timer: TimerStop}
}

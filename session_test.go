/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"testing"
)

func testDeck(pattern ...bool) Deck {
	deck := make(Deck, len(pattern))
	for i, kimchi := range pattern {
		deck[i] = Card{ID: fmt.Sprintf("card-%d", i), IsKimchi: kimchi, Name: LocalText{Ko: fmt.Sprintf("카드%d", i), En: fmt.Sprintf("card %d", i)}}
	}
	return deck
}

func repeatDeck(n int) Deck {
	pattern := make([]bool, n)
	for i := range pattern {
		pattern[i] = i%2 == 0
	}
	return testDeck(pattern...)
}

// playing starts mode and deals deck, the way the driver would.
func playing(t *testing.T, mode Mode, deck Deck) Session {
	t.Helper()

	s, effect := Reduce(NewSession(), StartEvent{Mode: mode})
	if effect.Deal != DealNew {
		t.Fatalf("start requested deal %v, want DealNew", effect.Deal)
	}

	s, effect = Reduce(s, DealtEvent{Cards: deck, Fresh: true})
	if s.View != ViewPlaying || effect.Timer != TimerStart {
		t.Fatalf("after deal: view %s, timer %v", s.View, effect.Timer)
	}
	return s
}

func TestStartResetsRound(t *testing.T) {
	s := NewSession()
	s.Score, s.Reveal = 9, &Card{ID: "old"}

	s, _ = Reduce(s, StartEvent{Mode: ModeTimeAttack})

	if s.Mode != ModeTimeAttack || s.Score != 0 || s.TimeRemaining != 30 || s.Reveal != nil {
		t.Fatalf("start left %+v", s)
	}
}

func TestStartRejectsUnknownMode(t *testing.T) {
	s, effect := Reduce(NewSession(), StartEvent{Mode: "marathon"})
	if s.View != ViewMenu || effect.Deal != DealNone {
		t.Fatalf("unknown mode moved session to %s with %+v", s.View, effect)
	}
}

func TestStartOnlyFromMenu(t *testing.T) {
	s := playing(t, ModeSurvival, repeatDeck(10))

	next, effect := Reduce(s, StartEvent{Mode: ModeTimeAttack})
	if next.Mode != ModeSurvival || effect.Deal != DealNone {
		t.Fatal("start was accepted mid-round")
	}
}

func TestSurvivalCorrectAnswers(t *testing.T) {
	s := playing(t, ModeSurvival, testDeck(true, false, true, true, false, true, false, true, true, false))

	s, _ = Reduce(s, TickEvent{})
	s, _ = Reduce(s, TickEvent{})
	if s.TimeRemaining != 3 {
		t.Fatalf("time after two ticks = %d, want 3", s.TimeRemaining)
	}

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	if s.Score != 1 || s.TimeRemaining != 5 {
		t.Fatalf("after correct answer: score %d, time %d", s.Score, s.TimeRemaining)
	}
	if card, _ := s.Deck.Front(); card.ID != "card-1" {
		t.Fatalf("front card is %q, want card-1", card.ID)
	}

	s, _ = Reduce(s, AnswerEvent{Kimchi: false})
	if s.Score != 2 || s.View != ViewPlaying {
		t.Fatalf("after second answer: score %d, view %s", s.Score, s.View)
	}
}

func TestSurvivalWrongAnswerEndsRound(t *testing.T) {
	s := playing(t, ModeSurvival, testDeck(true, true, false, true, true, true))

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	s, effect := Reduce(s, AnswerEvent{Kimchi: true})

	if s.View != ViewGameOver || effect.Timer != TimerStop {
		t.Fatalf("wrong answer: view %s, timer %v", s.View, effect.Timer)
	}
	if s.Score != 2 {
		t.Fatalf("score = %d, want 2", s.Score)
	}
	if s.Reveal == nil || s.Reveal.ID != "card-2" {
		t.Fatalf("reveal = %+v, want card-2", s.Reveal)
	}
}

func TestSurvivalTimeoutRevealsCard(t *testing.T) {
	s := playing(t, ModeSurvival, repeatDeck(10))

	var effect Effect
	for i := 0; i < 5; i++ {
		s, effect = Reduce(s, TickEvent{})
	}

	if s.View != ViewGameOver || s.TimeRemaining != 0 || effect.Timer != TimerStop {
		t.Fatalf("after 5 ticks: view %s, time %d, timer %v", s.View, s.TimeRemaining, effect.Timer)
	}
	if s.Notice != MsgTimeUp {
		t.Fatalf("notice = %q, want %q", s.Notice, MsgTimeUp)
	}
	if s.Reveal == nil || s.Reveal.ID != "card-0" {
		t.Fatalf("reveal = %+v, want card-0", s.Reveal)
	}
}

func TestTimeAttackPenaltyFloorsAtZero(t *testing.T) {
	s := playing(t, ModeTimeAttack, testDeck(true, true, true, true, false, true, true, true, true, true))

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	if s.Score != 3 {
		t.Fatalf("score = %d, want 3", s.Score)
	}

	s, _ = Reduce(s, AnswerEvent{Kimchi: false})
	if s.Score != 1 {
		t.Fatalf("score after penalty = %d, want 1", s.Score)
	}
	if s.Notice != MsgPenalty || s.NoticeCard == nil || s.NoticeCard.ID != "card-3" {
		t.Fatalf("penalty notice = %q %+v", s.Notice, s.NoticeCard)
	}
	if s.View != ViewPlaying {
		t.Fatalf("wrong time attack answer ended the round")
	}

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	if s.Score != 0 {
		t.Fatalf("score after second penalty = %d, want 0", s.Score)
	}
	if s.TimeRemaining != 30 {
		t.Fatalf("answers changed the time attack clock to %d", s.TimeRemaining)
	}
}

func TestTimeAttackTimeout(t *testing.T) {
	s := playing(t, ModeTimeAttack, repeatDeck(40))

	for i := 0; i < 29; i++ {
		s, _ = Reduce(s, TickEvent{})
	}
	if s.View != ViewPlaying || s.TimeRemaining != 1 {
		t.Fatalf("after 29 ticks: view %s, time %d", s.View, s.TimeRemaining)
	}

	s, _ = Reduce(s, TickEvent{})
	if s.View != ViewGameOver || s.Reveal != nil {
		t.Fatalf("time attack timeout: view %s, reveal %+v", s.View, s.Reveal)
	}
}

func TestNoticeClearsOnNextEvent(t *testing.T) {
	s := playing(t, ModeTimeAttack, testDeck(false, true, true, true, true, true, true))

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	if s.Notice != MsgPenalty {
		t.Fatalf("notice = %q", s.Notice)
	}

	s, _ = Reduce(s, DealtEvent{Cards: repeatDeck(2)})
	if s.Notice != MsgPenalty {
		t.Fatal("refill cleared the notice")
	}

	s, _ = Reduce(s, TickEvent{})
	if s.Notice != "" || s.NoticeCard != nil {
		t.Fatalf("notice survived a tick: %q", s.Notice)
	}
}

func TestRefillBelowThreshold(t *testing.T) {
	s := playing(t, ModeSurvival, testDeck(true, true, true, true, true, true))

	s, effect := Reduce(s, AnswerEvent{Kimchi: true})
	if effect.Deal != DealNone || len(s.Deck) != 5 {
		t.Fatalf("5 cards left: deal %v", effect.Deal)
	}

	s, effect = Reduce(s, AnswerEvent{Kimchi: true})
	if effect.Deal != DealMore || len(s.Deck) != 4 {
		t.Fatalf("4 cards left: deal %v", effect.Deal)
	}

	s, _ = Reduce(s, DealtEvent{Cards: repeatDeck(10)})
	if len(s.Deck) != 14 {
		t.Fatalf("deck after refill has %d cards, want 14", len(s.Deck))
	}
}

func TestRefillIgnoredOutsidePlay(t *testing.T) {
	s := NewSession()
	s, _ = Reduce(s, DealtEvent{Cards: repeatDeck(3)})
	if len(s.Deck) != 0 || s.View != ViewMenu {
		t.Fatalf("refill applied to %s session", s.View)
	}
}

func TestEmptyDealShowsNoContent(t *testing.T) {
	s, _ := Reduce(NewSession(), StartEvent{Mode: ModeSurvival})
	s, effect := Reduce(s, DealtEvent{Fresh: true})

	if s.View != ViewNoContent || effect.Timer != TimerStop {
		t.Fatalf("empty deal: view %s, timer %v", s.View, effect.Timer)
	}

	s, _ = Reduce(s, AnswerEvent{Kimchi: true})
	if s.View != ViewNoContent {
		t.Fatal("answer accepted without content")
	}

	s, _ = Reduce(s, MenuEvent{})
	if s.View != ViewMenu {
		t.Fatalf("menu from no content went to %s", s.View)
	}
}

func TestAnswerOutsidePlayIsIgnored(t *testing.T) {
	for _, view := range []View{ViewMenu, ViewGameOver, ViewLeaderboard} {
		s := NewSession()
		s.View, s.Deck, s.Score = view, repeatDeck(3), 4

		next, effect := Reduce(s, AnswerEvent{Kimchi: true})
		if next.Score != 4 || len(next.Deck) != 3 || effect != (Effect{}) {
			t.Fatalf("answer in %s changed the session", view)
		}
	}
}

func TestAnswerOnEmptyDeckIsIgnored(t *testing.T) {
	for _, mode := range []Mode{ModeSurvival, ModeTimeAttack} {
		s := Session{View: ViewPlaying, Mode: mode, Score: 3, TimeRemaining: 4}

		for _, guess := range []bool{false, true} {
			next, effect := Reduce(s, AnswerEvent{Kimchi: guess})
			if next.View != ViewPlaying || next.Score != 3 || next.TimeRemaining != 4 {
				t.Fatalf("%s: answer on empty deck moved to %s, score %d, time %d", mode, next.View, next.Score, next.TimeRemaining)
			}
			if effect != (Effect{}) {
				t.Fatalf("%s: answer on empty deck returned %+v", mode, effect)
			}
			if next.Reveal != nil || next.Notice != "" {
				t.Fatalf("%s: answer on empty deck set reveal %+v, notice %q", mode, next.Reveal, next.Notice)
			}
		}
	}
}

func TestTickOutsidePlayIsIgnored(t *testing.T) {
	s := NewSession()
	s.View, s.TimeRemaining = ViewGameOver, 3

	next, _ := Reduce(s, TickEvent{})
	if next.TimeRemaining != 3 {
		t.Fatalf("tick in gameover changed time to %d", next.TimeRemaining)
	}
}

func TestRetryKeepsMode(t *testing.T) {
	s := playing(t, ModeTimeAttack, repeatDeck(10))
	for i := 0; i < 30; i++ {
		s, _ = Reduce(s, TickEvent{})
	}

	s, effect := Reduce(s, RetryEvent{})
	if s.Mode != ModeTimeAttack || s.TimeRemaining != 30 || effect.Deal != DealNew {
		t.Fatalf("retry: mode %s, time %d, deal %v", s.Mode, s.TimeRemaining, effect.Deal)
	}

	if _, effect := Reduce(NewSession(), RetryEvent{}); effect.Deal != DealNone {
		t.Fatal("retry accepted from the menu")
	}
}

func TestSubmitRequiresNickname(t *testing.T) {
	s := NewSession()
	s.View, s.Score = ViewGameOver, 7

	for _, nickname := range []string{"", "   ", "\t\n"} {
		next, effect := Reduce(s, SubmitEvent{Nickname: nickname})
		if effect.Submit != nil {
			t.Fatalf("blank nickname %q was submitted", nickname)
		}
		if next.Notice != MsgNicknameRequired || next.View != ViewGameOver {
			t.Fatalf("blank nickname: notice %q, view %s", next.Notice, next.View)
		}
	}

	_, effect := Reduce(s, SubmitEvent{Nickname: "  alice "})
	if effect.Submit == nil || *effect.Submit != (ScoreEntry{Nickname: "alice", Score: 7}) {
		t.Fatalf("submit effect = %+v", effect.Submit)
	}
}

func TestSubmittedShowsLeaderboard(t *testing.T) {
	s := NewSession()
	s.View, s.Mode = ViewGameOver, ModeTimeAttack

	board := emptyScoreBoard().Upsert(ModeTimeAttack, ScoreEntry{Nickname: "alice", Score: 3})

	next, _ := Reduce(s, SubmittedEvent{Board: board})
	if next.View != ViewLeaderboard || next.BoardMode != ModeTimeAttack || len(next.Board.TimeAttack) != 1 {
		t.Fatalf("after submit: %+v", next)
	}

	failed, _ := Reduce(s, SubmittedEvent{Err: errors.New("disk full")})
	if failed.View != ViewGameOver || failed.Notice != MsgSaveFailed {
		t.Fatalf("failed submit: view %s, notice %q", failed.View, failed.Notice)
	}
}

func TestLeaderboardFromPlayingStopsTimer(t *testing.T) {
	s := playing(t, ModeSurvival, repeatDeck(10))

	s, effect := Reduce(s, LeaderboardEvent{Mode: ModeTimeAttack})
	if s.View != ViewLeaderboard || s.BoardMode != ModeTimeAttack {
		t.Fatalf("leaderboard: view %s, mode %s", s.View, s.BoardMode)
	}
	if effect.Timer != TimerStop || !effect.LoadBoard {
		t.Fatalf("leaderboard effect = %+v", effect)
	}
}

func TestLeaderboardDefaultsToSessionMode(t *testing.T) {
	s := NewSession()
	s.Mode = ModeTimeAttack

	s, _ = Reduce(s, LeaderboardEvent{})
	if s.BoardMode != ModeTimeAttack {
		t.Fatalf("board mode = %s", s.BoardMode)
	}
}

func TestMenuFromPlayingStopsTimer(t *testing.T) {
	s := playing(t, ModeSurvival, repeatDeck(10))

	s, effect := Reduce(s, MenuEvent{})
	if s.View != ViewMenu || effect.Timer != TimerStop || s.Deck != nil {
		t.Fatalf("menu: view %s, timer %v", s.View, effect.Timer)
	}
}

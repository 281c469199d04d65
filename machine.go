/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
)

// Dealer builds a fresh sample of cards.
type Dealer func() Deck

// Machine drives one Session: it feeds events through Reduce and carries out
// the resulting effects, feeding their outcome back in until the session
// settles. It is not safe for concurrent use; each player owns one.
type Machine struct {
	session Session
	deal    Dealer
	store   ScoreStore

	timerActive bool
	timerStarts int
}

func newMachine(deal Dealer, store ScoreStore) *Machine {
	return &Machine{
		session: NewSession(),
		deal:    deal,
		store:   store,
	}
}

func (m *Machine) Session() Session {
	return m.session
}

// TimerActive reports whether the one-second tick should be running.
func (m *Machine) TimerActive() bool {
	return m.timerActive
}

// TimerStarts counts timer activations. The transport compares it between
// events to know when to restart its ticker.
func (m *Machine) TimerStarts() int {
	return m.timerStarts
}

// Dispatch applies ev and every follow-up event its effects produce. Errors
// from the score store are returned after being reflected in the session.
func (m *Machine) Dispatch(ctx context.Context, ev Event) error {
	if _, ok := ev.(TickEvent); ok && !m.timerActive {
		return nil
	}

	var firstErr error

	for ev != nil {
		next, effect := Reduce(m.session, ev)
		m.session = next
		ev = nil

		switch effect.Timer {
		case TimerStart:
			m.timerActive = true
			m.timerStarts++
		case TimerStop:
			m.timerActive = false
		}

		switch {
		case effect.Deal != DealNone:
			cards := m.deal()
			if effect.Deal == DealNew && len(cards) == 0 && firstErr == nil {
				firstErr = ErrContentMissing
			}
			ev = DealtEvent{Cards: cards, Fresh: effect.Deal == DealNew}

		case effect.Submit != nil:
			board, err := m.store.Submit(ctx, m.session.Mode, *effect.Submit)
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("%w: %w", ErrPersistence, err)
			}
			ev = SubmittedEvent{Board: board, Err: err}

		case effect.LoadBoard:
			board, err := m.store.Load(ctx)
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("%w: %w", ErrPersistence, err)
			}
			ev = BoardLoadedEvent{Board: board, Err: err}
		}
	}

	return firstErr
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sort"
)

// LocalText holds one string per supported language.
type LocalText struct {
	Ko string `toml:"ko" json:"ko"`
	En string `toml:"en" json:"en"`
}

func (t LocalText) In(lang Lang) string {
	if lang == LangEnglish && t.En != "" {
		return t.En
	}
	if t.Ko != "" {
		return t.Ko
	}
	return t.En
}

// Card is one image in a deck. Cards are never modified after scanning.
type Card struct {
	ID          string
	Category    string
	IsKimchi    bool
	ImageURL    string
	Name        LocalText
	Description LocalText
}

// Catalog maps a category name to the cards found for it.
type Catalog map[string][]Card

// Size is the total number of cards across all categories.
func (c Catalog) Size() int {
	n := 0
	for _, cards := range c {
		n += len(cards)
	}
	return n
}

// flatten lists every card with categories in sorted order, so a seeded
// generator always samples the same way.
func (c Catalog) flatten() []Card {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Card, 0, c.Size())
	for _, name := range names {
		out = append(out, c[name]...)
	}
	return out
}

// Deck is the queue of cards a session plays through. Index 0 is showing.
type Deck []Card

func (d Deck) Front() (Card, bool) {
	if len(d) == 0 {
		return Card{}, false
	}
	return d[0], true
}

// sample draws min(len(cards), n) cards without replacement using a
// partial Fisher-Yates pass over a copy of cards.
func sample(rng *rand.Rand, cards []Card, n int) []Card {
	pool := make([]Card, len(cards))
	copy(pool, cards)

	k := min(len(pool), n)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k]
}

// BuildDeck samples up to perSide cards from each catalog and shuffles the
// combined result. Two empty catalogs produce an empty deck.
func BuildDeck(rng *rand.Rand, kimchi, notKimchi Catalog, perSide int) Deck {
	if perSide < 0 {
		perSide = 0
	}

	deck := make(Deck, 0, 2*perSide)
	deck = append(deck, sample(rng, kimchi.flatten(), perSide)...)
	deck = append(deck, sample(rng, notKimchi.flatten(), perSide)...)

	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return deck
}

// newRand returns a generator seeded from crypto/rand, one per player.
func newRand() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(seed))
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/pelletier/go-toml/v2"
)

// Side names one of the two image trees. Card IDs start with it.
type Side string

const (
	SideKimchi    Side = "kimchi"
	SideNotKimchi Side = "not-kimchi"
)

func (s Side) kimchi() bool {
	return s == SideKimchi
}

//go:embed categories.toml
var defaultCategories []byte

// Category describes a known image folder.
type Category struct {
	Key         string    `toml:"key"`
	Name        LocalText `toml:"name"`
	Description LocalText `toml:"description"`
}

// CategoryTable is the curated list of known categories for each side.
type CategoryTable struct {
	Kimchi    []Category `toml:"kimchi"`
	NotKimchi []Category `toml:"not_kimchi"`
}

func parseCategoryTable(data []byte) (*CategoryTable, error) {
	var table CategoryTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}

	for _, side := range [][]Category{table.Kimchi, table.NotKimchi} {
		for _, c := range side {
			if strings.TrimSpace(c.Key) == "" {
				return nil, errors.New("parse category table: category without key")
			}
		}
	}

	return &table, nil
}

// loadCategoryTable reads the override file at p, or the built-in table
// when p is empty.
func loadCategoryTable(p string) (*CategoryTable, error) {
	if p == "" {
		return parseCategoryTable(defaultCategories)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}

	return parseCategoryTable(data)
}

func (t *CategoryTable) lookup(side Side) map[string]Category {
	list := t.NotKimchi
	if side.kimchi() {
		list = t.Kimchi
	}

	m := make(map[string]Category, len(list))
	for _, c := range list {
		m[c.Key] = c
	}
	return m
}

// ScanOptions controls how an image tree becomes a Catalog.
type ScanOptions struct {
	Side    Side
	Table   *CategoryTable
	Curated bool
	URLBase string
}

// scanCatalog reads one image tree laid out as <category>/<image>. A missing
// root yields an empty catalog.
func scanCatalog(fsys fs.FS, opts ScanOptions) (Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", opts.Side, err)
	}

	known := map[string]Category{}
	if opts.Table != nil {
		known = opts.Table.lookup(opts.Side)
	}

	catalog := Catalog{}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		info, ok := known[name]
		if !ok && opts.Curated {
			continue
		}

		files, err := fs.ReadDir(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("scan %s/%s: %w", opts.Side, name, err)
		}

		displayName := info.Name
		if displayName.Ko == "" && displayName.En == "" {
			displayName = LocalText{Ko: name, En: name}
		}

		description := info.Description
		if description.Ko == "" && description.En == "" {
			description = defaultDescription(opts.Side, displayName)
		}

		var cards []Card
		for _, f := range files {
			if f.IsDir() || !isImageFile(f.Name()) {
				continue
			}

			id := path.Join(string(opts.Side), name, f.Name())

			cards = append(cards, Card{
				ID:          id,
				Category:    name,
				IsKimchi:    opts.Side.kimchi(),
				ImageURL:    opts.URLBase + "/cards/" + cardToken(id) + strings.ToLower(path.Ext(f.Name())),
				Name:        displayName,
				Description: description,
			})
		}

		if len(cards) > 0 {
			catalog[name] = cards
		}
	}

	return catalog, nil
}

// cardToken names a card's image without revealing its folder, which would
// give the answer away.
func cardToken(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:10])
}

func defaultDescription(side Side, name LocalText) LocalText {
	ko, en := newTranslator(LangKorean), newTranslator(LangEnglish)

	if side.kimchi() {
		return LocalText{Ko: ko.T(MsgKimchiDescription), En: en.T(MsgKimchiDescription)}
	}

	return LocalText{
		Ko: ko.T(MsgNotKimchiDesc, name.In(LangKorean)),
		En: en.T(MsgNotKimchiDesc, name.In(LangEnglish)),
	}
}

// Catalogs is one consistent snapshot of both image trees.
type Catalogs struct {
	Kimchi    Catalog
	NotKimchi Catalog

	images map[string]string
}

func (c *Catalogs) index() {
	c.images = make(map[string]string, c.Kimchi.Size()+c.NotKimchi.Size())
	for _, catalog := range []Catalog{c.Kimchi, c.NotKimchi} {
		for _, cards := range catalog {
			for _, card := range cards {
				c.images[cardToken(card.ID)] = card.ID
			}
		}
	}
}

func (c *Catalogs) Empty() bool {
	return c.Kimchi.Size() == 0 && c.NotKimchi.Size() == 0
}

// Library owns the current catalog snapshot. Reload swaps it atomically, so
// decks dealt concurrently always see a complete snapshot.
type Library struct {
	roots   map[Side]string
	table   *CategoryTable
	curated bool
	urlBase string

	current atomic.Pointer[Catalogs]
}

func newLibrary(cfg *Config, table *CategoryTable) *Library {
	return &Library{
		roots: map[Side]string{
			SideKimchi:    cfg.kimchiDir,
			SideNotKimchi: cfg.notKimchiDir,
		},
		table:   table,
		curated: cfg.curated,
		urlBase: cfg.prefix,
	}
}

func (l *Library) Root(side Side) (string, bool) {
	root, ok := l.roots[side]
	return root, ok
}

func (l *Library) Reload() error {
	next := &Catalogs{}

	for side, dst := range map[Side]*Catalog{SideKimchi: &next.Kimchi, SideNotKimchi: &next.NotKimchi} {
		catalog, err := scanCatalog(os.DirFS(l.roots[side]), ScanOptions{
			Side:    side,
			Table:   l.table,
			Curated: l.curated,
			URLBase: l.urlBase,
		})
		if err != nil {
			return err
		}
		*dst = catalog
	}

	next.index()
	l.current.Store(next)

	return nil
}

// Resolve maps a card token back to the root and relative path of its image.
func (l *Library) Resolve(token string) (root, name string, ok bool) {
	id, ok := l.Snapshot().images[token]
	if !ok {
		return "", "", false
	}

	side, name, ok := strings.Cut(id, "/")
	if !ok {
		return "", "", false
	}

	root, ok = l.roots[Side(side)]
	return root, name, ok
}

func (l *Library) Snapshot() *Catalogs {
	if c := l.current.Load(); c != nil {
		return c
	}
	return &Catalogs{Kimchi: Catalog{}, NotKimchi: Catalog{}}
}

// Dealer returns a deck source bound to one player's generator.
func (l *Library) Dealer(rng *rand.Rand, perSide int) Dealer {
	return func() Deck {
		c := l.Snapshot()
		return BuildDeck(rng, c.Kimchi, c.NotKimchi, perSide)
	}
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	playerCookieName = "kimchi_player"
	playerTokenTTL   = 365 * 24 * time.Hour
	tokenIssuer      = "kimchi"
)

// PlayerIdentity is what the signed player cookie remembers between visits.
type PlayerIdentity struct {
	ID   string
	Lang Lang
}

type playerClaims struct {
	jwt.RegisteredClaims
	Lang string `json:"lang"`
}

// TokenSigner issues and verifies player cookies.
type TokenSigner struct {
	key []byte
	now func() time.Time
}

func newTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{key: []byte(secret), now: time.Now}
}

func (s *TokenSigner) Sign(id PlayerIdentity) (string, error) {
	now := s.now()

	claims := playerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(playerTokenTTL)),
		},
		Lang: string(id.Lang),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign player token: %w", err)
	}
	return signed, nil
}

func (s *TokenSigner) Verify(token string) (PlayerIdentity, error) {
	var claims playerClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return PlayerIdentity{}, fmt.Errorf("verify player token: %w", err)
	}

	if claims.Subject == "" {
		return PlayerIdentity{}, errors.New("verify player token: missing subject")
	}

	lang, ok := ParseLang(claims.Lang)
	if !ok {
		lang = defaultLang
	}

	return PlayerIdentity{ID: claims.Subject, Lang: lang}, nil
}

func newPlayerID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// resolve returns the identity stored in the request's cookie, or a freshly
// minted one when it is missing or does not verify.
func (s *TokenSigner) resolve(r *http.Request) (id PlayerIdentity, fresh bool, err error) {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		if id, err := s.Verify(c.Value); err == nil {
			return id, false, nil
		}
	}

	playerID, err := newPlayerID()
	if err != nil {
		return PlayerIdentity{}, false, err
	}

	return PlayerIdentity{ID: playerID, Lang: MatchLang(r.Header.Get("Accept-Language"))}, true, nil
}

// identify is resolve plus setting the cookie for new identities.
func (s *TokenSigner) identify(cfg *Config, w http.ResponseWriter, r *http.Request) (PlayerIdentity, error) {
	id, fresh, err := s.resolve(r)
	if err != nil {
		return PlayerIdentity{}, err
	}

	if fresh {
		if err := s.setCookie(cfg, w, id); err != nil {
			return PlayerIdentity{}, err
		}
	}

	return id, nil
}

func (s *TokenSigner) setCookie(cfg *Config, w http.ResponseWriter, id PlayerIdentity) error {
	token, err := s.Sign(id)
	if err != nil {
		return err
	}

	path := cfg.prefix
	if path == "" {
		path = "/"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    token,
		Path:     path,
		MaxAge:   int(playerTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

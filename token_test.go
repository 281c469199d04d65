/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := newTokenSigner("test-secret")

	token, err := signer.Sign(PlayerIdentity{ID: "abc123", Lang: LangEnglish})
	if err != nil {
		t.Fatal(err)
	}

	id, err := signer.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != "abc123" || id.Lang != LangEnglish {
		t.Fatalf("identity = %+v", id)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	signer := newTokenSigner("test-secret")

	token, err := signer.Sign(PlayerIdentity{ID: "abc123", Lang: LangKorean})
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d parts", len(parts))
	}

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := signer.Verify(tampered); err == nil {
		t.Fatal("tampered token verified")
	}

	if _, err := newTokenSigner("other-secret").Verify(token); err == nil {
		t.Fatal("token verified under a different secret")
	}
}

func TestTokenExpires(t *testing.T) {
	signer := newTokenSigner("test-secret")

	token, err := signer.Sign(PlayerIdentity{ID: "abc123", Lang: LangKorean})
	if err != nil {
		t.Fatal(err)
	}

	signer.now = func() time.Time { return time.Now().Add(2 * playerTokenTTL) }
	if _, err := signer.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestIdentifySetsCookieOnce(t *testing.T) {
	cfg := &Config{prefix: "/quiz"}
	signer := newTokenSigner("test-secret")

	r := httptest.NewRequest(http.MethodGet, "/quiz/", nil)
	r.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	w := httptest.NewRecorder()

	first, err := signer.identify(cfg, w, r)
	if err != nil {
		t.Fatal(err)
	}
	if first.Lang != LangEnglish || first.ID == "" {
		t.Fatalf("fresh identity = %+v", first)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != playerCookieName || cookies[0].Path != "/quiz" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	again := httptest.NewRequest(http.MethodGet, "/quiz/", nil)
	again.AddCookie(cookies[0])
	w = httptest.NewRecorder()

	second, err := signer.identify(cfg, w, again)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatalf("returning player got %+v, want %+v", second, first)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("cookie re-issued for a valid token")
	}
}

func TestIdentifyReplacesForgedCookie(t *testing.T) {
	cfg := &Config{}
	signer := newTokenSigner("test-secret")

	forged, err := newTokenSigner("attacker").Sign(PlayerIdentity{ID: "victim", Lang: LangKorean})
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: playerCookieName, Value: forged})
	w := httptest.NewRecorder()

	id, err := signer.identify(cfg, w, r)
	if err != nil {
		t.Fatal(err)
	}
	if id.ID == "victim" {
		t.Fatal("forged identity accepted")
	}
	if len(w.Result().Cookies()) != 1 {
		t.Fatal("replacement cookie not set")
	}
}

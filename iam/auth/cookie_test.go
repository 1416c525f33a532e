package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/nexaedu/campus/pkg/kernel"
)

const testSecret = "um-segredo-de-teste-com-32-bytes!"

func TestSessionCookieCodecRoundTrip(t *testing.T) {
	codec := NewSessionCookieCodec(testSecret, time.Hour, "campus")
	id := kernel.NewSessionID("sessao-123")

	token, err := codec.Encode(id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != id {
		t.Fatalf("decoded = %q, want %q", decoded, id)
	}
}

func TestSessionCookieCodecRejectsTampering(t *testing.T) {
	codec := NewSessionCookieCodec(testSecret, time.Hour, "campus")

	token, err := codec.Encode(kernel.NewSessionID("sessao-123"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Troca o último caractere da assinatura
	tampered := token[:len(token)-1]
	if strings.HasSuffix(token, "A") {
		tampered += "B"
	} else {
		tampered += "A"
	}

	if _, err := codec.Decode(tampered); err == nil {
		t.Fatal("tampered token should be rejected")
	}
}

func TestSessionCookieCodecRejectsForeignKey(t *testing.T) {
	codec := NewSessionCookieCodec(testSecret, time.Hour, "campus")
	other := NewSessionCookieCodec("outro-segredo-tambem-com-32-bytes", time.Hour, "campus")

	token, err := other.Encode(kernel.NewSessionID("sessao-123"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := codec.Decode(token); err == nil {
		t.Fatal("token signed with a different key should be rejected")
	}
}

func TestSessionCookieCodecRejectsGarbage(t *testing.T) {
	codec := NewSessionCookieCodec(testSecret, time.Hour, "campus")

	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := codec.Decode(raw); err == nil {
			t.Fatalf("Decode(%q) should fail", raw)
		}
	}
}

func TestSessionCookieCodecRejectsExpired(t *testing.T) {
	codec := NewSessionCookieCodec(testSecret, -time.Minute, "campus")

	token, err := codec.Encode(kernel.NewSessionID("sessao-123"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	fresh := NewSessionCookieCodec(testSecret, time.Hour, "campus")
	if _, err := fresh.Decode(token); err == nil {
		t.Fatal("expired token should be rejected")
	}
}

package codec

import (
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	c := Base64{}
	for _, text := range []string{"", "hello", "multi\nline", "héllo wörld 🙂"} {
		enc, err := c.Encode(text)
		if err != nil {
			t.Fatalf("encode %q: %v", text, err)
		}
		if text != "" && enc == text {
			t.Fatalf("encoded text should differ from plaintext: %q", enc)
		}
		dec, err := c.Decode(enc)
		if err != nil {
			t.Fatalf("decode %q: %v", enc, err)
		}
		if dec != text {
			t.Fatalf("round trip mismatch: got %q want %q", dec, text)
		}
	}
	if !c.Obfuscating() {
		t.Fatalf("base64 codec must report obfuscating")
	}
}

func TestBase64DecodeGarbage(t *testing.T) {
	c := Base64{}
	if _, err := c.Decode("not valid base64!!!"); err == nil {
		t.Fatalf("expected decode error for malformed input")
	}
}

func TestPassthrough(t *testing.T) {
	c := Passthrough{}
	enc, err := c.Encode("plain")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc != "plain" {
		t.Fatalf("passthrough must not alter text, got %q", enc)
	}
	if c.Obfuscating() {
		t.Fatalf("passthrough must not report obfuscating")
	}
}

func TestForMode(t *testing.T) {
	if !ForMode(true).Obfuscating() {
		t.Fatalf("expected obfuscating codec")
	}
	if ForMode(false).Obfuscating() {
		t.Fatalf("expected passthrough codec")
	}
}

package gateway

import (
	"bytes"
	"testing"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	type payload struct {
		Pair   string  `json:"pair"`
		Amount float64 `json:"amount"`
		Side   string  `json:"side"`
	}
	fromStruct, err := canonicalize(payload{Pair: "BTC/USDT", Amount: 0.25, Side: "buy"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	fromMap, err := canonicalize(map[string]any{
		"side":   "buy",
		"pair":   "BTC/USDT",
		"amount": 0.25,
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !bytes.Equal(fromStruct, fromMap) {
		t.Fatalf("canonical forms differ:\n%s\n%s", fromStruct, fromMap)
	}
	want := `{"amount":0.25,"pair":"BTC/USDT","side":"buy"}`
	if string(fromStruct) != want {
		t.Fatalf("canonical = %s, want %s", fromStruct, want)
	}
}

func TestCanonicalizeRejectsUnmarshalable(t *testing.T) {
	if _, err := canonicalize(make(chan int)); err == nil {
		t.Fatalf("channels cannot marshal, expected an error")
	}
}

func TestSignDeterministic(t *testing.T) {
	body := []byte(`{"amount":0.25,"pair":"BTC/USDT"}`)
	a := sign("secret", body)
	b := sign("secret", body)
	if a != b {
		t.Fatalf("same inputs signed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("hex sha256 mac should be 64 chars, got %d", len(a))
	}
	if other := sign("other-secret", body); other == a {
		t.Fatalf("different secrets must not collide")
	}
	if other := sign("secret", []byte(`{}`)); other == a {
		t.Fatalf("different bodies must not collide")
	}
}

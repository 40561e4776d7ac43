package webhook

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	plaintext, hash, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(plaintext, "whk_") {
		t.Errorf("key %q missing whk_ prefix", plaintext)
	}
	if hash != HashKey(plaintext) {
		t.Error("returned hash does not match HashKey of the plaintext")
	}

	other, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if other == plaintext {
		t.Error("two generated keys are identical")
	}
}

func TestHashKeyIsStable(t *testing.T) {
	if HashKey("whk_abc") != HashKey("whk_abc") {
		t.Error("same input hashed to different values")
	}
	if HashKey("whk_abc") == HashKey("whk_abd") {
		t.Error("different inputs hashed to the same value")
	}
	if len(HashKey("whk_abc")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashKey("whk_abc")))
	}
}

package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	payload := []byte(`{"event":"checkout.completed","email":"ana@example.com","amountCents":69700}`)
	secret := "whsec_test"

	if !VerifySignature(payload, sign(payload, secret), secret) {
		t.Fatal("expected valid signature")
	}
	if !VerifySignature(payload, "sha256="+sign(payload, secret), secret) {
		t.Fatal("expected valid signature with sha256= prefix")
	}
}

func TestVerifySignature_Invalid(t *testing.T) {
	payload := []byte(`{"event":"checkout.completed"}`)
	secret := "whsec_test"

	if VerifySignature(payload, sign(payload, "other_secret"), secret) {
		t.Fatal("signature from wrong secret must fail")
	}
	if VerifySignature([]byte("tampered"), sign(payload, secret), secret) {
		t.Fatal("signature over different payload must fail")
	}
	if VerifySignature(payload, "", secret) {
		t.Fatal("empty signature must fail")
	}
	if VerifySignature(payload, sign(payload, secret), "") {
		t.Fatal("empty secret must fail")
	}
}

package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA256 digest of orderID + "|" +
// paymentID under secret.  This is the value the gateway attaches to its
// checkout callback.
func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature authenticates the (orderID,
// paymentID) pair under the server-held secret.  This recomputation is the
// single source of truth for "payment is genuine"; no client claim or HTTP
// status may substitute for it.
//
// A mismatch is expected adversarial input (forged or replayed callbacks),
// not an error condition, so the function returns false rather than an
// error.  It is a pure function of its inputs: calling it never performs
// I/O and never mutates state, so callers may re-verify freely.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := ComputeSignature(orderID, paymentID, secret)
	// Constant-time comparison; the signature is attacker-supplied.
	return hmac.Equal([]byte(expected), []byte(signature))
}

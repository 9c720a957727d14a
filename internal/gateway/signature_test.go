package gateway

import "testing"

func TestVerifySignature_RoundTrip(t *testing.T) {
	cases := []struct {
		orderID   string
		paymentID string
		secret    string
	}{
		{"order_abc", "pay_123", "s3cret"},
		{"order_x", "pay_y", "another-secret"},
		{"o", "p", "k"},
	}
	for _, c := range cases {
		sig := ComputeSignature(c.orderID, c.paymentID, c.secret)
		if !VerifySignature(c.orderID, c.paymentID, sig, c.secret) {
			t.Errorf("signature for (%s,%s) did not verify", c.orderID, c.paymentID)
		}
	}
}

func TestVerifySignature_BitFlip(t *testing.T) {
	sig := ComputeSignature("order_abc", "pay_123", "s3cret")

	// Flipping any single hex character must break verification.
	for i := 0; i < len(sig); i++ {
		b := []byte(sig)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		if VerifySignature("order_abc", "pay_123", string(b), "s3cret") {
			t.Fatalf("tampered signature at index %d verified", i)
		}
	}
}

func TestVerifySignature_WrongInputs(t *testing.T) {
	sig := ComputeSignature("order_abc", "pay_123", "s3cret")

	t.Run("wrong secret", func(t *testing.T) {
		if VerifySignature("order_abc", "pay_123", sig, "other") {
			t.Error("verified under wrong secret")
		}
	})
	t.Run("swapped ids", func(t *testing.T) {
		if VerifySignature("pay_123", "order_abc", sig, "s3cret") {
			t.Error("verified with swapped ids")
		}
	})
	t.Run("empty signature", func(t *testing.T) {
		if VerifySignature("order_abc", "pay_123", "", "s3cret") {
			t.Error("verified empty signature")
		}
	})
}

func TestVerifySignature_Idempotent(t *testing.T) {
	sig := ComputeSignature("order_abc", "pay_123", "s3cret")
	first := VerifySignature("order_abc", "pay_123", sig, "s3cret")
	second := VerifySignature("order_abc", "pay_123", sig, "s3cret")
	if first != second {
		t.Errorf("verify not idempotent: %v then %v", first, second)
	}
}

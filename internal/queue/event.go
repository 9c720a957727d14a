// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when a payment-verified
// registration is appended to the store.  It carries enough information for
// downstream consumers to log, notify, or feed analytics without querying
// the registration store.
type RegistrationConfirmedEvent struct {
	RegistrationID string `json:"registration_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Facilitator    string `json:"facilitator"`
	Area           string `json:"area"`
	Level          string `json:"level"`
	Accommodation  string `json:"accommodation"`
	AmountRupees   int64  `json:"amount_rupees"`
	PaymentID      string `json:"payment_id"`
	OrderID        string `json:"order_id"`
	ConfirmedAt    string `json:"confirmed_at"`
}

package model

// Accommodation is the closed set of lodging choices offered at the camp.
// Each kind is bound to a fixed fee; the fee is derived server-side from
// the kind and is never taken from a request body.
type Accommodation string

const (
	AccommodationRoom      Accommodation = "room"      // private room
	AccommodationDormitory Accommodation = "dormitory" // shared dormitory
)

// Fixed fees in whole rupees.  The gateway expects the smallest currency
// unit (paise), so order amounts are PriceRupees * 100.
const (
	RoomPriceRupees      = 2500
	DormitoryPriceRupees = 2000
)

// Currency is fixed for this system; the gateway order and all stored
// amounts use it.
const Currency = "INR"

// ParseAccommodation validates a raw string from a request body.  The
// second return value is false for anything outside the closed set,
// including the empty string.
func ParseAccommodation(s string) (Accommodation, bool) {
	switch Accommodation(s) {
	case AccommodationRoom:
		return AccommodationRoom, true
	case AccommodationDormitory:
		return AccommodationDormitory, true
	}
	return "", false
}

// PriceRupees returns the fixed fee for the kind in whole rupees.
func (a Accommodation) PriceRupees() int64 {
	switch a {
	case AccommodationRoom:
		return RoomPriceRupees
	case AccommodationDormitory:
		return DormitoryPriceRupees
	}
	return 0
}

// PricePaise returns the fee in the currency's smallest unit, which is
// the amount used for gateway order creation.
func (a Accommodation) PricePaise() int64 {
	return a.PriceRupees() * 100
}

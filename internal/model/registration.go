package model

import "time"

// Devotee holds the attendee details collected by the registration form.
// All fields except MedicalNotes are required at registration time.
//
// Fields:
//  Name          – attendee's full name.
//  Email         – contact email; confirmation mail is sent here.
//  ContactNo     – phone number, used for checkout prefill.
//  Facilitator   – name of the facilitator the attendee belongs to.
//  Area          – centre/area the attendee registered from.
//  Level         – study level of the attendee.
//  MedicalNotes  – optional medical conditions or dietary requirements.
//  Accommodation – chosen lodging kind ("room" or "dormitory").
type Devotee struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	ContactNo     string        `json:"contactNo"`
	Facilitator   string        `json:"facilitator"`
	Area          string        `json:"area"`
	Level         string        `json:"level"`
	MedicalNotes  string        `json:"medicalNotes,omitempty"`
	Accommodation Accommodation `json:"accommodation"`
}

// PaymentInfo records the gateway identifiers and the amount charged for
// one registration.  Amount is in whole rupees, matching what the attendee
// was shown; the paise amount exists only on the gateway order.
type PaymentInfo struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// RegistrationRecord is one completed, payment-verified registration.
// Records are append-only: nothing in this system updates or deletes them.
type RegistrationRecord struct {
	ID               string      `json:"id"`
	Devotee          Devotee     `json:"devotee"`
	Payment          PaymentInfo `json:"payment"`
	RegistrationTime time.Time   `json:"registrationTime"`
}

// RegistrationStats aggregates the store for the admin dashboard.
//
// Fields:
//  TotalRegistrations   – number of records.
//  RoomBookings         – records with room accommodation.
//  DormitoryBookings    – records with dormitory accommodation.
//  TotalRevenue         – summed payment amounts in rupees.
//  FacilitatorBreakdown – registration count per facilitator.
//  AreaBreakdown        – registration count per area.
//  LevelBreakdown       – registration count per level.
type RegistrationStats struct {
	TotalRegistrations   int              `json:"totalRegistrations"`
	RoomBookings         int              `json:"roomBookings"`
	DormitoryBookings    int              `json:"dormitoryBookings"`
	TotalRevenue         int64            `json:"totalRevenue"`
	FacilitatorBreakdown map[string]int   `json:"facilitatorBreakdown"`
	AreaBreakdown        map[string]int   `json:"areaBreakdown"`
	LevelBreakdown       map[string]int   `json:"levelBreakdown"`
}

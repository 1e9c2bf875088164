package application

import "time"

// User is the profile held by a signed-in session. It is the JSON record
// persisted in the client's local storage.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RegisterParams captures the sign-up form.
type RegisterParams struct {
	Name            string
	Email           string
	Phone           string
	Age             string
	Password        string
	ConfirmPassword string
}

// FormState is the lifecycle position of a simulated form submission.
type FormState string

const (
	// FormIdle is the editable state, before submission or after a rejected one.
	FormIdle FormState = "idle"
	// FormSubmitting is held while the simulated request is in flight.
	FormSubmitting FormState = "submitting"
	// FormSuccess is reached once the simulated request completes.
	FormSuccess FormState = "success"
)

// BookingDraft is the rental request form. It is never persisted.
type BookingDraft struct {
	FullName        string `json:"fullName"`
	Age             string `json:"age"`
	ScooterID       string `json:"scooterId"`
	RentalDate      string `json:"rentalDate"`
	RentalTime      string `json:"rentalTime"`
	ReturnDate      string `json:"returnDate"`
	ReturnTime      string `json:"returnTime"`
	Location        string `json:"location"`
	IsDelivery      bool   `json:"isDelivery"`
	DeliveryAddress string `json:"deliveryAddress"`
}

// BookingConfirmation is shown once a booking submission succeeds.
type BookingConfirmation struct {
	OrderID     string
	ScooterID   string
	ScooterName string
	QRCodeURL   string
	SubmittedAt time.Time
}

// ContactMessage is the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

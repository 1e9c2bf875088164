package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/format"
)

// Field error messages of the rental form.
const (
	MsgFullNameRequired        = "Le nom complet est requis"
	MsgAgeRequired             = "L'âge est requis"
	MsgAgeTooLow               = "Vous devez avoir au moins 16 ans"
	MsgScooterRequired         = "Veuillez sélectionner un scooter"
	MsgRentalDateRequired      = "La date de location est requise"
	MsgRentalTimeRequired      = "L'heure de location est requise"
	MsgReturnDateRequired      = "La date de retour est requise"
	MsgReturnTimeRequired      = "L'heure de retour est requise"
	MsgLocationRequired        = "Le lieu de ramassage est requis"
	MsgDeliveryAddressRequired = "L'adresse de livraison est requise"
	MsgReturnBeforeRental      = "La date de retour doit suivre la date de location"
	MsgRentalDateInPast        = "La date de location ne peut pas être passée"
)

const dateLayout = "2006-01-02"

// ValidateBooking maps every failing field of draft to its message. The draft
// is valid iff the result is empty.
func ValidateBooking(draft BookingDraft) map[string]string {
	errs := make(map[string]string)
	required := func(field, value, message string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = message
		}
	}

	required("fullName", draft.FullName, MsgFullNameRequired)
	if strings.TrimSpace(draft.Age) == "" {
		errs["age"] = MsgAgeRequired
	} else if n, ok := parseAge(draft.Age); !ok || n < MinRenterAge {
		errs["age"] = MsgAgeTooLow
	}
	required("scooterId", draft.ScooterID, MsgScooterRequired)
	required("rentalDate", draft.RentalDate, MsgRentalDateRequired)
	required("rentalTime", draft.RentalTime, MsgRentalTimeRequired)
	required("returnDate", draft.ReturnDate, MsgReturnDateRequired)
	required("returnTime", draft.ReturnTime, MsgReturnTimeRequired)
	required("location", draft.Location, MsgLocationRequired)
	if draft.IsDelivery {
		required("deliveryAddress", draft.DeliveryAddress, MsgDeliveryAddressRequired)
	}

	if _, failed := errs["returnDate"]; !failed {
		rental, rErr := time.Parse(dateLayout, strings.TrimSpace(draft.RentalDate))
		ret, retErr := time.Parse(dateLayout, strings.TrimSpace(draft.ReturnDate))
		if rErr == nil && retErr == nil && ret.Before(rental) {
			errs["returnDate"] = MsgReturnBeforeRental
		}
	}

	return errs
}

// parseAge reads a numeric age the way a browser number field does.
func parseAge(value string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// BookingForm is the page-local state of the rental form.
type BookingForm struct {
	Draft        BookingDraft
	Errors       map[string]string
	State        FormState
	Confirmation *BookingConfirmation
}

// NewBookingForm returns an idle form, pre-filled from the signed-in user.
func NewBookingForm(user *User) *BookingForm {
	form := &BookingForm{State: FormIdle}
	if user != nil {
		form.Draft.FullName = user.Name
		if user.Age > 0 {
			form.Draft.Age = strconv.Itoa(user.Age)
		}
	}
	return form
}

// ScooterCatalog resolves the scooters offered on the form.
type ScooterCatalog interface {
	Scooter(id string) (catalog.Scooter, bool)
}

// BookingService runs the simulated submission of rental requests.
type BookingService struct {
	scooters     ScooterCatalog
	delay        Delay
	idGenerator  func() string
	now          func() time.Time
	onTransition func(from, to FormState)
	logger       *slog.Logger
}

// NewBookingService wires a BookingService. scooters may be nil to skip the
// catalog membership check.
func NewBookingService(scooters ScooterCatalog, delay Delay, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "order-" + uuid.NewString() }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		scooters:    scooters,
		delay:       delay,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// OnTransition registers a hook observing every form state change.
func (s *BookingService) OnTransition(fn func(from, to FormState)) {
	s.onTransition = fn
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) transition(form *BookingForm, to FormState) {
	from := form.State
	form.State = to
	if s.onTransition != nil && from != to {
		s.onTransition(from, to)
	}
}

// Validate runs ValidateBooking plus the checks that need the catalog and
// the clock.
func (s *BookingService) Validate(draft BookingDraft) map[string]string {
	v := validationErrorFrom(ValidateBooking(draft))
	v.merge(s.scheduleProblems(draft))
	return v.FieldErrors
}

// scheduleProblems reports an unknown scooter or a rental date before today.
// Fields that already failed ValidateBooking keep their first message.
func (s *BookingService) scheduleProblems(draft BookingDraft) *ValidationError {
	v := &ValidationError{}
	if id := strings.TrimSpace(draft.ScooterID); id != "" && s.scooters != nil {
		if _, ok := s.scooters.Scooter(id); !ok {
			v.add("scooterId", MsgScooterRequired)
		}
	}
	rental, err := time.Parse(dateLayout, strings.TrimSpace(draft.RentalDate))
	if err == nil {
		today, _ := time.Parse(dateLayout, s.MinRentalDate())
		if rental.Before(today) {
			v.add("rentalDate", MsgRentalDateInPast)
		}
	}
	return v
}

// MinRentalDate is today's date on the service clock, in UTC. Earlier
// rental dates are rejected.
func (s *BookingService) MinRentalDate() string {
	return s.now().UTC().Format(dateLayout)
}

// Submit validates the form and, when valid, simulates sending it: the form
// is submitting for the configured delay, then succeeds and its draft is
// cleared. Invalid forms stay idle and never enter submitting. A cancelled
// wait returns the form to idle with its draft intact.
func (s *BookingService) Submit(ctx context.Context, form *BookingForm) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if form == nil {
		return fmt.Errorf("booking form is nil")
	}
	if form.State == FormSuccess {
		return ErrAlreadySubmitted
	}

	logger := s.loggerWith(ctx, "Submit", "scooter_id", strings.TrimSpace(form.Draft.ScooterID))
	defer func() {
		if err != nil {
			logger.InfoContext(ctx, "booking not submitted", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking confirmed", "order_id", form.Confirmation.OrderID)
	}()

	form.Errors = s.Validate(form.Draft)
	if len(form.Errors) > 0 {
		return validationErrorFrom(form.Errors)
	}

	s.transition(form, FormSubmitting)
	if waitErr := s.delay.Wait(ctx); waitErr != nil {
		s.transition(form, FormIdle)
		return fmt.Errorf("%w: %w", ErrSubmissionCancelled, waitErr)
	}

	scooterID := strings.TrimSpace(form.Draft.ScooterID)
	confirmation := &BookingConfirmation{
		OrderID:     s.idGenerator(),
		ScooterID:   scooterID,
		ScooterName: scooterID,
		SubmittedAt: s.now(),
	}
	if s.scooters != nil {
		if scooter, ok := s.scooters.Scooter(scooterID); ok {
			confirmation.ScooterName = scooter.Name
		}
	}
	confirmation.QRCodeURL = format.QRCodeURL(confirmation.OrderID)

	form.Confirmation = confirmation
	form.Draft = BookingDraft{}
	form.Errors = nil
	s.transition(form, FormSuccess)
	return nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Field error messages of the contact form.
const (
	MsgNameRequired    = "Le nom est requis"
	MsgEmailRequired   = "L'email est requis"
	MsgMessageRequired = "Le message est requis"
)

// ValidateContact maps every failing field of msg to its message.
func ValidateContact(msg ContactMessage) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(msg.Name) == "" {
		errs["name"] = MsgNameRequired
	}
	email := strings.TrimSpace(msg.Email)
	switch {
	case email == "":
		errs["email"] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		errs["email"] = MsgInvalidEmail
	}
	if strings.TrimSpace(msg.Message) == "" {
		errs["message"] = MsgMessageRequired
	}
	return errs
}

// ContactForm is the page-local state of the contact form.
type ContactForm struct {
	Message ContactMessage
	Errors  map[string]string
	State   FormState
}

// NewContactForm returns an idle form, pre-filled from the signed-in user.
func NewContactForm(user *User) *ContactForm {
	form := &ContactForm{State: FormIdle}
	if user != nil {
		form.Message.Name = user.Name
		form.Message.Email = user.Email
	}
	return form
}

// ContactService simulates sending contact messages. Nothing leaves the
// process; the message is only logged.
type ContactService struct {
	delay  Delay
	logger *slog.Logger
}

// NewContactService wires a ContactService.
func NewContactService(delay Delay, logger *slog.Logger) *ContactService {
	return &ContactService{delay: delay, logger: defaultLogger(logger)}
}

// Submit validates the form and simulates sending it. On success the form is
// cleared and marked submitted.
func (s *ContactService) Submit(ctx context.Context, form *ContactForm) error {
	if s == nil {
		return fmt.Errorf("ContactService is nil")
	}
	if form == nil {
		return fmt.Errorf("contact form is nil")
	}
	logger := serviceLogger(ctx, s.logger, "ContactService", "Submit")

	form.Errors = ValidateContact(form.Message)
	if len(form.Errors) > 0 {
		err := validationErrorFrom(form.Errors)
		logger.InfoContext(ctx, "contact message rejected", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	form.State = FormSubmitting
	if err := s.delay.Wait(ctx); err != nil {
		form.State = FormIdle
		logger.WarnContext(ctx, "contact message abandoned", "error", err)
		return fmt.Errorf("%w: %w", ErrSubmissionCancelled, err)
	}

	logger.InfoContext(ctx, "contact message received",
		"email", strings.TrimSpace(form.Message.Email),
		"length", len([]rune(form.Message.Message)),
	)
	form.Message = ContactMessage{}
	form.Errors = nil
	form.State = FormSuccess
	return nil
}

package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/yasso2006/2M-perfume-store/internal/notify"
)

// ContactService handles the contact form with the same guard-and-notify
// protocol as order submission.
type ContactService struct {
	api     ContactAPI
	notices *notify.Scheduler

	submitting atomic.Bool
}

func NewContactService(api ContactAPI, notices *notify.Scheduler) *ContactService {
	return &ContactService{
		api:     api,
		notices: notices,
	}
}

func (s *ContactService) Submit(ctx context.Context, form ContactForm) error {
	if !s.submitting.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer s.submitting.Store(false)

	var fields []string
	if strings.TrimSpace(form.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(form.Email) == "" {
		fields = append(fields, "email")
	}
	if strings.TrimSpace(form.Message) == "" {
		fields = append(fields, "message")
	}
	if len(fields) > 0 {
		msg := "missing required fields: " + strings.Join(fields, ", ")
		s.notices.Enqueue(msg, notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	if !validEmail(form.Email) {
		s.notices.Enqueue("invalid email address", notify.KindWarning, noticeTTL)
		return fmt.Errorf("%w: email", ErrValidation)
	}

	if err := s.api.SubmitContact(ctx, &form); err != nil {
		s.notices.Enqueue(failureMessage(err), notify.KindError, noticeTTL)
		return err
	}

	s.notices.Enqueue("message sent, we will get back to you", notify.KindSuccess, noticeTTL)
	return nil
}

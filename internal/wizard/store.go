// Package wizard holds the registration wizard state machine: where the user
// stands, what they have entered so far, and whether a submission is running.
// It performs no validation and no I/O; callers validate a step's input before
// merging it.
package wizard

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrAlreadyComplete = errors.New("wizard: registration already complete")
	ErrEmptyID         = errors.New("wizard: empty registration id")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorValue is a failure kept for display: a message and, for structured
// backend rejections, the per-field details.
type ErrorValue struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *ErrorValue) Error() string {
	return e.Message
}

type Store struct {
	mode       EntryMode
	position   Position
	data       Draft
	isLoading  bool
	since      *time.Time
	err        *ErrorValue
	generation int
}

func New(mode EntryMode) *Store {
	if !mode.Valid() {
		mode = EntryPlain
	}
	return &Store{
		mode:     mode,
		position: mode.initialPosition(),
		data:     DefaultDraft(),
	}
}

func (s *Store) Mode() EntryMode        { return s.mode }
func (s *Store) Position() Position     { return s.position }
func (s *Store) Data() Draft            { return s.data }
func (s *Store) IsLoading() bool        { return s.isLoading }
func (s *Store) Err() *ErrorValue       { return s.err }
func (s *Store) Generation() int        { return s.generation }
func (s *Store) CurrentStep() int       { return s.position.Number() }
func (s *Store) Complete() bool         { return s.data.RegistrationComplete }
func (s *Store) RegistrationID() string { return s.data.RegistrationID }

// Submitted reports whether the backend already holds this draft. From then on
// the draft is frozen: only the submission itself may be retried.
func (s *Store) Submitted() bool { return s.data.RegistrationID != "" }

// Advance moves to the next form step, saturating at review. Leaving review
// for the success view happens only through MarkComplete.
func (s *Store) Advance() {
	step, ok := s.position.Step()
	if !ok {
		return
	}
	s.position = Form(min(step+1, LastStep))
}

// Retreat moves to the previous form step, saturating at personal info.
func (s *Store) Retreat() {
	step, ok := s.position.Step()
	if !ok {
		return
	}
	s.position = Form(max(step-1, FirstStep))
}

func (s *Store) JumpTo(p Position) {
	s.position = p
}

func (s *Store) Merge(p Patch) {
	p.applyTo(&s.data)
}

func (s *Store) SetPhoto(photo Photo, preview string) {
	s.data.Photo = &photo
	s.data.PhotoPreview = preview
}

func (s *Store) ClearPhoto() {
	s.data.Photo = nil
	s.data.PhotoPreview = ""
}

// StartLoading marks an operation as running since at.
func (s *Store) StartLoading(at time.Time) {
	s.isLoading = true
	s.since = &at
}

func (s *Store) StopLoading() {
	s.isLoading = false
	s.since = nil
}

// ExpireLoading clears a loading flag older than after, as left behind by an
// operation that never finished. It reports whether it did.
func (s *Store) ExpireLoading(now time.Time, after time.Duration) bool {
	if !s.isLoading {
		return false
	}
	if s.since != nil && now.Sub(*s.since) < after {
		return false
	}
	s.StopLoading()
	return true
}

func (s *Store) SetError(e *ErrorValue) {
	s.err = e
}

func (s *Store) ClearError() {
	s.err = nil
}

// AssignRegistrationID records the identifier returned by the backend before
// the registration is complete, so a failed photo upload can be retried
// without creating the registration twice.
func (s *Store) AssignRegistrationID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	if s.data.RegistrationComplete {
		return ErrAlreadyComplete
	}
	s.data.RegistrationID = id
	return nil
}

// MarkComplete finishes the registration and moves to the success view.
func (s *Store) MarkComplete(id string) error {
	if s.data.RegistrationComplete {
		return ErrAlreadyComplete
	}
	if err := s.AssignRegistrationID(id); err != nil {
		return err
	}
	s.data.RegistrationComplete = true
	s.position = Success()
	return nil
}

func (s *Store) MarkPaymentComplete() {
	s.data.PaymentComplete = true
}

// Reset discards the draft and starts a new registration at the first form
// step, whatever the entry mode.
func (s *Store) Reset() {
	s.position = Form(FirstStep)
	s.data = DefaultDraft()
	s.StopLoading()
	s.err = nil
	s.generation++
}

func (s *Store) Route() View {
	if s.position.Kind() == KindAgentGate {
		return View{Kind: KindAgentGate}
	}
	if s.position.Kind() == KindSuccess || s.data.RegistrationComplete {
		return View{Kind: KindSuccess}
	}
	step, _ := s.position.Step()
	return View{Kind: KindForm, Step: step}
}

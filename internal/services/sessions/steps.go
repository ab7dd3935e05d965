package sessions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/helpers"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const validationFailed = "Input validation failed"

func (s *Session) SubmitPersonalInfo(ctx context.Context, id uuid.UUID, in dto.PersonalInfoInput) (*dto.WizardState, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.MiddleName = strings.TrimSpace(in.MiddleName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.NIN = strings.TrimSpace(in.NIN)

	return s.submitStep(ctx, id, wizard.StepPersonalInfo, in, wizard.Patch{
		FirstName:   lo.ToPtr(in.FirstName),
		MiddleName:  lo.ToPtr(in.MiddleName),
		LastName:    lo.ToPtr(in.LastName),
		DateOfBirth: lo.ToPtr(in.DateOfBirth),
		Sex:         lo.ToPtr(in.Sex),
		PhoneNumber: lo.ToPtr(in.PhoneNumber),
		NIN:         lo.ToPtr(in.NIN),
	})
}

func (s *Session) SubmitLocation(ctx context.Context, id uuid.UUID, in dto.LocationInput) (*dto.WizardState, error) {
	in.Address = strings.TrimSpace(in.Address)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.State == "" {
		in.State = constants.State
	}

	return s.submitStep(ctx, id, wizard.StepLocation, in, wizard.Patch{
		Address: lo.ToPtr(in.Address),
		State:   lo.ToPtr(in.State),
		LGA:     lo.ToPtr(in.LGA),
		Zone:    lo.ToPtr(in.Zone),
		Unit:    lo.ToPtr(in.Unit),
	})
}

func (s *Session) SubmitEmergencyContact(ctx context.Context, id uuid.UUID, in dto.EmergencyContactInput) (*dto.WizardState, error) {
	in.EmergencyContactName = strings.TrimSpace(in.EmergencyContactName)
	in.EmergencyContactAddress = strings.TrimSpace(in.EmergencyContactAddress)
	in.EmergencyContactPhone = strings.TrimSpace(in.EmergencyContactPhone)

	return s.submitStep(ctx, id, wizard.StepEmergencyContact, in, wizard.Patch{
		EmergencyContactName:    lo.ToPtr(in.EmergencyContactName),
		EmergencyContactAddress: lo.ToPtr(in.EmergencyContactAddress),
		EmergencyContactPhone:   lo.ToPtr(in.EmergencyContactPhone),
	})
}

func (s *Session) SubmitBeneficiaries(ctx context.Context, id uuid.UUID, in dto.BeneficiariesInput) (*dto.WizardState, error) {
	in.Beneficiary1Name = strings.TrimSpace(in.Beneficiary1Name)
	in.Beneficiary1Address = strings.TrimSpace(in.Beneficiary1Address)
	in.Beneficiary1Phone = strings.TrimSpace(in.Beneficiary1Phone)
	in.Beneficiary2Name = strings.TrimSpace(in.Beneficiary2Name)
	in.Beneficiary2Address = strings.TrimSpace(in.Beneficiary2Address)
	in.Beneficiary2Phone = strings.TrimSpace(in.Beneficiary2Phone)

	return s.submitStep(ctx, id, wizard.StepBeneficiaries, in, wizard.Patch{
		Beneficiary1Name:         lo.ToPtr(in.Beneficiary1Name),
		Beneficiary1Address:      lo.ToPtr(in.Beneficiary1Address),
		Beneficiary1Phone:        lo.ToPtr(in.Beneficiary1Phone),
		Beneficiary1Relationship: lo.ToPtr(in.Beneficiary1Relationship),
		Beneficiary2Name:         lo.ToPtr(in.Beneficiary2Name),
		Beneficiary2Address:      lo.ToPtr(in.Beneficiary2Address),
		Beneficiary2Phone:        lo.ToPtr(in.Beneficiary2Phone),
		Beneficiary2Relationship: lo.ToPtr(in.Beneficiary2Relationship),
	})
}

// submitStep validates input for step and, only when it is valid, merges
// patch and advances. An invalid input leaves the store untouched.
func (s *Session) submitStep(ctx context.Context, id uuid.UUID, step wizard.FormStep, input any, patch wizard.Patch) (*dto.WizardState, error) {
	return s.apply(ctx, id, func(store *wizard.Store) error {
		if err := RequireStep(store, step); err != nil {
			return err
		}

		fieldErrs, err := s.Validator.Struct(input)
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			s.Metrics.IncStep(step.String(), false)
			return svc.BadRequest(validationFailed, fieldErrs...)
		}

		store.Merge(patch)
		store.ClearError()
		store.Advance()
		s.Metrics.IncStep(step.String(), true)
		return nil
	})
}

// UploadPhoto stores the passport photo on the draft with its preview. It
// does not advance; ContinueFromPhoto does.
func (s *Session) UploadPhoto(ctx context.Context, id uuid.UUID, filename string, content []byte) (*dto.WizardState, error) {
	if len(content) == 0 {
		return nil, svc.BadRequest(validationFailed, wizard.FieldError{Field: "photo", Message: "photo is required"})
	}
	if len(content) > constants.MaxPhotoSize {
		return nil, &svc.APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Photo must be at most %d MB", constants.MaxPhotoSize>>20),
		}
	}

	contentType := http.DetectContentType(content)
	if !lo.Contains(constants.AllowedPhotoTypes, contentType) {
		return nil, svc.BadRequest(validationFailed, wizard.FieldError{
			Field:   "photo",
			Message: "photo must be a JPEG or PNG image",
		})
	}

	return s.apply(ctx, id, func(store *wizard.Store) error {
		if err := RequireStep(store, wizard.StepPhoto); err != nil {
			return err
		}
		store.SetPhoto(wizard.Photo{
			Filename:    filename,
			ContentType: contentType,
			Content:     content,
		}, helpers.DataURL(contentType, content))
		return nil
	})
}

func (s *Session) RemovePhoto(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	return s.apply(ctx, id, func(store *wizard.Store) error {
		if err := RequireStep(store, wizard.StepPhoto); err != nil {
			return err
		}
		store.ClearPhoto()
		return nil
	})
}

// ContinueFromPhoto leaves the photo step. A photo is required to go on.
func (s *Session) ContinueFromPhoto(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	return s.apply(ctx, id, func(store *wizard.Store) error {
		if err := RequireStep(store, wizard.StepPhoto); err != nil {
			return err
		}
		if !store.Data().HasPhoto() {
			s.Metrics.IncStep(wizard.StepPhoto.String(), false)
			return svc.BadRequest(validationFailed, wizard.FieldError{Field: "photo", Message: "photo is required"})
		}
		store.ClearError()
		store.Advance()
		s.Metrics.IncStep(wizard.StepPhoto.String(), true)
		return nil
	})
}

package validation

import (
	"testing"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func validPersonalInfo() dto.PersonalInfoInput {
	return dto.PersonalInfoInput{
		FirstName:   "Amina",
		LastName:    "Bello",
		DateOfBirth: "1990-01-01",
		Sex:         "F",
		PhoneNumber: "08012345678",
		NIN:         "12345678901",
	}
}

func fields(errs []wizard.FieldError) []string {
	return lo.Map(errs, func(e wizard.FieldError, _ int) string { return e.Field })
}

func TestPersonalInfo(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		mutate     func(*dto.PersonalInfoInput)
		wantFields []string
	}{
		{"valid input", func(*dto.PersonalInfoInput) {}, nil},
		{"one letter first name", func(in *dto.PersonalInfoInput) { in.FirstName = "A" }, []string{"first_name"}},
		{"digits in last name", func(in *dto.PersonalInfoInput) { in.LastName = "B3llo" }, []string{"last_name"}},
		{"apostrophe and hyphen allowed", func(in *dto.PersonalInfoInput) { in.LastName = "O'Neil-Bello" }, nil},
		{"short nin", func(in *dto.PersonalInfoInput) { in.NIN = "1234567890" }, []string{"nin"}},
		{"nin with letters", func(in *dto.PersonalInfoInput) { in.NIN = "1234567890A" }, []string{"nin"}},
		{"unknown sex", func(in *dto.PersonalInfoInput) { in.Sex = "X" }, []string{"sex"}},
		{"bad date", func(in *dto.PersonalInfoInput) { in.DateOfBirth = "01/01/1990" }, []string{"date_of_birth"}},
		{"short phone", func(in *dto.PersonalInfoInput) { in.PhoneNumber = "0801234" }, []string{"phone_number"}},
		{"middle name optional", func(in *dto.PersonalInfoInput) { in.MiddleName = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPersonalInfo()
			tt.mutate(&in)

			errs, err := v.Struct(in)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantFields, fields(errs))
		})
	}
}

func TestFirstNameMessage(t *testing.T) {
	v := newValidator(t)
	in := validPersonalInfo()
	in.FirstName = "A"

	errs, err := v.Struct(in)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "first_name", errs[0].Field)
	assert.Contains(t, errs[0].Message, "at least 2 characters")
}

func TestLocation(t *testing.T) {
	v := newValidator(t)
	valid := dto.LocationInput{
		Address: "12 Ahmadu Bello Way",
		State:   "Kaduna",
		LGA:     "Kaduna North",
		Zone:    "Kaduna Region",
		Unit:    "Unit 4",
	}

	errs, err := v.Struct(valid)
	require.NoError(t, err)
	assert.Empty(t, errs)

	bad := valid
	bad.Zone = "Lagos Region"
	bad.LGA = "Ikeja"
	bad.State = "Lagos"
	bad.Address = "short"
	errs, err = v.Struct(bad)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"zone", "lga", "state", "address"}, fields(errs))

	for _, e := range errs {
		if e.Field == "zone" {
			assert.Equal(t, "zone must be one of the Kaduna zones", e.Message)
		}
	}
}

func TestBeneficiaries(t *testing.T) {
	v := newValidator(t)
	primary := dto.BeneficiariesInput{
		Beneficiary1Name:         "Musa Bello",
		Beneficiary1Address:      "12 Ahmadu Bello Way",
		Beneficiary1Phone:        "08011111111",
		Beneficiary1Relationship: "Spouse",
	}

	t.Run("secondary beneficiary may be omitted", func(t *testing.T) {
		errs, err := v.Struct(primary)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("partial secondary beneficiary is rejected", func(t *testing.T) {
		in := primary
		in.Beneficiary2Name = "Zainab Bello"
		errs, err := v.Struct(in)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"beneficiary2_address", "beneficiary2_phone", "beneficiary2_relationship"},
			fields(errs))
	})

	t.Run("complete secondary beneficiary passes", func(t *testing.T) {
		in := primary
		in.Beneficiary2Name = "Zainab Bello"
		in.Beneficiary2Address = "12 Ahmadu Bello Way"
		in.Beneficiary2Phone = "08022222222"
		in.Beneficiary2Relationship = "Child"
		errs, err := v.Struct(in)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("relationship must be from the list", func(t *testing.T) {
		in := primary
		in.Beneficiary1Relationship = "Neighbour"
		errs, err := v.Struct(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"beneficiary1_relationship"}, fields(errs))
	})
}

package wizard

import "github.com/Jidetireni/firstcare-registration/internal/constants"

type Photo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Draft is the registration record accumulated across the wizard steps.
type Draft struct {
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Sex         string `json:"sex"`
	PhoneNumber string `json:"phone_number"`
	NIN         string `json:"nin"`

	Address string `json:"address"`
	State   string `json:"state"`
	LGA     string `json:"lga"`
	Zone    string `json:"zone"`
	Unit    string `json:"unit"`

	Photo        *Photo `json:"photo,omitempty"`
	PhotoPreview string `json:"photo_preview"`

	EmergencyContactName    string `json:"emergency_contact_name"`
	EmergencyContactAddress string `json:"emergency_contact_address"`
	EmergencyContactPhone   string `json:"emergency_contact_phone"`

	Beneficiary1Name         string `json:"beneficiary1_name"`
	Beneficiary1Address      string `json:"beneficiary1_address"`
	Beneficiary1Phone        string `json:"beneficiary1_phone"`
	Beneficiary1Relationship string `json:"beneficiary1_relationship"`
	Beneficiary2Name         string `json:"beneficiary2_name"`
	Beneficiary2Address      string `json:"beneficiary2_address"`
	Beneficiary2Phone        string `json:"beneficiary2_phone"`
	Beneficiary2Relationship string `json:"beneficiary2_relationship"`

	AgentCode string `json:"agent_code,omitempty"`
	AgentName string `json:"agent_name,omitempty"`

	RegistrationID       string `json:"registration_id,omitempty"`
	RegistrationComplete bool   `json:"registration_complete"`
	PaymentComplete      bool   `json:"payment_complete"`
}

func DefaultDraft() Draft {
	return Draft{State: constants.State}
}

func (d Draft) HasPhoto() bool {
	return d.Photo != nil && len(d.Photo.Content) > 0
}

func (d Draft) HasAgent() bool {
	return d.AgentCode != "" && d.AgentName != ""
}

// Patch is a partial update of a Draft. A nil field means the key was not
// supplied and the draft keeps its current value. The backend-assigned fields
// are deliberately absent.
type Patch struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	DateOfBirth *string
	Sex         *string
	PhoneNumber *string
	NIN         *string

	Address *string
	State   *string
	LGA     *string
	Zone    *string
	Unit    *string

	EmergencyContactName    *string
	EmergencyContactAddress *string
	EmergencyContactPhone   *string

	Beneficiary1Name         *string
	Beneficiary1Address      *string
	Beneficiary1Phone        *string
	Beneficiary1Relationship *string
	Beneficiary2Name         *string
	Beneficiary2Address      *string
	Beneficiary2Phone        *string
	Beneficiary2Relationship *string

	AgentCode *string
	AgentName *string
}

func (p Patch) applyTo(d *Draft) {
	set(&d.FirstName, p.FirstName)
	set(&d.MiddleName, p.MiddleName)
	set(&d.LastName, p.LastName)
	set(&d.DateOfBirth, p.DateOfBirth)
	set(&d.Sex, p.Sex)
	set(&d.PhoneNumber, p.PhoneNumber)
	set(&d.NIN, p.NIN)

	set(&d.Address, p.Address)
	set(&d.State, p.State)
	set(&d.LGA, p.LGA)
	set(&d.Zone, p.Zone)
	set(&d.Unit, p.Unit)

	set(&d.EmergencyContactName, p.EmergencyContactName)
	set(&d.EmergencyContactAddress, p.EmergencyContactAddress)
	set(&d.EmergencyContactPhone, p.EmergencyContactPhone)

	set(&d.Beneficiary1Name, p.Beneficiary1Name)
	set(&d.Beneficiary1Address, p.Beneficiary1Address)
	set(&d.Beneficiary1Phone, p.Beneficiary1Phone)
	set(&d.Beneficiary1Relationship, p.Beneficiary1Relationship)
	set(&d.Beneficiary2Name, p.Beneficiary2Name)
	set(&d.Beneficiary2Address, p.Beneficiary2Address)
	set(&d.Beneficiary2Phone, p.Beneficiary2Phone)
	set(&d.Beneficiary2Relationship, p.Beneficiary2Relationship)

	set(&d.AgentCode, p.AgentCode)
	set(&d.AgentName, p.AgentName)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

package constants

const (
	RegistrationFee    int64 = 6000
	DailyDue           int64 = 200
	WorkingDaysPerWeek       = 6
	State                    = "Kaduna"
	MaxPhotoSize             = 5 << 20
	AgentCodeMinLength       = 6
	NINLength                = 11
	OfficeEmail              = "admin@firstcaregroup.com"
	OrganisationName         = "Firstcare Health Partners"
)

type PaymentType string

const (
	PaymentTypeRegistration PaymentType = "registration"
	PaymentTypeDailyDues    PaymentType = "daily_dues"
)

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusPending   MembershipStatus = "pending"
	MembershipStatusSuspended MembershipStatus = "suspended"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var SexOptions = []Option{
	{Value: "M", Label: "Male"},
	{Value: "F", Label: "Female"},
}

var Zones = []string{
	"Zaria Region",
	"Kaduna Region",
	"Kafanchan Region",
}

var LGAs = []string{
	"Birnin Gwari",
	"Chikun",
	"Giwa",
	"Igabi",
	"Ikara",
	"Jaba",
	"Jema'a",
	"Kachia",
	"Kaduna North",
	"Kaduna South",
	"Kagarko",
	"Kajuru",
	"Kaura",
	"Kauru",
	"Kubau",
	"Kudan",
	"Lere",
	"Makarfi",
	"Sabon Gari",
	"Sanga",
	"Soba",
	"Zangon Kataf",
	"Zaria",
}

var Relationships = []string{
	"Spouse",
	"Parent",
	"Child",
	"Sibling",
	"Relative",
	"Friend",
	"Other",
}

var AllowedPhotoTypes = []string{
	"image/jpeg",
	"image/png",
}

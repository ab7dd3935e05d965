package seed

import "github.com/Jidetireni/firstcare-registration/internal/constants"

type SeedSubmission struct {
	RegistrationID string
	FirstName      string
	LastName       string
	PhoneNumber    string
	NIN            string
	Zone           string
	LGA            string
	Unit           string
	AgentCode      string
	PhotoUploaded  bool
	Payments       []SeedPayment
}

type SeedPayment struct {
	Type   constants.PaymentType
	Amount int64
}

// Submissions mirrors the sample member the backend's own init script
// creates, so the ledger and the backend agree in development.
var Submissions = []SeedSubmission{
	{
		RegistrationID: "FHP20241209ADMIN01",
		FirstName:      "Admin",
		LastName:       "User",
		PhoneNumber:    "08012345678",
		NIN:            "12345678901",
		Zone:           "Kaduna Region",
		LGA:            "Kaduna North",
		Unit:           "Admin Unit",
		PhotoUploaded:  false,
		Payments: []SeedPayment{
			{Type: constants.PaymentTypeRegistration, Amount: constants.RegistrationFee},
			{Type: constants.PaymentTypeDailyDues, Amount: 12 * constants.DailyDue},
		},
	},
	{
		RegistrationID: "FHP20241210AG000001",
		FirstName:      "Hauwa",
		LastName:       "Abdullahi",
		PhoneNumber:    "08031234567",
		NIN:            "23456789012",
		Zone:           "Zaria Region",
		LGA:            "Sabon Gari",
		Unit:           "Samaru Market",
		AgentCode:      "AG847291",
		PhotoUploaded:  true,
		Payments: []SeedPayment{
			{Type: constants.PaymentTypeRegistration, Amount: constants.RegistrationFee},
		},
	},
}

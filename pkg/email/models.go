package email

type EmailTemplateType string

const (
	EmailTemplateTypeRegistrationSubmitted EmailTemplateType = "registration_submitted"
	EmailTemplateTypePaymentReceived       EmailTemplateType = "payment_received"
)

type SendEmailInput struct {
	To      string
	Subject string
	Body    string
}

type RegistrationSubmittedData struct {
	Organisation   string
	RegistrationID string
	FullName       string
	PhoneNumber    string
	Zone           string
	LGA            string
	Unit           string
	AgentCode      string
	AgentName      string
	PhotoUploaded  bool
}

type PaymentReceivedData struct {
	Organisation   string
	RegistrationID string
	PaymentType    string
	Amount         int64
	Reference      string
}

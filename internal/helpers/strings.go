package helpers

import (
	"math/rand"
)

func GenerateRandomString(length int) string {
	allowedChars := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = allowedChars[rand.Intn(len(allowedChars))]
	}
	return string(b)
}

// PaymentReference builds a human-readable payment reference such as
// "PAY-REG-7K2M9QXA".
func PaymentReference(paymentType string) string {
	prefix := "DUE"
	if paymentType == "registration" {
		prefix = "REG"
	}
	return "PAY-" + prefix + "-" + GenerateRandomString(8)
}

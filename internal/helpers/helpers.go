package helpers

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashValue is used to store identifiers such as the NIN without keeping the
// raw value.
func HashValue(value string) string {
	hasher := sha256.New()
	hasher.Write([]byte(value))
	return hex.EncodeToString(hasher.Sum(nil))
}

func DataURL(contentType string, content []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(content))
}

// CardFilename is the download name of a member's ID card.
func CardFilename(firstName, lastName string) string {
	clean := func(s string) string {
		return strings.Join(strings.Fields(s), "_")
	}
	return fmt.Sprintf("%s_%s_ID_Card.pdf", clean(firstName), clean(lastName))
}

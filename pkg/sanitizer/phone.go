package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country code are tried against these regions in order.
var supportedRegions = []string{
	"RU",
	"KZ",
	"BY",
}

// NormalizePhone returns the E.164 form of phone, or "" when no supported
// region yields a valid number.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		return formatIfValid(phone, "")
	}
	for _, region := range supportedRegions {
		if formatted := formatIfValid(phone, region); formatted != "" {
			return formatted
		}
	}
	return ""
}

func formatIfValid(phone, region string) string {
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

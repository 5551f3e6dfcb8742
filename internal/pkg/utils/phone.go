package utils

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var reNonDigits = regexp.MustCompile(`\D`)

// NormalizeMpesaPhone converts local and international spellings into 2547XXXXXXXX.
func NormalizeMpesaPhone(input string) string {
	digits := reNonDigits.ReplaceAllString(input, "")
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "0"):
		return constvars.MpesaCountryCode + digits[1:]
	case strings.HasPrefix(digits, constvars.MpesaCountryCode):
		return digits
	default:
		return constvars.MpesaCountryCode + digits
	}
}

// ValidateMpesaPhone checks that a normalized number is a possible Kenyan number.
func ValidateMpesaPhone(digits string) error {
	number, err := phonenumbers.Parse("+"+digits, constvars.MpesaRegion)
	if err != nil {
		return err
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return fmt.Errorf("phone %s is not a possible number", digits)
	}
	if phonenumbers.GetRegionCodeForNumber(number) != constvars.MpesaRegion {
		return fmt.Errorf("phone %s is not a %s number", digits, constvars.MpesaRegion)
	}
	return nil
}

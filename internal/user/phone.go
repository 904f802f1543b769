package user

import (
	"smartkheti_backend/internal/common"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses raw in the given default region and returns it in E.164.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", common.NewValidationAPIError(map[string]string{"phone": "Enter a valid phone number."})
	}
	if !phonenumbers.IsValidNumberForRegion(num, region) {
		return "", common.NewValidationAPIError(map[string]string{"phone": "Enter a valid phone number."})
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

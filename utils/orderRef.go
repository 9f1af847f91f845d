package utils

import (
	"strings"

	"github.com/google/uuid"
)

const orderRefLength = 8

// GenerateOrderRef returns a short upper-case reference a buyer can read out
// over the phone, e.g. "9F3A07C2".
func GenerateOrderRef() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:orderRefLength])
}

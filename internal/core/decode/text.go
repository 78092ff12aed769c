package decode

import (
	"strings"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
)

func NormalizeText(payload string) (string, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return "", apperr.Validation("decode.text", "no text provided")
	}
	return s, nil
}

package runtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/cauceflow/cauce/pkg/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9\s()+-]+$`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// ValidateInput checks an inbound message against a collect node's rule and
// returns the normalized value to store. On rejection it returns ok=false
// and the message to re-prompt with.
func ValidateInput(input string, rule *domain.ValidationRule) (value any, errMsg string, ok bool) {
	if rule == nil {
		return input, "", true
	}

	trimmed := strings.TrimSpace(input)
	fail := func(fallback string) (any, string, bool) {
		if rule.ErrorMessage != "" {
			return nil, rule.ErrorMessage, false
		}
		return nil, fallback, false
	}

	switch strings.ToLower(strings.TrimSpace(rule.Type)) {
	case "", "texto", "text":
		if trimmed == "" {
			return fail("Por favor ingresa un texto válido.")
		}
		return trimmed, "", true

	case "numero", "number":
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fail("Por favor ingresa un número válido.")
		}
		return f, "", true

	case "email":
		if !emailPattern.MatchString(trimmed) {
			return fail("Por favor ingresa un email válido.")
		}
		return strings.ToLower(trimmed), "", true

	case "telefono", "phone":
		if !phonePattern.MatchString(trimmed) || !digitPattern.MatchString(trimmed) {
			return fail("Por favor ingresa un teléfono válido.")
		}
		return stripSpaces(trimmed), "", true

	case "fecha", "date":
		t, err := dateparse.ParseAny(trimmed)
		if err != nil {
			return fail("Por favor ingresa una fecha válida.")
		}
		return t.UTC().Format(time.RFC3339), "", true

	case "regex":
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			// A broken tenant pattern must not trap the conversation.
			return input, "", true
		}
		if !re.MatchString(input) {
			return fail("El valor ingresado no es válido.")
		}
		return input, "", true

	default:
		return input, "", true
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

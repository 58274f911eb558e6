package runtime

import (
	"testing"

	"github.com/cauceflow/cauce/pkg/domain"
)

func TestValidateInput(t *testing.T) {
	rule := func(tipo string) *domain.ValidationRule {
		return &domain.ValidationRule{Type: tipo}
	}

	cases := []struct {
		name  string
		input string
		rule  *domain.ValidationRule
		want  any
		ok    bool
	}{
		{"no rule passes through", "  lo que sea  ", nil, "  lo que sea  ", true},
		{"texto trims", "  hola  ", rule("texto"), "hola", true},
		{"texto rejects blank", "   ", rule("texto"), nil, false},
		{"numero decimal", "12.5", rule("numero"), 12.5, true},
		{"number english alias", "7", rule("number"), 7.0, true},
		{"numero rejects words", "twelve", rule("numero"), nil, false},
		{"email lowercased", "A@B.com", rule("email"), "a@b.com", true},
		{"email rejects", "not-an-email", rule("email"), nil, false},
		{"email rejects double at", "a@@b.com", rule("email"), nil, false},
		{"telefono strips spaces", "+54 911 5555-0001", rule("telefono"), "+549115555-0001", true},
		{"telefono rejects letters", "call me", rule("telefono"), nil, false},
		{"telefono needs a digit", "+-()", rule("telefono"), nil, false},
		{"fecha normalized", "2026-08-29", rule("fecha"), "2026-08-29T00:00:00Z", true},
		{"fecha rejects garbage", "pasado mañana tipo tarde", rule("fecha"), nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, msg, ok := ValidateInput(tc.input, tc.rule)
			if ok != tc.ok {
				t.Fatalf("ValidateInput(%q) ok = %v, want %v (msg %q)", tc.input, ok, tc.ok, msg)
			}
			if !ok {
				if msg == "" {
					t.Error("rejection must carry a message")
				}
				return
			}
			if got != tc.want {
				t.Errorf("ValidateInput(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidateInputRegex(t *testing.T) {
	r := &domain.ValidationRule{Type: "regex", Pattern: `^[A-Z]{3}-\d{4}$`}
	if _, _, ok := ValidateInput("ABC-1234", r); !ok {
		t.Error("matching input should pass")
	}
	if _, msg, ok := ValidateInput("nope", r); ok || msg == "" {
		t.Error("non-matching input should fail with a message")
	}

	// A pattern the tenant botched must not lock the conversation.
	broken := &domain.ValidationRule{Type: "regex", Pattern: `([`}
	if v, _, ok := ValidateInput("cualquier cosa", broken); !ok || v != "cualquier cosa" {
		t.Error("invalid pattern should accept input unchanged")
	}
}

func TestValidateInputCustomErrorMessage(t *testing.T) {
	r := &domain.ValidationRule{Type: "numero", ErrorMessage: "Solo números, por favor."}
	_, msg, ok := ValidateInput("x", r)
	if ok {
		t.Fatal("expected rejection")
	}
	if msg != "Solo números, por favor." {
		t.Errorf("msg = %q", msg)
	}
}

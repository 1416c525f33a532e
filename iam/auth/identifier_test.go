package auth

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValue string
		wantEmail bool
	}{
		{"email lowered", "JoAo@Escola.COM", "joao@escola.com", true},
		{"email trimmed", "  ana@x.com ", "ana@x.com", true},
		{"cpf with punctuation", "123.456.789-00", "12345678900", false},
		{"cpf bare digits", "12345678900", "12345678900", false},
		{"cpf with spaces", " 123 456 789 00 ", "12345678900", false},
		{"not an email shape", "joao@escola", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIdentifier(tt.raw)
			if got.Value != tt.wantValue {
				t.Fatalf("Value = %q, want %q", got.Value, tt.wantValue)
			}
			if got.IsEmail != tt.wantEmail {
				t.Fatalf("IsEmail = %v, want %v", got.IsEmail, tt.wantEmail)
			}
		})
	}
}

func TestRateLimitKeyMatchesNormalization(t *testing.T) {
	// Grafias distintas do mesmo identificador têm de cair na mesma chave,
	// senão o limite é contornável por variação de pontuação.
	a := NormalizeIdentifier("123.456.789-00").RateLimitKey("10.0.0.1")
	b := NormalizeIdentifier("12345678900").RateLimitKey("10.0.0.1")
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if a != "12345678900|10.0.0.1" {
		t.Fatalf("key = %q", a)
	}

	c := NormalizeIdentifier("JoAo@X.com").RateLimitKey("10.0.0.1")
	d := NormalizeIdentifier("joao@x.com").RateLimitKey("10.0.0.1")
	if c != d {
		t.Fatalf("keys differ: %q vs %q", c, d)
	}
}

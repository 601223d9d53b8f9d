package joincode

import (
	"testing"

	rand "math/rand/v2"
)

func TestGenerateLength(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code := Generate()
		if len(code) != Length {
			t.Fatalf("code %q has length %d, want %d", code, len(code), Length)
		}
		if err := Validate(code); err != nil {
			t.Fatalf("generated code %q invalid: %v", code, err)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(rand.New(rand.NewPCG(42, 0))).Generate()
	b := NewGenerator(rand.New(rand.NewPCG(42, 0))).Generate()
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}

	c := NewGenerator(rand.New(rand.NewPCG(43, 0))).Generate()
	if a == c {
		t.Errorf("different seeds produced the same code %q", a)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"ABC123", "abc123"},
		{"  abc123  ", "abc123"},
		{"oil2u3", "0112v3"},
		{"qwerty", "qwerty"},
		{"OIL2U3", "0112v3"},
	}

	for _, tt := range tests {
		tt := tt
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid", "abc123", false},
		{"too short", "abc12", true},
		{"too long", "abc1234", true},
		{"excluded letter i", "abci23", true},
		{"excluded letter o", "abco23", true},
		{"uppercase rejected", "ABC123", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q): got %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

package crypto

import (
	"errors"
	"testing"
)

// failingReader always errors, simulating a broken entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}

func withFailingEntropy(t *testing.T) {
	t.Helper()
	orig := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = orig })
}

func TestReadRandom(t *testing.T) {
	a, err := ReadRandom(32)
	if err != nil {
		t.Fatalf("ReadRandom() error = %v", err)
	}
	if len(a) != 32 {
		t.Errorf("length = %d, want 32", len(a))
	}

	b, err := ReadRandom(32)
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("two reads returned identical bytes")
	}
}

func TestReadRandom_EntropyFailure(t *testing.T) {
	withFailingEntropy(t)

	if _, err := ReadRandom(32); !errors.Is(err, ErrEntropyFailure) {
		t.Errorf("ReadRandom() error = %v, want ErrEntropyFailure", err)
	}
}

func TestRandomDigits_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		pin, err := RandomDigits(PinLength)
		if err != nil {
			t.Fatalf("RandomDigits() error = %v", err)
		}
		if len(pin) != PinLength {
			t.Fatalf("pin length = %d, want %d", len(pin), PinLength)
		}
		for _, c := range pin {
			if c < '0' || c > '9' {
				t.Fatalf("pin %q contains non-digit %q", pin, c)
			}
		}
	}
}

func TestRandomDigits_Distribution(t *testing.T) {
	// 10,000 PINs = 40,000 digits, expected 4,000 per digit. Allow a wide
	// band: anything outside it indicates a fixed bias, not noise.
	const samples = 10000

	counts := make(map[rune]int)
	for i := 0; i < samples; i++ {
		pin, err := RandomDigits(PinLength)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range pin {
			counts[c]++
		}
	}

	expected := samples * PinLength / 10
	for d := '0'; d <= '9'; d++ {
		if counts[d] < expected/2 || counts[d] > expected*2 {
			t.Errorf("digit %q count = %d, expected around %d", d, counts[d], expected)
		}
	}
}

func TestRandomDigits_EntropyFailure(t *testing.T) {
	withFailingEntropy(t)

	if _, err := RandomDigits(PinLength); !errors.Is(err, ErrEntropyFailure) {
		t.Errorf("RandomDigits() error = %v, want ErrEntropyFailure", err)
	}
}

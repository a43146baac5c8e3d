package encoding

import (
	"errors"
	"strings"
	"testing"
)

// testEntry implements Mappable and Unmappable for testing.
type testEntry struct {
	Name    string
	Version string
	Props   []string
}

func (p testEntry) EncodeMap() map[string]any {
	props := make([]any, len(p.Props))
	for i, s := range p.Props {
		props[i] = s
	}
	return map[string]any{
		"name":    p.Name,
		"version": p.Version,
		"props":   props,
	}
}

func (p *testEntry) DecodeMap(m map[string]any) error {
	if v, ok := m["name"].(string); ok {
		p.Name = v
	}
	if v, ok := m["version"].(string); ok {
		p.Version = v
	}
	if v, ok := m["props"].([]any); ok {
		for _, el := range v {
			s, ok := el.(string)
			if !ok {
				return errors.New("prop is not a string")
			}
			p.Props = append(p.Props, s)
		}
	}
	return nil
}

func TestNewEncoder(t *testing.T) {
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}
	if _, err := NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}
	if _, err := NewEncoder(nil); err == nil {
		t.Fatal("NewEncoder with empty key should fail")
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	for _, sensitive := range []bool{false, true} {
		original := testEntry{Name: "data-table", Version: "1.2.0", Props: []string{"headers", "data"}}

		sealed, err := enc.Seal(original, sensitive)
		if err != nil {
			t.Fatalf("Seal(sensitive=%v) failed: %v", sensitive, err)
		}
		if sensitive == strings.Contains(sealed, ".") {
			t.Errorf("sensitive=%v: unexpected format %q", sensitive, sealed)
		}

		var decoded testEntry
		if err := enc.Open(sealed, sensitive, &decoded); err != nil {
			t.Fatalf("Open(sensitive=%v) failed: %v", sensitive, err)
		}
		if decoded.Name != original.Name || decoded.Version != original.Version {
			t.Errorf("got %+v, want %+v", decoded, original)
		}
		if strings.Join(decoded.Props, ",") != "headers,data" {
			t.Errorf("props = %v", decoded.Props)
		}
	}
}

func TestSignatureMismatch(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))

	a, _ := enc.Seal(testEntry{Name: "a-b"}, false)
	b, _ := enc.Seal(testEntry{Name: "c-d"}, false)

	payloadA, _, _ := strings.Cut(a, ".")
	_, sigB, _ := strings.Cut(b, ".")

	var decoded testEntry
	err := enc.Open(payloadA+"."+sigB, false, &decoded)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got: %v", err)
	}
}

func TestDecryptionFailure(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	sealed, err := enc.Seal(testEntry{Name: "x-y"}, true)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	other, _ := NewEncoder([]byte("other-key"))
	var decoded testEntry
	if err := other.Open(sealed, true, &decoded); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("expected ErrDecryptFailed, got: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))

	tests := []struct {
		name      string
		sealed    string
		sensitive bool
	}{
		{"missing separator", "invalidbase64withoutseparator", false},
		{"bad base64", "!!!.???", false},
		{"short ciphertext", "AAAA", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded testEntry
			err := enc.Open(tt.sealed, tt.sensitive, &decoded)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got: %v", err)
			}
		})
	}
}

func TestSealNil(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	if _, err := enc.Seal(nil, false); !errors.Is(err, ErrNotMappable) {
		t.Errorf("expected ErrNotMappable, got: %v", err)
	}
}

package filters

import (
	"bytes"
	"errors"
	"testing"
)

// TestASCIIHexDecodeBasic tests basic ASCII hex decoding
func TestASCIIHexDecodeBasic(t *testing.T) {
	// "Hello" = 48 65 6C 6C 6F
	encoded := []byte("48656C6C6F>")
	expected := []byte("Hello")

	decoded, err := ASCIIHexDecode(encoded)
	if err != nil {
		t.Fatalf("ASCIIHexDecode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match\ngot:  %s\nwant: %s", decoded, expected)
	}
}

// TestASCIIHexDecodeWithWhitespace tests decoding with whitespace
func TestASCIIHexDecodeWithWhitespace(t *testing.T) {
	encoded := []byte("48 65 6C 6C 6F>")
	expected := []byte("Hello")

	decoded, err := ASCIIHexDecode(encoded)
	if err != nil {
		t.Fatalf("ASCIIHexDecode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match")
	}
}

// TestASCIIHexDecodeOddDigits tests decoding with odd number of digits
func TestASCIIHexDecodeOddDigits(t *testing.T) {
	// Odd number - last digit assumed to be followed by 0
	encoded := []byte("48656C6C6>") // Missing final F
	expected := []byte("Hell`")     // 6 becomes 60

	decoded, err := ASCIIHexDecode(encoded)
	if err != nil {
		t.Fatalf("ASCIIHexDecode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match\ngot:  %v\nwant: %v", decoded, expected)
	}
}

// TestASCIIHexDecodeNoEOD tests decoding without EOD marker
func TestASCIIHexDecodeNoEOD(t *testing.T) {
	encoded := []byte("48656C6C6F")
	expected := []byte("Hello")

	decoded, err := ASCIIHexDecode(encoded)
	if err != nil {
		t.Fatalf("ASCIIHexDecode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match")
	}
}

// TestASCIIHexDecodeInvalidChar tests error handling for invalid characters
func TestASCIIHexDecodeInvalidChar(t *testing.T) {
	encoded := []byte("48G5")

	_, err := ASCIIHexDecode(encoded)
	if err == nil {
		t.Error("expected error for invalid hex character")
	}
}

func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
	}{
		{"single group with tail", "87cURDZ~>", "Hello"},
		{"whitespace", "87cU RD\nZ ~>", "Hello"},
		{"no EOD", "87cURDZ", "Hello"},
		{"leading marker", "<~87cURDZ~>", "Hello"},
		{"multiple groups", `87cURD]i,"Ebo7~>`, "Hello World"},
		{"z inside data", "z@:E^~>", "\x00\x00\x00\x00abc"},
		{"data after EOD ignored", "9jqo^Bla~>junk", "Man is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.encoded))
			if err != nil {
				t.Fatalf("ASCII85Decode failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ASCII85Decode(%q) = %q, want %q", tt.encoded, got, tt.want)
			}
		})
	}
}

// TestASCII85DecodeZero tests special 'z' encoding for four zero bytes
func TestASCII85DecodeZero(t *testing.T) {
	encoded := []byte("z~>")
	expected := []byte{0, 0, 0, 0}

	decoded, err := ASCII85Decode(encoded)
	if err != nil {
		t.Fatalf("ASCII85Decode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match\ngot:  %v\nwant: %v", decoded, expected)
	}
}

// TestASCII85DecodeMalformed tests groups that cannot be decoded
func TestASCII85DecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"group above 32 bits", "uuuuu~>"},
		{"single trailing digit", "87cURD~>"},
		{"single digit", "8"},
		{"z inside a group", "87zcU~>"},
		{"tilde without end", "87cU~x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := ASCII85Decode([]byte(tt.encoded)); err == nil {
				t.Errorf("ASCII85Decode(%q) = %q, want an error", tt.encoded, got)
			}
			_, err := Decode([]byte(tt.encoded), []string{"A85"}, nil)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("Decode() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

// TestASCII85DecodeInvalidChar tests error handling for invalid characters
func TestASCII85DecodeInvalidChar(t *testing.T) {
	encoded := []byte("87\xFFcURD~>")

	_, err := ASCII85Decode(encoded)
	if err == nil {
		t.Error("expected error for invalid ASCII85 character")
	}
}

// TestHexDigitToByte tests the hex conversion helper
func TestHexDigitToByte(t *testing.T) {
	tests := []struct {
		input    byte
		expected byte
		hasError bool
	}{
		{'0', 0, false},
		{'9', 9, false},
		{'A', 10, false},
		{'F', 15, false},
		{'a', 10, false},
		{'f', 15, false},
		{'G', 0, true},
		{'g', 0, true},
		{'@', 0, true},
	}

	for _, tt := range tests {
		result, err := hexDigitToByte(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("hexDigitToByte(%c) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("hexDigitToByte(%c) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("hexDigitToByte(%c) = %d, want %d", tt.input, result, tt.expected)
			}
		}
	}
}

// TestIsWhitespace tests the whitespace check helper
func TestIsWhitespace(t *testing.T) {
	whitespaceChars := []byte{' ', '\t', '\r', '\n', '\f', 0}
	for _, c := range whitespaceChars {
		if !isWhitespace(c) {
			t.Errorf("isWhitespace(%d) should be true", c)
		}
	}

	nonWhitespaceChars := []byte{'a', 'Z', '0', '!', '\x01'}
	for _, c := range nonWhitespaceChars {
		if isWhitespace(c) {
			t.Errorf("isWhitespace(%c) should be false", c)
		}
	}
}

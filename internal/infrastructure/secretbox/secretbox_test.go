package secretbox

import (
	"errors"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := New("test-crypto-key")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for _, plain := range []string{"pw", "", "s3cret-пароль", "a long password with spaces and символы"} {
		ct, err := codec.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt(%q) returned error: %v", plain, err)
		}
		got, err := codec.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt returned error: %v", err)
		}
		if got != plain {
			t.Fatalf("round trip mismatch: got %q, want %q", got, plain)
		}
	}
}

func TestCodec_RepeatedDecrypt(t *testing.T) {
	codec, _ := New("test-crypto-key")
	ct, err := codec.Encrypt("stable")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := codec.Decrypt(ct)
		if err != nil || got != "stable" {
			t.Fatalf("decrypt #%d: got %q, err %v", i, got, err)
		}
	}
}

func TestCodec_NonDeterministicCiphertext(t *testing.T) {
	codec, _ := New("test-crypto-key")
	a, _ := codec.Encrypt("same")
	b, _ := codec.Encrypt("same")
	if a == b {
		t.Fatalf("expected distinct ciphertexts for identical plaintexts")
	}
}

func TestCodec_MalformedCiphertext(t *testing.T) {
	codec, _ := New("test-crypto-key")

	cases := []string{
		"not-base64!!!",
		"QQ==", // valid base64, shorter than a nonce
		"",
	}
	for _, ct := range cases {
		if _, err := codec.Decrypt(ct); !errors.Is(err, ErrMalformedCiphertext) {
			t.Fatalf("Decrypt(%q): expected ErrMalformedCiphertext, got %v", ct, err)
		}
	}
}

func TestCodec_WrongKey(t *testing.T) {
	codec1, _ := New("key-one")
	codec2, _ := New("key-two")

	ct, err := codec1.Encrypt("pw")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if _, err := codec2.Decrypt(ct); !errors.Is(err, ErrMalformedCiphertext) {
		t.Fatalf("expected ErrMalformedCiphertext with wrong key, got %v", err)
	}
}

func TestNew_EmptyKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

package fernet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// testKey returns a fixed 32-byte key for deterministic tests.
func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}

	return key
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("generating random payload: %v", err)
	}

	return buf
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey()

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"png magic fragment", []byte{0x89, 0x50, 0x4E}},
		{"one byte", []byte{0x00}},
		{"block size minus one", bytes.Repeat([]byte{0xAB}, aes.BlockSize-1)},
		{"exact block size", bytes.Repeat([]byte{0xCD}, aes.BlockSize)},
		{"block size plus one", bytes.Repeat([]byte{0xEF}, aes.BlockSize+1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := Seal(key, tc.plaintext)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}

			got, err := Open(key, token)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if !bytes.Equal(got, tc.plaintext) {
				t.Errorf("round-trip mismatch: got %x, want %x", got, tc.plaintext)
			}
		})
	}
}

func TestSealOpenRoundTripLargePayload(t *testing.T) {
	key := testKey()
	plaintext := randomBytes(t, 4<<20) // 4 MiB

	token, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	got, err := Open(key, token)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(got, plaintext) {
		t.Error("round-trip mismatch for large payload")
	}
}

func TestSealIsNonDeterministic(t *testing.T) {
	key := testKey()
	plaintext := []byte("identical plaintext")

	first, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("first Seal failed: %v", err)
	}

	second, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("second Seal failed: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Fatal("two seals of the same plaintext produced identical tokens")
	}

	for i, token := range [][]byte{first, second} {
		got, err := Open(key, token)
		if err != nil {
			t.Fatalf("Open of token #%d failed: %v", i, err)
		}

		if !bytes.Equal(got, plaintext) {
			t.Errorf("token #%d round-trip mismatch", i)
		}
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	plaintext := []byte("payload")

	token, err := Seal(testKey(), plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	otherKey := testKey()
	otherKey[0] ^= 0xFF

	if _, err := Open(otherKey, token); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication for wrong key, got: %v", err)
	}
}

func TestOpenRejectsEveryBitFlip(t *testing.T) {
	key := testKey()

	token, err := Seal(key, []byte{0x89, 0x50, 0x4E})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	for byteIdx := range token {
		for bit := 0; bit < 8; bit++ {
			corrupted := bytes.Clone(token)
			corrupted[byteIdx] ^= 1 << bit

			_, err := Open(key, corrupted)
			if err == nil {
				t.Fatalf("flipping bit %d of byte %d went undetected", bit, byteIdx)
			}

			// A flip in the version byte is caught by the structural
			// check; everything else must fail authentication.
			want := ErrAuthentication
			if byteIdx == 0 {
				want = ErrTokenFormat
			}

			if !errors.Is(err, want) {
				t.Fatalf("flipping bit %d of byte %d: got %v, want %v", bit, byteIdx, err, want)
			}
		}
	}
}

func TestOpenRejectsTruncatedToken(t *testing.T) {
	key := testKey()

	token, err := Seal(key, bytes.Repeat([]byte{0x42}, 3*aes.BlockSize))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	testCases := []struct {
		name   string
		length int
	}{
		{"empty", 0},
		{"header only", headerSize},
		{"below minimum", Overhead + aes.BlockSize - 1},
		{"misaligned ciphertext", len(token) - aes.BlockSize/2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Open(key, token[:tc.length]); !errors.Is(err, ErrTokenFormat) {
				t.Fatalf("expected ErrTokenFormat, got: %v", err)
			}
		})
	}
}

func TestOpenRejectsUnknownVersion(t *testing.T) {
	key := testKey()

	token, err := Seal(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	token[0] = 0x81

	if _, err := Open(key, token); !errors.Is(err, ErrTokenFormat) {
		t.Fatalf("expected ErrTokenFormat for unknown version, got: %v", err)
	}
}

func TestKeyLengthIsEnforced(t *testing.T) {
	shortKey := make([]byte, KeySize/2)

	if _, err := Seal(shortKey, []byte("payload")); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("Seal: expected ErrKeyLength, got: %v", err)
	}

	if _, err := Open(shortKey, make([]byte, Overhead+aes.BlockSize)); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("Open: expected ErrKeyLength, got: %v", err)
	}
}

func TestConcreteTokenLayout(t *testing.T) {
	key := testKey()
	plaintext := []byte{0x89, 0x50, 0x4E}

	token, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if token[0] != Version {
		t.Errorf("version byte: got 0x%02x, want 0x%02x", token[0], Version)
	}

	// Three bytes of plaintext pad out to exactly one cipher block.
	if got, want := len(token), Overhead+aes.BlockSize; got != want {
		t.Errorf("token length: got %d, want %d", got, want)
	}

	got, err := Open(key, token)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(got, plaintext) {
		t.Errorf("round-trip mismatch: got %x, want %x", got, plaintext)
	}

	token[len(token)-1] ^= 0x01

	if _, err := Open(key, token); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication after corrupting tag, got: %v", err)
	}
}

// TestKeyHalvesAreUsedInFixedRoles verifies the interop-critical layout
// directly: the first half of the key signs, the second half encrypts, and
// the fields sit at their fixed offsets.
func TestKeyHalvesAreUsedInFixedRoles(t *testing.T) {
	key := testKey()
	plaintext := []byte("interop check")

	const timestamp = uint64(499162800)

	iv := bytes.Repeat([]byte{0x24}, ivSize)

	token, err := seal(key, plaintext, timestamp, iv)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	if got := binary.BigEndian.Uint64(token[1 : 1+timestampSize]); got != timestamp {
		t.Errorf("timestamp field: got %d, want %d", got, timestamp)
	}

	if !bytes.Equal(token[1+timestampSize:headerSize], iv) {
		t.Error("IV field does not match the supplied IV")
	}

	// Independently recompute the ciphertext with the encryption half.
	block, err := aes.NewCipher(key[KeySize/2:])
	if err != nil {
		t.Fatalf("creating cipher: %v", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	want := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(want, padded)

	if !bytes.Equal(token[headerSize:len(token)-tagSize], want) {
		t.Error("ciphertext does not match AES-CBC under the encryption half")
	}

	// Independently recompute the tag with the signing half.
	mac := hmac.New(sha256.New, key[:KeySize/2])
	mac.Write(token[:len(token)-tagSize])

	if !bytes.Equal(token[len(token)-tagSize:], mac.Sum(nil)) {
		t.Error("tag does not match HMAC-SHA256 under the signing half")
	}

	when, err := Timestamp(token)
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}

	if !when.Equal(time.Unix(int64(timestamp), 0)) {
		t.Errorf("Timestamp: got %v, want %v", when, time.Unix(int64(timestamp), 0))
	}
}

func TestTimestampReflectsSealTime(t *testing.T) {
	key := testKey()

	before := time.Now().Truncate(time.Second)

	token, err := Seal(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	after := time.Now().Add(time.Second)

	when, err := Timestamp(token)
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}

	if when.Before(before) || when.After(after) {
		t.Errorf("timestamp %v outside expected window [%v, %v]", when, before, after)
	}
}

func TestTimestampRejectsMalformedToken(t *testing.T) {
	if _, err := Timestamp(make([]byte, headerSize-1)); !errors.Is(err, ErrTokenFormat) {
		t.Fatalf("expected ErrTokenFormat for short token, got: %v", err)
	}

	bogus := make([]byte, headerSize)
	bogus[0] = 0x01

	if _, err := Timestamp(bogus); !errors.Is(err, ErrTokenFormat) {
		t.Fatalf("expected ErrTokenFormat for unknown version, got: %v", err)
	}
}

package fernet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// Version identifies the token scheme. Tokens carrying any other value
	// in their first byte are rejected as ErrTokenFormat.
	Version = byte(0x80)

	// KeySize is the required key length in bytes. The first half signs,
	// the second half encrypts.
	KeySize = 32

	// Overhead is the number of bytes Seal adds on top of the padded
	// ciphertext: version, timestamp, IV and tag.
	Overhead = headerSize + tagSize

	timestampSize = 8
	ivSize        = aes.BlockSize
	tagSize       = sha256.Size
	headerSize    = 1 + timestampSize + ivSize
)

// splitKey checks the key length and returns its signing and encryption
// halves. The split is fixed by the token layout and must not be replaced
// with a KDF, or tokens stop interoperating.
func splitKey(key []byte) (signKey, encKey []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w, got %d", ErrKeyLength, len(key))
	}

	return key[:KeySize/2], key[KeySize/2:], nil
}

// Seal encrypts and authenticates plaintext under key, returning the
// serialized token. The IV is drawn fresh from crypto/rand on every call,
// so sealing the same plaintext twice yields different tokens.
func Seal(key, plaintext []byte) ([]byte, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generating IV: %w", err)
	}

	return seal(key, plaintext, uint64(time.Now().Unix()), iv) //nolint:gosec // Unix() is non-negative here
}

// seal builds a token from explicit timestamp and IV. Split out so tests can
// exercise the layout deterministically.
func seal(key, plaintext []byte, timestamp uint64, iv []byte) ([]byte, error) {
	signKey, encKey, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	token := make([]byte, 0, headerSize+len(padded)+tagSize)
	token = append(token, Version)
	token = binary.BigEndian.AppendUint64(token, timestamp)
	token = append(token, iv...)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	token = append(token, ciphertext...)

	mac := hmac.New(sha256.New, signKey)
	mac.Write(token)

	return mac.Sum(token), nil
}

// Open verifies and decrypts a token previously produced by Seal, returning
// the original plaintext. Structural checks and the version byte are
// rejected before any cryptographic work; the tag is verified in constant
// time before decryption is attempted. On any failure no plaintext is
// released.
func Open(key, token []byte) ([]byte, error) {
	signKey, encKey, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	// The shortest valid token carries a single ciphertext block.
	if len(token) < Overhead+aes.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrTokenFormat, len(token))
	}

	if token[0] != Version {
		return nil, fmt.Errorf("%w: unknown version 0x%02x", ErrTokenFormat, token[0])
	}

	body, tag := token[:len(token)-tagSize], token[len(token)-tagSize:]

	ciphertext := body[headerSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block aligned", ErrTokenFormat)
	}

	mac := hmac.New(sha256.New, signKey)
	mac.Write(body)

	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrAuthentication
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	iv := body[1+timestampSize : headerSize]

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

// Timestamp extracts the creation time recorded in a token without verifying
// it. The value is informational; the scheme imposes no expiry.
func Timestamp(token []byte) (time.Time, error) {
	if len(token) < headerSize {
		return time.Time{}, fmt.Errorf("%w: %d bytes is too short", ErrTokenFormat, len(token))
	}

	if token[0] != Version {
		return time.Time{}, fmt.Errorf("%w: unknown version 0x%02x", ErrTokenFormat, token[0])
	}

	seconds := binary.BigEndian.Uint64(token[1 : 1+timestampSize])

	return time.Unix(int64(seconds), 0).UTC(), nil //nolint:gosec // token timestamps fit in int64
}

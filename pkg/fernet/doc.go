// Package fernet seals and opens authenticated symmetric encryption tokens.
//
// A token is a self-contained byte sequence carrying everything needed to
// verify and decrypt it given only the 32-byte key:
//
//	version(1) || timestamp(8, big-endian seconds) || iv(16) ||
//	ciphertext(n, AES-128-CBC with PKCS#7 padding) || tag(32, HMAC-SHA256)
//
// The tag covers all preceding fields. The signing half of the key is its
// first 16 bytes, the encryption half its last 16. The layout is the interop
// contract: a token sealed here opens under any other implementation of the
// same scheme holding the same key, and vice versa.
//
// Seal and Open are stateless and safe for concurrent use.
package fernet

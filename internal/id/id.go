package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// publicTokenLength is the length of public note tokens.
// 32 characters over the 64-symbol URL-safe alphabet gives 192 bits of
// entropy, which makes collisions and guessing both negligible. Tokens are
// opaque; nothing in the system ever parses them.
const publicTokenLength = 32

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "note-V1StGXR8_Z5jdHi6B-myT")
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	// Use default NanoID (21 characters, URL-safe alphabet)
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when you're certain the system entropy is available,
// or when failure should crash the program (e.g., during initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// GeneratePublicToken creates an unprefixed token for anonymous note access.
// Unlike entity IDs these carry no prefix: they appear in shareable URLs and
// the extra length is the entire security mechanism.
func GeneratePublicToken() (string, error) {
	token, err := gonanoid.New(publicTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return token, nil
}

package minigame

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/disconnected/pkg/domain"
)

// Encrypt applies cipher with key to plaintext. It reports false when the key
// is not valid for the cipher.
func Encrypt(cipher domain.CipherType, plaintext, key string) (string, bool) {
	return apply(cipher, plaintext, key, true)
}

// Decrypt reverses Encrypt.
func Decrypt(cipher domain.CipherType, ciphertext, key string) (string, bool) {
	return apply(cipher, ciphertext, key, false)
}

func apply(cipher domain.CipherType, text, key string, forward bool) (string, bool) {
	key = strings.TrimSpace(key)
	switch cipher {
	case domain.CipherCaesar:
		n, err := strconv.Atoi(key)
		if err != nil {
			return text, false
		}
		if !forward {
			n = -n
		}
		return strings.Map(func(r rune) rune { return shift(r, n) }, text), true

	case domain.CipherXOR:
		n, err := strconv.Atoi(key)
		if err != nil {
			return text, false
		}
		return strings.Map(func(r rune) rune { return r ^ rune(n) }, text), true

	case domain.CipherVigenere:
		shifts := make([]int, 0, len(key))
		for _, r := range strings.ToLower(key) {
			if r < 'a' || r > 'z' {
				return text, false
			}
			shifts = append(shifts, int(r-'a'))
		}
		if len(shifts) == 0 {
			return text, false
		}
		i := 0
		return strings.Map(func(r rune) rune {
			if !isASCIILetter(r) {
				return r
			}
			n := shifts[i%len(shifts)]
			i++
			if !forward {
				n = -n
			}
			return shift(r, n)
		}, text), true

	case domain.CipherSubstitution:
		table, ok := substitutionTable(key, forward)
		if !ok {
			return text, false
		}
		return strings.Map(func(r rune) rune {
			if !isASCIILetter(r) {
				return r
			}
			mapped := table[unicode.ToLower(r)-'a']
			if unicode.IsUpper(r) {
				return unicode.ToUpper(mapped)
			}
			return mapped
		}, text), true
	}
	return text, false
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func shift(r rune, n int) rune {
	var first rune
	switch {
	case r >= 'a' && r <= 'z':
		first = 'a'
	case r >= 'A' && r <= 'Z':
		first = 'A'
	default:
		return r
	}
	off := (int(r-first) + n) % 26
	if off < 0 {
		off += 26
	}
	return first + rune(off)
}

// substitutionTable maps plain letter index to cipher letter (forward) or the
// inverse. The key must be a permutation of the alphabet.
func substitutionTable(key string, forward bool) ([26]rune, bool) {
	var table [26]rune
	key = strings.ToLower(key)
	if len(key) != 26 {
		return table, false
	}
	var seen [26]bool
	for i, r := range key {
		if r < 'a' || r > 'z' || seen[r-'a'] {
			return table, false
		}
		seen[r-'a'] = true
		if forward {
			table[i] = r
		} else {
			table[r-'a'] = 'a' + rune(i)
		}
	}
	return table, true
}

package minigame

import (
	"fmt"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
)

type encryption struct {
	base
	data domain.EncryptionPuzzleData
}

func (e *encryption) Intro() []domain.Line {
	keyHint := "key"
	if e.data.CipherType == domain.CipherCaesar {
		keyHint = "shift value (0-25)"
	}
	return append(e.header(),
		outLine(fmt.Sprintf("Cipher: %s", strings.ToUpper(string(e.data.CipherType)))),
		outLine("Ciphertext: "+e.data.Ciphertext),
		outLine(fmt.Sprintf("Enter the decryption %s. Type 'hint' for a hint.", keyHint)),
	)
}

func (e *encryption) Submit(input string) (Outcome, error) {
	out, ok, err := e.begin(e.cfg.TimeLimit)
	if !ok {
		return out, err
	}

	key := strings.TrimSpace(input)
	if strings.EqualFold(key, "hint") {
		return e.nextHint(e.data.Hints), nil
	}

	decrypted, valid := Decrypt(e.data.CipherType, e.data.Ciphertext, key)
	if !valid {
		return Outcome{Lines: []domain.Line{warningLine(fmt.Sprintf("Invalid key for %s cipher.", e.data.CipherType))}}, nil
	}
	if strings.EqualFold(decrypted, e.data.Plaintext) {
		return e.finish(domain.ResultSuccess,
			outLine(decrypted),
			successLine("DECRYPTION SUCCESSFUL"),
		), nil
	}
	return Outcome{Lines: []domain.Line{
		outLine(decrypted),
		errorLine("Decryption failed. Output is not readable."),
	}}, nil
}

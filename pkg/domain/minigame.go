package domain

import "time"

// MinigameType selects the rules of a mini-game.
type MinigameType string

const (
	MinigamePassword   MinigameType = "password-cracker"
	MinigameNetwork    MinigameType = "network-scanner"
	MinigameInjection  MinigameType = "code-injection"
	MinigameEncryption MinigameType = "encryption-puzzle"
)

// MinigameResult is the outcome reported back to the engine.
type MinigameResult string

const (
	ResultSuccess MinigameResult = "success"
	ResultFailure MinigameResult = "failure"
	ResultPartial MinigameResult = "partial"
	ResultTimeout MinigameResult = "timeout"
)

// MinigameConfig describes one mini-game instance. Data holds one of the
// *Data types below, matching Type.
type MinigameConfig struct {
	ID             string
	Type           MinigameType
	Title          string
	Description    string
	Difficulty     int
	TimeLimit      time.Duration
	DetectionLimit int
	Data           any
	OnSuccess      string
	OnFailure      string
}

type PasswordCrackerData struct {
	TargetHash string   `mapstructure:"target_hash"`
	Charset    string   `mapstructure:"charset"`
	Length     int      `mapstructure:"length"`
	Hints      []string `mapstructure:"hints"`
	Answer     string   `mapstructure:"answer"`
}

type NetworkNode struct {
	ID            string  `mapstructure:"id"`
	Label         string  `mapstructure:"label"`
	Type          string  `mapstructure:"type"`
	X             float64 `mapstructure:"x"`
	Y             float64 `mapstructure:"y"`
	Secured       bool    `mapstructure:"secured"`
	Vulnerability string  `mapstructure:"vulnerability"`
}

type NetworkEdge struct {
	From      string `mapstructure:"from"`
	To        string `mapstructure:"to"`
	Encrypted bool   `mapstructure:"encrypted"`
}

type NetworkScannerData struct {
	Nodes      []NetworkNode `mapstructure:"nodes"`
	Edges      []NetworkEdge `mapstructure:"edges"`
	TargetNode string        `mapstructure:"target_node"`
	StartNode  string        `mapstructure:"start_node"`
}

type InjectionPoint struct {
	ID           string `mapstructure:"id"`
	Line         int    `mapstructure:"line"`
	Column       int    `mapstructure:"column"`
	Placeholder  string `mapstructure:"placeholder"`
	CorrectValue string `mapstructure:"correct_value"`
	Hint         string `mapstructure:"hint"`
}

type CodeInjectionData struct {
	Code            string           `mapstructure:"code"`
	InjectionPoints []InjectionPoint `mapstructure:"injection_points"`
	ExpectedOutput  string           `mapstructure:"expected_output"`
}

// CipherType names a toy cipher.
type CipherType string

const (
	CipherCaesar       CipherType = "caesar"
	CipherSubstitution CipherType = "substitution"
	CipherXOR          CipherType = "xor"
	CipherVigenere     CipherType = "vigenere"
)

type EncryptionPuzzleData struct {
	CipherType CipherType `mapstructure:"cipher_type"`
	Ciphertext string     `mapstructure:"ciphertext"`
	Plaintext  string     `mapstructure:"plaintext"`
	Key        string     `mapstructure:"key"`
	Hints      []string   `mapstructure:"hints"`
}

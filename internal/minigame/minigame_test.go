package minigame_test

import (
	"testing"
	"time"

	"github.com/aretw0/disconnected/internal/minigame"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, cfg domain.MinigameConfig, opts ...minigame.Option) minigame.Session {
	t.Helper()
	s, err := minigame.New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_UnknownType(t *testing.T) {
	_, err := minigame.New(domain.MinigameConfig{ID: "x", Type: "tetris"})
	assert.ErrorIs(t, err, domain.ErrUnknownMinigame)
}

func TestDecode_FromYAMLMap(t *testing.T) {
	raw := map[string]any{
		"answer":  "ghost",
		"length":  5,
		"charset": "abc",
		"hints":   []any{"spooky"},
	}
	d, err := minigame.Decode[domain.PasswordCrackerData](raw)
	require.NoError(t, err)
	assert.Equal(t, "ghost", d.Answer)
	assert.Equal(t, 5, d.Length)
	assert.Equal(t, []string{"spooky"}, d.Hints)
}

func TestScore(t *testing.T) {
	fb := minigame.Score("sleep", "PULSE")
	assert.Equal(t, []minigame.CharFeedback{
		{Char: 'S', Mark: minigame.MarkPresent},
		{Char: 'L', Mark: minigame.MarkPresent},
		{Char: 'E', Mark: minigame.MarkPresent},
		{Char: 'E', Mark: minigame.MarkPresent},
		{Char: 'P', Mark: minigame.MarkPresent},
	}, fb)

	fb = minigame.Score("PALSX", "pulse")
	assert.Equal(t, "P+ A- L+ S+ X-", minigame.Render(fb))
}

func passwordConfig() domain.MinigameConfig {
	return domain.MinigameConfig{
		ID:    "crack_gw",
		Type:  domain.MinigamePassword,
		Title: "Gateway",
		Data:  domain.PasswordCrackerData{Answer: "GHOST", Length: 5, Hints: []string{"boo"}},
	}
}

func TestPassword_Success(t *testing.T) {
	s := start(t, passwordConfig())

	out, err := s.Submit("ghost")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultSuccess, out.Result)

	r, done := s.Result()
	assert.True(t, done)
	assert.Equal(t, domain.ResultSuccess, r)

	_, err = s.Submit("ghost")
	assert.ErrorIs(t, err, minigame.ErrFinished)
}

func TestPassword_DetectionFailsAfterSevenMisses(t *testing.T) {
	s := start(t, passwordConfig())

	for i := 0; i < 6; i++ {
		out, err := s.Submit("aaaaa")
		require.NoError(t, err)
		require.False(t, out.Done(), "miss %d", i+1)
	}
	out, err := s.Submit("aaaaa")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultFailure, out.Result, "7 * 15 reaches 100")
}

func TestPassword_CustomDetectionLimit(t *testing.T) {
	cfg := passwordConfig()
	cfg.DetectionLimit = 30
	s := start(t, cfg)

	out, _ := s.Submit("zzzzz")
	assert.False(t, out.Done())
	out, _ = s.Submit("zzzzz")
	assert.Equal(t, domain.ResultFailure, out.Result)
}

func TestPassword_WrongLengthCostsNothing(t *testing.T) {
	s := start(t, passwordConfig())
	for range 20 {
		out, err := s.Submit("abc")
		require.NoError(t, err)
		assert.False(t, out.Done())
	}
}

func TestPassword_Hint(t *testing.T) {
	s := start(t, passwordConfig())
	out, _ := s.Submit("hint")
	assert.Equal(t, "HINT: boo", out.Lines[0].Content)
	out, _ = s.Submit("hint")
	assert.Equal(t, "No more hints available.", out.Lines[0].Content)
}

func TestPassword_TimeLimit(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	s := start(t, passwordConfig(), minigame.WithClock(clock.Now))

	clock.Advance(59 * time.Second)
	out, _ := s.Submit("aaaaa")
	assert.False(t, out.Done())

	clock.Advance(time.Second)
	out, _ = s.Submit("ghost")
	assert.Equal(t, domain.ResultTimeout, out.Result, "default limit is 60s")
}

func TestCiphers_RoundTrip(t *testing.T) {
	plain := "Meet at Dock 7, midnight."
	tests := []struct {
		cipher domain.CipherType
		key    string
	}{
		{domain.CipherCaesar, "3"},
		{domain.CipherCaesar, "-5"},
		{domain.CipherXOR, "42"},
		{domain.CipherVigenere, "lethe"},
		{domain.CipherSubstitution, "qwertyuiopasdfghjklzxcvbnm"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cipher)+"/"+tt.key, func(t *testing.T) {
			enc, ok := minigame.Encrypt(tt.cipher, plain, tt.key)
			require.True(t, ok)
			assert.NotEqual(t, plain, enc)

			dec, ok := minigame.Decrypt(tt.cipher, enc, tt.key)
			require.True(t, ok)
			assert.Equal(t, plain, dec)
		})
	}
}

func TestCiphers_KnownValues(t *testing.T) {
	out, _ := minigame.Decrypt(domain.CipherCaesar, "Khoor", "3")
	assert.Equal(t, "Hello", out)

	out, _ = minigame.Encrypt(domain.CipherVigenere, "ATTACKATDAWN", "LEMON")
	assert.Equal(t, "LXFOPVEFRNHR", out)
}

func TestCiphers_InvalidKeys(t *testing.T) {
	for _, tt := range []struct {
		cipher domain.CipherType
		key    string
	}{
		{domain.CipherCaesar, "three"},
		{domain.CipherXOR, ""},
		{domain.CipherVigenere, "k3y"},
		{domain.CipherSubstitution, "abc"},
		{domain.CipherSubstitution, "aacdefghijklmnopqrstuvwxyz"},
		{"rot13", "1"},
	} {
		out, ok := minigame.Decrypt(tt.cipher, "text", tt.key)
		assert.False(t, ok, "%s/%s", tt.cipher, tt.key)
		assert.Equal(t, "text", out)
	}
}

func TestEncryptionPuzzle(t *testing.T) {
	cipher, _ := minigame.Encrypt(domain.CipherCaesar, "PROJECT LETHE", "7")
	s := start(t, domain.MinigameConfig{
		ID:   "decrypt_plan.enc",
		Type: domain.MinigameEncryption,
		Data: domain.EncryptionPuzzleData{CipherType: domain.CipherCaesar, Ciphertext: cipher, Plaintext: "project lethe"},
	})

	out, err := s.Submit("6")
	require.NoError(t, err)
	assert.False(t, out.Done())

	out, _ = s.Submit("abc")
	assert.False(t, out.Done())
	assert.Equal(t, domain.LineWarning, out.Lines[0].Type)

	out, _ = s.Submit("7")
	assert.Equal(t, domain.ResultSuccess, out.Result, "comparison ignores case")
}

func scannerConfig() domain.MinigameConfig {
	return domain.MinigameConfig{
		ID:   "scan_net",
		Type: domain.MinigameNetwork,
		Data: domain.NetworkScannerData{
			StartNode:  "you",
			TargetNode: "db",
			Nodes: []domain.NetworkNode{
				{ID: "you", Label: "You"},
				{ID: "fw", Label: "Firewall", Secured: true},
				{ID: "web", Label: "Web", Secured: true, Vulnerability: "CVE-2031-0001"},
				{ID: "db", Label: "Database"},
			},
			Edges: []domain.NetworkEdge{
				{From: "you", To: "fw"},
				{From: "you", To: "web"},
				{From: "web", To: "db"},
			},
		},
	}
}

func TestNetworkScanner(t *testing.T) {
	s := start(t, scannerConfig())

	out, _ := s.Submit("scan db")
	assert.Equal(t, domain.LineError, out.Lines[0].Type, "db is not adjacent to an exploited node")

	out, _ = s.Submit("exploit web")
	assert.Equal(t, "Scan web first.", out.Lines[0].Content)

	_, _ = s.Submit("scan fw")
	out, _ = s.Submit("exploit fw")
	assert.Equal(t, domain.LineError, out.Lines[0].Type, "secured without vulnerability")

	_, _ = s.Submit("scan web")
	out, _ = s.Submit("exploit web")
	assert.False(t, out.Done())

	out, _ = s.Submit("scan db")
	assert.NotEqual(t, domain.LineError, out.Lines[0].Type, "web now provides adjacency")

	out, _ = s.Submit("exploit db")
	assert.Equal(t, domain.ResultSuccess, out.Result)
}

func TestCodeInjection(t *testing.T) {
	s := start(t, domain.MinigameConfig{
		ID:   "inject",
		Type: domain.MinigameInjection,
		Data: map[string]any{
			"code": "if (user == ___) {\n  grant(___)\n}",
			"injection_points": []any{
				map[string]any{"id": "a", "line": 1, "correct_value": "ADMIN"},
				map[string]any{"id": "b", "line": 2, "correct_value": "root", "hint": "superuser"},
			},
		},
	})

	_, _ = s.Submit("a   admin  ")
	out, _ := s.Submit("run")
	assert.False(t, out.Done(), "point b still empty")

	out, _ = s.Submit("hint b")
	assert.Equal(t, "HINT: superuser", out.Lines[0].Content)

	_, _ = s.Submit("b Root")
	out, _ = s.Submit("run")
	assert.Equal(t, domain.ResultSuccess, out.Result)
}

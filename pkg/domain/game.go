package domain

import "time"

// View is the active in-game presentation surface.
type View string

const (
	ViewTerminal      View = "terminal"
	ViewChat          View = "chat"
	ViewInvestigation View = "investigation"
	ViewMinigame      View = "minigame"
	ViewCutscene      View = "cutscene"
	ViewDossier       View = "dossier"
)

// IsKnown reports whether v names a declared view.
func (v View) IsKnown() bool {
	switch v {
	case ViewTerminal, ViewChat, ViewInvestigation, ViewMinigame, ViewCutscene, ViewDossier:
		return true
	}
	return false
}

// Screen is the top-level application screen.
type Screen string

const (
	ScreenMainMenu Screen = "main-menu"
	ScreenGame     Screen = "game"
	ScreenPause    Screen = "pause"
	ScreenSettings Screen = "settings"
	ScreenSaveLoad Screen = "save-load"
)

// Mood is the ambient soundscape requested by content.
type Mood string

const (
	MoodDark   Mood = "dark"
	MoodTense  Mood = "tense"
	MoodHack   Mood = "hack"
	MoodCalm   Mood = "calm"
	MoodDanger Mood = "danger"
	MoodNone   Mood = "none"
)

// Ending is the final outcome of a playthrough.
type Ending string

const (
	EndingHero       Ending = "hero"
	EndingMartyr     Ending = "martyr"
	EndingGhost      Ending = "ghost"
	EndingPragmatist Ending = "pragmatist"
	EndingVillain    Ending = "villain"
	EndingSacrifice  Ending = "sacrifice"
)

// Chapters are numbered 1..MaxChapter.
const MaxChapter = 5

// ActNames maps chapter numbers to act titles.
var ActNames = map[int]string{
	1: "Signal",
	2: "Noise",
	3: "Static",
	4: "Interference",
	5: "Disconnect",
}

// Objective is a tracked player goal.
type Objective struct {
	ID          string `json:"id" yaml:"id"`
	Chapter     int    `json:"chapter" yaml:"chapter"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
	Hidden      bool   `json:"hidden" yaml:"hidden"`
}

// TextSpeed controls the dialogue reveal rate.
type TextSpeed string

const (
	TextSlow    TextSpeed = "slow"
	TextNormal  TextSpeed = "normal"
	TextFast    TextSpeed = "fast"
	TextInstant TextSpeed = "instant"
)

// PerCharacter returns the reveal delay per character.
func (s TextSpeed) PerCharacter() time.Duration {
	switch s {
	case TextSlow:
		return 60 * time.Millisecond
	case TextFast:
		return 15 * time.Millisecond
	case TextInstant:
		return 0
	}
	return 35 * time.Millisecond
}

// Settings are player preferences.
type Settings struct {
	MasterVolume float64   `json:"masterVolume"`
	MusicVolume  float64   `json:"musicVolume"`
	SFXVolume    float64   `json:"sfxVolume"`
	TextSpeed    TextSpeed `json:"textSpeed"`
	CRTEffect    bool      `json:"crtEffect"`
	Scanlines    bool      `json:"scanlines"`
	ScreenShake  bool      `json:"screenShake"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		MasterVolume: 0.7,
		MusicVolume:  0.5,
		SFXVolume:    0.7,
		TextSpeed:    TextNormal,
		CRTEffect:    true,
		Scanlines:    true,
		ScreenShake:  true,
	}
}

// NotificationKind categorises a notification.
type NotificationKind string

const (
	NoticeClue        NotificationKind = "clue"
	NoticeInfo        NotificationKind = "info"
	NoticeWarning     NotificationKind = "warning"
	NoticeAchievement NotificationKind = "achievement"
)

// Notification is a user-facing event emitted by the engine.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

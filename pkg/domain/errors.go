package domain

import "errors"

// ErrSessionNotFound is returned when a live game session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrSlotNotFound is returned when a save slot id cannot be found in the store.
var ErrSlotNotFound = errors.New("save slot not found")

// ErrCorruptSave is returned when a save payload cannot be decoded or validated.
var ErrCorruptSave = errors.New("corrupt save data")

// ErrUnknownMinigame is returned when no config exists for a mini-game id.
var ErrUnknownMinigame = errors.New("unknown minigame")

// ErrNoActiveMinigame is returned when input is sent without a running mini-game.
var ErrNoActiveMinigame = errors.New("no active minigame")

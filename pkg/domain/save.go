package domain

// SaveSlot is one persisted game. Data holds the snapshot JSON.
type SaveSlot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Chapter int    `json:"chapter"`
	// Timestamp is the wall-clock save time in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// PlayTime is the cumulative play time in seconds.
	PlayTime int64  `json:"playTime"`
	Data     string `json:"data"`
}

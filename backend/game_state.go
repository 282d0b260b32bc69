package main

// GameState is the snapshot served over HTTP and pushed over the
// websocket. Board is row-major, values not exponents.
type GameState struct {
	Board       Grid  `json:"board"`
	Size        int   `json:"size"`
	Score       int   `json:"score"`
	Moves       int   `json:"moves"`
	HighestTile int   `json:"highest_tile"`
	Won         bool  `json:"won"`
	KeepPlaying bool  `json:"keep_playing"`
	Over        bool  `json:"over"`
	CanUndo     bool  `json:"can_undo"`
	StartedAtMs int64 `json:"started_at_ms"`
}

package server

// lobbyDescriptor is the JSON room metadata returned for GET_LOBBIES and the
// HTTP lobby listing.
type lobbyDescriptor struct {
	ID             uint32  `json:"id"`
	Name           string  `json:"name"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Players        int     `json:"players"`
	DesiredPlayers int     `json:"desiredPlayerCount"`
	FieldType      string  `json:"fieldType"`
}

type diagnosticsRoom struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
	Foods   int    `json:"foods"`
}

// DiagnosticsSnapshot is the payload served by the diagnostics endpoint.
type DiagnosticsSnapshot struct {
	Connections int               `json:"connections"`
	Rooms       []diagnosticsRoom `json:"rooms"`
	Tick        uint64            `json:"tick"`
}

package board

// Message is the JSON envelope exchanged over the websocket in both
// directions. Only the fields relevant to a given Type are populated.
type Message struct {
	Type      string  `json:"type"`
	SessionID string  `json:"sessionId,omitempty"`
	Token     string  `json:"token,omitempty"`
	Pieces    []Piece `json:"pieces,omitempty"`
	Piece     *Piece  `json:"piece,omitempty"`
	Action    *Action `json:"action,omitempty"`
}

// Message types. The server emits connected when a session joins and again
// whenever its resume token is refreshed, initialize with the full board,
// then pieceCreated/pieceUpdated/limitReached as actions are applied.
// Clients only ever send pieceAction.
const (
	TypeConnected    = "connected"
	TypeInitialize   = "initialize"
	TypePieceCreated = "pieceCreated"
	TypePieceUpdated = "pieceUpdated"
	TypeLimitReached = "limitReached"
	TypePieceAction  = "pieceAction"
)

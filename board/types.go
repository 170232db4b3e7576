package board

// Vector3 is a 3-component vector used for positions, rotations and
// directions. Rotation vectors hold Euler angles in radians.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vector3
	Max Vector3
}

// Piece is one movable or fixed object in the shared space. The ID is the
// join key between the server store and every client cache.
type Piece struct {
	ID             string  `json:"id"`
	ModelKind      int     `json:"modelKind"`
	Color          string  `json:"color"`
	Position       Vector3 `json:"position"`
	Rotation       Vector3 `json:"rotation"`
	IsStatic       bool    `json:"static"`
	LastModifiedBy string  `json:"lastModifiedBy"`
	LastModifiedAt int64   `json:"lastModifiedAt"` // unix milliseconds
}

// Action kinds accepted by the server.
const (
	ActionAdd    = "add"
	ActionMove   = "move"
	ActionRotate = "rotate"
)

// Payload carries the kind-specific data of an action. Fields are pointers
// so the router can merge only what the client actually sent.
type Payload struct {
	Position *Vector3 `json:"position,omitempty"`
	Rotation *Vector3 `json:"rotation,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// Action is a state-change request sent from a client to the server.
type Action struct {
	Kind          string  `json:"kind"`
	PieceRef      string  `json:"pieceRef"`
	Payload       Payload `json:"payload"`
	OriginSession string  `json:"originSession"`
	Timestamp     int64   `json:"timestamp"`
}

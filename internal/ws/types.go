package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
)

type controlMessage struct {
	Type string `json:"type"`
}

package services

// Broadcaster pushes events to websocket rooms. *realtime.Hub satisfies it;
// tests substitute a recording fake.
type Broadcaster interface {
	BroadcastToRoom(room string, message interface{})
}

// Event types carried in realtime.Message.Type.
const (
	EventBracketUpdated  = "BRACKET_UPDATED"
	EventAccessScanned   = "ACCESS_SCANNED"
	EventPaymentRecorded = "PAYMENT_RECORDED"
)

package realtime

// Publisher is the capability handed to handler groups at startup so they
// can notify a match's live participants without holding a reference to
// the connection registry or the gateway's lifecycle. It is the only way
// request-handling code reaches the realtime side.
type Publisher interface {
	// Publish delivers payload, tagged with eventName, to every current
	// member of roomID. Delivery is best-effort per recipient and an
	// empty room is a silent no-op.
	Publish(roomID, eventName string, payload any)
}

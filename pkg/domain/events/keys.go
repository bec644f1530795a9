package events

// Keyed is an event that names the business operation it belongs to.
// Handlers use the key to drop redeliveries.
type Keyed interface {
	Event
	Key() string
}

// Key is the tracking code of the transfer.
func (e TransferEvent) Key() string { return e.TrackingCode }

// Key identifies the booked deposit.
func (e InboundCredited) Key() string { return e.AccountID.String() + ":" + e.TrackingCode }

// Key is the tracking code of the returned wire.
func (e SettlementReturned) Key() string { return e.TrackingCode }

// KeyOf returns "<type>:<key>" for keyed events and "" otherwise.
func KeyOf(e Event) string {
	k, ok := e.(Keyed)
	if !ok || k.Key() == "" {
		return ""
	}
	return e.Type() + ":" + k.Key()
}

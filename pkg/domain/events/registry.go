package events

// EventTypes maps an event type to a constructor of its zero value. Bus
// transports use it to decode payloads back into concrete events.
var EventTypes = map[EventType]func() Event{
	EventTypeTransferCompleted:    func() Event { return &TransferCompleted{} },
	EventTypeTransferFailed:       func() Event { return &TransferFailed{} },
	EventTypeTransferLedgerFailed: func() Event { return &TransferLedgerFailed{} },
	EventTypeInboundCredited:      func() Event { return &InboundCredited{} },
	EventTypeSettlementReturned:   func() Event { return &SettlementReturned{} },
}

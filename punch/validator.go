package punch

// allowedAfter maps a requested kind to the kinds that may precede it on the
// same day. KindNone stands for "no punch yet today".
//
// Retorno -> Saída and Saída -> Retorno are both allowed. They look odd but
// match the rules users already punch against; changing them needs a product
// decision.
var allowedAfter = map[Kind][]Kind{
	KindClockIn:    {KindClockOut, KindBreakEnd, KindNone},
	KindClockOut:   {KindClockIn, KindBreakEnd},
	KindBreakStart: {KindClockIn, KindBreakEnd},
	KindBreakEnd:   {KindBreakStart, KindClockOut},
}

// Validate decides whether requested may follow last. It is pure: nil means
// accept, *InvalidSequenceError means reject.
func Validate(last, requested Kind) error {
	allowed, ok := allowedAfter[requested]
	if !ok {
		return ErrUnknownKind
	}
	for _, k := range allowed {
		if k == last {
			return nil
		}
	}
	return &InvalidSequenceError{Last: last, Requested: requested}
}

// LastKind returns the kind of the latest punch in events, or KindNone.
// Ties on At go to the later element, since insertion order is time order.
func LastKind(events []Event) Kind {
	var last *Event
	for i := range events {
		if last == nil || !events[i].At.Before(last.At) {
			last = &events[i]
		}
	}
	if last == nil {
		return KindNone
	}
	return last.Kind
}

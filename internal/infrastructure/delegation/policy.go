package delegation

// ChannelPolicy is the size window within which a call is worth delegating.
// Payloads shorter than MinLength pay more in dispatch overhead than the
// native backend saves; payloads longer than MaxLength overload some
// backends. Outside the window the call stays local.
type ChannelPolicy struct {
	MinLength int
	MaxLength int
}

// Admits reports whether a payload of the given length falls inside the
// delegation window.
func (p ChannelPolicy) Admits(payloadLength int) bool {
	return payloadLength >= p.MinLength && payloadLength <= p.MaxLength
}

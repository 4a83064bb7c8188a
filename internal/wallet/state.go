package wallet

// Status is the connection state machine position
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String returns a human-readable status name
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// State is a snapshot of the connection state owned by a Controller
type State struct {
	Account      Address
	IsConnecting bool
	ModalVisible bool
	ChainID      string // Last chain reported by the provider, display only
}

// Status derives the state machine position from the snapshot
func (s State) Status() Status {
	switch {
	case s.IsConnecting:
		return StatusConnecting
	case !s.Account.IsZero():
		return StatusConnected
	default:
		return StatusDisconnected
	}
}

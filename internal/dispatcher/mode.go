package dispatcher

// Mode identifies the publish discipline used for a publish
type Mode int

const (
	ModeSync Mode = iota
	ModeDeferred
	ModeNoYield
)

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeDeferred:
		return "deferred"
	case ModeNoYield:
		return "no_yield"
	default:
		return "unknown"
	}
}

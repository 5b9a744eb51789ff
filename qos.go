package ddsreader

// Reliability selects between acknowledged, sequence-numbered delivery
// and lossy, timestamp-ordered delivery.
type Reliability int

const (
	BestEffort Reliability = iota
	Reliable
)

func (r Reliability) String() string {
	if r == Reliable {
		return "Reliable"
	}
	return "BestEffort"
}

// QosPolicies is a read-only configuration snapshot attached to each
// reader. Only Reliability is consulted by this core; every other field
// is pass-through state for collaborators outside this package's scope.
type QosPolicies struct {
	Reliability Reliability

	// Passthrough fields: never read by this package, carried only so
	// that callers can attach a full QoS profile to a reader without a
	// separate side channel.
	Durability       string
	History          string
	ResourceLimits   string
	Deadline         string
	LatencyBudget    string
	Liveliness       string
	Ownership        string
	DestinationOrder string
}

func (q QosPolicies) isReliable() bool {
	return q.Reliability == Reliable
}

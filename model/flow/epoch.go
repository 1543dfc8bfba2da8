package flow

// EpochPhase represents a phase of the Epoch Preparation Protocol. Each epoch
// is subdivided into three sequential phases; the phase determines which
// process (staking auction, epoch setup, epoch commitment) is underway.
//
//	|<--- EpochPhaseStaking --->|<--- EpochPhaseSetup --->|<- EpochPhaseCommitted ->|
//	|                                    EPOCH N                                    |
type EpochPhase int

const (
	EpochPhaseUndefined EpochPhase = iota
	EpochPhaseStaking
	EpochPhaseSetup
	EpochPhaseCommitted
)

func (p EpochPhase) String() string {
	return [...]string{
		"EpochPhaseUndefined",
		"EpochPhaseStaking",
		"EpochPhaseSetup",
		"EpochPhaseCommitted",
	}[p]
}

// GetEpochPhase returns the phase for the given phase name, or
// EpochPhaseUndefined if the name does not match any phase.
func GetEpochPhase(phase string) EpochPhase {
	phases := []EpochPhase{
		EpochPhaseUndefined,
		EpochPhaseStaking,
		EpochPhaseSetup,
		EpochPhaseCommitted,
	}
	for _, p := range phases {
		if p.String() == phase {
			return p
		}
	}
	return EpochPhaseUndefined
}

package hsm

import "time"

func NewHsmManager(hsmStore *HsmStore) *HsmManager {
	return &HsmManager{
		hsmStore: hsmStore,
	}
}

type HsmManager struct {
	hsmStore *HsmStore
}

func (m *HsmManager) RecordProbe(outcome string, classification string, consecutiveFailures int) error {
	return m.hsmStore.withLock(func(st *HealthState) error {
		now := time.Now()
		if st.Probe.Classification != classification {
			st.Probe.LastTransitionAt = now
		}
		st.Probe.Classification = classification
		st.Probe.ConsecutiveFailures = consecutiveFailures
		st.Probe.TotalProbes++
		if outcome == "failure" {
			st.Probe.TotalFailures++
		}
		st.Probe.LastOutcome = outcome
		st.Probe.LastProbeAt = now
		return nil
	})
}

// Reset returns the probe state to starting. Called on every (re)launch
// of the supervised process.
func (m *HsmManager) Reset() error {
	return m.hsmStore.withLock(func(st *HealthState) error {
		st.Probe = ProbeInfo{
			Classification:   "starting",
			LastTransitionAt: time.Now(),
		}
		return nil
	})
}

func (m *HsmManager) GetProbe() (ProbeInfo, error) {
	var probeInfo ProbeInfo
	err := m.hsmStore.withLock(func(st *HealthState) error {
		probeInfo = st.Probe
		return nil
	})
	return probeInfo, err
}

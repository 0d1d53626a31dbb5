package hsm

type HsmStoreHandler interface {
	SetHealthState() error
}

type HsmHandler interface {
	RecordProbe(outcome string, classification string, consecutiveFailures int) error
	Reset() error
	GetProbe() (ProbeInfo, error)
}

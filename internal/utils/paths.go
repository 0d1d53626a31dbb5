package utils

const (
	RootDir  = "/etc/steward"
	LogDir   = "/etc/steward/log"
	StoreDir = "/etc/steward/store"

	SvmStorePath = "/etc/steward/store/svm.json"
	HsmStorePath = "/etc/steward/store/hsm.json"
	IsmStorePath = "/etc/steward/store/ism.json"

	ServiceManifestPath = "/etc/steward/service.yaml"
	ServiceLogPath      = "/etc/steward/log/service.log"
	ProbeLogPath        = "/etc/steward/log/probe.jsonl"
	AuditLogPath        = "/etc/steward/log/audit.jsonl"
)

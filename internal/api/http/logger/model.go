package logger

type Logger interface {
	Write(event Event)
}

type Event struct {
	TS            string `json:"ts"`
	EventId       string `json:"event_id"`
	CorrelationId string `json:"correlation_id,omitempty"`
	Severity      string `json:"severity"`

	Actor Actor `json:"actor"`

	Action string `json:"action,omitempty"`
	Target Target `json:"target,omitempty"`

	Request Request `json:"request"`
	Result  Result  `json:"result"`

	Runtime Runtime `json:"runtime"`

	Extra map[string]any `json:"extra,omitempty"`
}

type Actor struct {
	PeerIp string `json:"peer_ip,omitempty"`
}

type Target struct {
	ServiceId      string `json:"service_id,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	ImageId        string `json:"image_id,omitempty"`
	Classification string `json:"classification,omitempty"`
	LogLines       int    `json:"log_lines,omitempty"`
}

type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Host   string `json:"host,omitempty"`
}

type Result struct {
	Status    string `json:"status"`
	Code      int    `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type Runtime struct {
	Component string `json:"component,omitempty"`
	Node      string `json:"node,omitempty"`
}

type ctxKey int

var Severity = map[int]string{
	0: "information",
	1: "low",
	2: "medium",
	3: "high",
	4: "critical",
}

const (
	SEV_INFO     = 0
	SEV_LOW      = 1
	SEV_MEDIUM   = 2
	SEV_HIGH     = 3
	SEV_CRITICAL = 4
)

type Rule struct {
	Method   string
	Pattern  string
	Action   string
	Severity int
}

var rules = []Rule{
	// service
	{"GET", "/v1/service", "service.status", SEV_INFO},
	{"POST", "/v1/service/actions/start", "service.start", SEV_MEDIUM},
	{"POST", "/v1/service/actions/stop", "service.stop", SEV_MEDIUM},
	{"GET", "/v1/service/logs", "service.logs", SEV_LOW},

	// health
	{"GET", "/v1/health", "health.classification", SEV_INFO},
	{"GET", "/v1/health/probes", "health.probes", SEV_INFO},

	// websocket
	{"GET", "/v1/health/stream", "ws.health.stream", SEV_LOW},

	// image
	{"GET", "/v1/images", "image.list", SEV_INFO},
}

var actionSeverity = map[string]int{
	"service.start": SEV_MEDIUM,
	"service.stop":  SEV_MEDIUM,
}

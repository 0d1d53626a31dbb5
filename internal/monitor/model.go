package monitor

type ServiceMeta struct {
	ServiceId string
	Name      string
	State     string
	Pid       int
}

package service

type ServiceActionResponse struct {
	ServiceId string `json:"serviceId"`
}

type ServiceStatusResponse struct {
	ServiceId      string   `json:"serviceId"`
	Name           string   `json:"name"`
	State          string   `json:"state"`
	Pid            int      `json:"pid,omitempty"`
	Port           int      `json:"port"`
	Account        string   `json:"account"`
	Command        []string `json:"command"`
	ExitNote       string   `json:"exitNote,omitempty"`
	Classification string   `json:"classification"`
}

package svm

import "time"

type ServiceInfo struct {
	ServiceId string    `json:"serviceId"`
	Name      string    `json:"name"`
	State     string    `json:"state"` // created | running | stopped | failed
	Pid       int       `json:"pid"`
	Port      int       `json:"port"`
	Account   string    `json:"account"`
	Command   []string  `json:"command"`
	ExitNote  string    `json:"exitNote,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt"`
	StoppedAt time.Time `json:"stoppedAt"`
}

type ServiceState struct {
	Version  string                 `json:"version"`
	Services map[string]ServiceInfo `json:"services"`
}

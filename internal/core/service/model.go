package service

import (
	"steward/internal/store/hsm"
	"steward/internal/store/svm"
)

type ServiceStatusModel struct {
	Service svm.ServiceInfo `json:"service"`
	Probe   hsm.ProbeInfo   `json:"probe"`
}

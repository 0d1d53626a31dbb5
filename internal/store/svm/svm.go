package svm

import (
	"errors"
	"fmt"
	"time"
)

// ErrServiceNotFound distinguishes a missing record from a store read
// failure. Callers that treat "not found" as a normal case (first
// launch) match it with errors.Is.
var ErrServiceNotFound = errors.New("service not found")

func NewSvmManager(svmStore *SvmStore) *SvmManager {
	return &SvmManager{
		svmStore: svmStore,
	}
}

type SvmManager struct {
	svmStore *SvmStore
}

func (m *SvmManager) StoreService(serviceId string, name string, port int, account string, command []string) error {
	return m.svmStore.withLock(func(st *ServiceState) error {
		st.Services[serviceId] = ServiceInfo{
			ServiceId: serviceId,
			Name:      name,
			State:     "created",
			Pid:       0,
			Port:      port,
			Account:   account,
			Command:   command,
			CreatedAt: time.Now(),
		}
		return nil
	})
}

func (m *SvmManager) UpdateService(serviceId string, state string, pid int) error {
	return m.svmStore.withLock(func(st *ServiceState) error {
		s, ok := st.Services[serviceId]
		if !ok {
			return fmt.Errorf("serviceId=%s not found", serviceId)
		}

		s.State = state
		switch state {
		case "running":
			s.StartedAt = time.Now()
			s.ExitNote = ""
		case "stopped", "failed":
			s.StoppedAt = time.Now()
		}

		if pid >= 0 {
			s.Pid = pid
		}
		st.Services[serviceId] = s
		return nil
	})
}

func (m *SvmManager) UpdateExitNote(serviceId string, note string) error {
	return m.svmStore.withLock(func(st *ServiceState) error {
		s, ok := st.Services[serviceId]
		if !ok {
			return fmt.Errorf("serviceId=%s not found", serviceId)
		}
		s.ExitNote = note
		st.Services[serviceId] = s
		return nil
	})
}

func (m *SvmManager) RemoveService(serviceId string) error {
	return m.svmStore.withLock(func(st *ServiceState) error {
		if _, ok := st.Services[serviceId]; !ok {
			return fmt.Errorf("serviceId=%s not found", serviceId)
		}
		delete(st.Services, serviceId)
		return nil
	})
}

func (m *SvmManager) GetServiceList() ([]ServiceInfo, error) {
	var serviceList []ServiceInfo
	err := m.svmStore.withLock(func(st *ServiceState) error {
		for _, s := range st.Services {
			serviceList = append(serviceList, s)
		}
		return nil
	})
	return serviceList, err
}

func (m *SvmManager) GetServiceById(serviceId string) (ServiceInfo, error) {
	var serviceInfo ServiceInfo
	err := m.svmStore.withLock(func(st *ServiceState) error {
		for _, s := range st.Services {
			if s.ServiceId != serviceId {
				continue
			}
			serviceInfo = s
			return nil
		}
		return fmt.Errorf("service: %s: %w", serviceId, ErrServiceNotFound)
	})
	return serviceInfo, err
}

func (m *SvmManager) GetServiceByName(name string) (ServiceInfo, error) {
	var serviceInfo ServiceInfo
	err := m.svmStore.withLock(func(st *ServiceState) error {
		for _, s := range st.Services {
			if s.Name != name {
				continue
			}
			serviceInfo = s
			return nil
		}
		return fmt.Errorf("service: %s: %w", name, ErrServiceNotFound)
	})
	return serviceInfo, err
}

func (m *SvmManager) ResolveServiceId(str string) (string, error) {
	// 1. resolve service id by name
	serviceInfo, err := m.GetServiceByName(str)
	if err == nil {
		return serviceInfo.ServiceId, nil
	}
	// 2. check service exist by id
	if _, err := m.GetServiceById(str); err != nil {
		return "", err
	}
	return str, nil
}

package service

import (
	"errors"
	"fmt"
	"log"
	"syscall"
	"time"
)

// == service: stop ==

// Stop asks the service to exit with SIGTERM and escalates to SIGKILL
// when it is still alive after the stop timeout.
func (s *SupervisorService) Stop() (string, error) {
	info, err := s.svmHandler.GetServiceByName(s.manifest.Name)
	if err != nil {
		return "", err
	}
	if info.State != "running" {
		return "", fmt.Errorf("service %s is not running (state: %s)", info.Name, info.State)
	}

	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	if err := s.signalProcess(info.Pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return "", fmt.Errorf("signal pid %d failed: %w", info.Pid, err)
	}

	const step = 200 * time.Millisecond
	for waited := time.Duration(0); waited < s.stopTimeout; waited += step {
		if !s.pidAlive(info.Pid) {
			break
		}
		s.sleep(step)
	}

	if s.pidAlive(info.Pid) {
		log.Printf("[*] service %s still alive after %s, escalating to SIGKILL", info.Name, s.stopTimeout)
		if err := s.signalProcess(info.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			return "", fmt.Errorf("kill pid %d failed: %w", info.Pid, err)
		}
	}

	if err := s.svmHandler.UpdateService(info.ServiceId, "stopped", 0); err != nil {
		return "", fmt.Errorf("update service record failed: %w", err)
	}
	if err := s.svmHandler.UpdateExitNote(info.ServiceId, "terminated by operator."); err != nil {
		return "", fmt.Errorf("update exit note failed: %w", err)
	}
	return info.ServiceId, nil
}

// pidAlive treats EPERM as alive: the process exists, we just may not
// signal it.
func (s *SupervisorService) pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := s.signalProcess(pid, syscall.Signal(0))
	if err == nil {
		return true
	}
	return !errors.Is(err, syscall.ESRCH)
}

package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"steward/internal/store/svm"
	"steward/internal/utils"
)

// == service: start ==

// Boot prepares the process identity and then launches the service. The
// order is fixed: ownership, privilege drop, launch. A failure in either
// guard step aborts before any port is bound.
//
// Ownership covers the runtime tree as well as the workdir: the store
// and log files are created by bootstrap before the drop, and the
// dropped identity must still be able to write them.
func (s *SupervisorService) Boot() (string, error) {
	for _, dir := range []string{utils.RootDir, s.manifest.Workdir} {
		if err := s.guardHandler.EnsureOwnership(s.manifest.Account.Name, dir); err != nil {
			return "", fmt.Errorf("ownership preparation failed: %w", err)
		}
	}
	if err := s.guardHandler.Drop(s.manifest.Account.Name); err != nil {
		return "", fmt.Errorf("privilege drop failed: %w", err)
	}
	return s.Start()
}

func (s *SupervisorService) Start() (string, error) {
	existing, err := s.svmHandler.GetServiceByName(s.manifest.Name)
	exists := err == nil
	if err != nil && !errors.Is(err, svm.ErrServiceNotFound) {
		// an unreadable store is not a first launch
		return "", fmt.Errorf("read service record failed: %w", err)
	}
	if exists && existing.State == "running" {
		return "", fmt.Errorf("service %s is already running (pid %d)", existing.Name, existing.Pid)
	}

	// preflight: a busy bind address is fatal, the service is never spawned
	addr := fmt.Sprintf("%s:%d", s.manifest.BindHost, s.manifest.Port)
	ln, err := s.listenPort(addr)
	if err != nil {
		return "", fmt.Errorf("bind address %s unavailable: %w", addr, err)
	}
	ln.Close()

	logFile, err := s.filesystemHandler.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open service log failed: %w", err)
	}

	executor := s.commandFactory.Command(s.manifest.Command[0], s.manifest.Command[1:]...)
	executor.SetDir(s.manifest.Workdir)
	executor.SetEnv(append(os.Environ(),
		fmt.Sprintf("HOST=%s", s.manifest.BindHost),
		fmt.Sprintf("PORT=%d", s.manifest.Port),
	))
	executor.SetStdout(logFile)
	executor.SetStderr(logFile)

	if err := executor.Start(); err != nil {
		logFile.Close()
		return "", fmt.Errorf("launch %s failed: %w", s.manifest.Command[0], err)
	}
	pid := executor.Pid()

	serviceId := existing.ServiceId
	if !exists {
		serviceId = utils.NewShortId()
		err := s.svmHandler.StoreService(
			serviceId,
			s.manifest.Name,
			s.manifest.Port,
			s.manifest.Account.Name,
			s.manifest.Command,
		)
		if err != nil {
			return "", fmt.Errorf("store service record failed: %w", err)
		}
	}
	if err := s.svmHandler.UpdateService(serviceId, "running", pid); err != nil {
		return "", fmt.Errorf("update service record failed: %w", err)
	}
	// every launch starts a fresh probe cycle in the grace window
	if err := s.hsmHandler.Reset(); err != nil {
		return "", fmt.Errorf("reset health record failed: %w", err)
	}
	if s.probeResetter != nil {
		s.probeResetter.Reset(time.Now())
	}

	s.mu.Lock()
	s.stopping = false
	s.mu.Unlock()

	log.Printf("[*] service started: name=%s pid=%d addr=%s", s.manifest.Name, pid, addr)
	go s.waitService(serviceId, executor, logFile)
	return serviceId, nil
}

func (s *SupervisorService) waitService(serviceId string, executor utils.CommandExecutor, logFile *os.File) {
	waitErr := executor.Wait()
	logFile.Close()

	s.mu.Lock()
	operatorStop := s.stopping
	s.mu.Unlock()

	if operatorStop {
		s.finishService(serviceId, "stopped", "terminated by operator.")
		return
	}
	if waitErr != nil {
		s.finishService(serviceId, "failed", waitErr.Error())
		return
	}
	s.finishService(serviceId, "stopped", "exited normally.")
}

func (s *SupervisorService) finishService(serviceId string, state string, note string) {
	if err := s.svmHandler.UpdateService(serviceId, state, 0); err != nil {
		log.Printf("[*] update service record failed: %v", err)
	}
	if err := s.svmHandler.UpdateExitNote(serviceId, note); err != nil {
		log.Printf("[*] update exit note failed: %v", err)
	}
	log.Printf("[*] service exited: name=%s state=%s note=%s", s.manifest.Name, state, note)
}

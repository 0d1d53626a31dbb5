package hsm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"steward/internal/utils"
)

func NewHsmStore(path string) *HsmStore {
	return &HsmStore{
		path:              path,
		filesystemHandler: utils.NewFilesystemExecutor(),
	}
}

type HsmStore struct {
	path              string
	mu                sync.Mutex
	filesystemHandler utils.FilesystemHandler
}

// SetHealthState initializes the state file if it does not exist yet.
func (s *HsmStore) SetHealthState() error {
	return s.withLock(func(st *HealthState) error {
		return nil
	})
}

func (s *HsmStore) withLock(fn func(st *HealthState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockPath := s.path + ".lock"
	if err := s.filesystemHandler.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	lf, err := s.filesystemHandler.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer lf.Close()

	if err := s.filesystemHandler.Flock(int(lf.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer s.filesystemHandler.Flock(int(lf.Fd()), syscall.LOCK_UN)

	st, err := s.loadOrInit()
	if err != nil {
		return err
	}

	if err := fn(st); err != nil {
		return err
	}

	return s.atomicSave(st)
}

func (s *HsmStore) loadOrInit() (*HealthState, error) {
	b, err := s.filesystemHandler.ReadFile(s.path)
	if err != nil {
		if s.filesystemHandler.IsNotExist(err) {
			return &HealthState{
				Version: "0.1.0",
				Probe: ProbeInfo{
					Classification: "starting",
				},
			}, nil
		}
		return nil, err
	}

	var st HealthState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("hsm state json broken: %w", err)
	}
	return &st, nil
}

func (s *HsmStore) atomicSave(st *HealthState) error {
	tmp := s.path + ".tmp"

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	f, err := s.filesystemHandler.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return s.filesystemHandler.Rename(tmp, s.path)
}

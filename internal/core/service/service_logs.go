package service

import (
	"fmt"

	"steward/internal/utils"
)

// == service: logs ==

const logReadLimit = 1 << 20

func (s *SupervisorService) Logs(lines int) ([]byte, error) {
	if lines <= 0 {
		lines = 100
	}
	out, err := utils.TailLines(s.logPath, lines, logReadLimit)
	if err != nil {
		if s.filesystemHandler.IsNotExist(err) {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("read service log failed: %w", err)
	}
	return out, nil
}

package service

import (
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"steward/internal/core/guard"
	"steward/internal/store/hsm"
	"steward/internal/store/svm"
	"steward/internal/utils"
)

func NewSupervisorService(manifest Manifest) *SupervisorService {
	return &SupervisorService{
		manifest:          manifest,
		svmHandler:        svm.NewSvmManager(svm.NewSvmStore(utils.SvmStorePath)),
		hsmHandler:        hsm.NewHsmManager(hsm.NewHsmStore(utils.HsmStorePath)),
		guardHandler:      guard.NewPrivilegeGuard(),
		commandFactory:    utils.NewCommandFactory(),
		filesystemHandler: utils.NewFilesystemExecutor(),
		logPath:           utils.ServiceLogPath,
		stopTimeout:       10 * time.Second,
		listenPort: func(addr string) (io.Closer, error) {
			return net.Listen("tcp", addr)
		},
		signalProcess: func(pid int, sig syscall.Signal) error {
			return syscall.Kill(pid, sig)
		},
		sleep: time.Sleep,
	}
}

// ProbeResetter restarts the health classification cycle. Wired to the
// probe loop so a relaunch always begins a fresh start period.
type ProbeResetter interface {
	Reset(at time.Time)
}

type SupervisorService struct {
	manifest          Manifest
	svmHandler        svm.SvmHandler
	hsmHandler        hsm.HsmHandler
	guardHandler      guard.GuardHandler
	commandFactory    utils.CommandFactory
	filesystemHandler utils.FilesystemHandler
	logPath           string
	stopTimeout       time.Duration

	listenPort    func(addr string) (io.Closer, error)
	signalProcess func(pid int, sig syscall.Signal) error
	sleep         func(d time.Duration)

	probeResetter ProbeResetter

	mu       sync.Mutex
	stopping bool
}

// AttachProbeResetter wires the probe loop into the launch path. Without
// it only the stored health record is reset on launch.
func (s *SupervisorService) AttachProbeResetter(r ProbeResetter) {
	s.probeResetter = r
}

func (s *SupervisorService) Status() (ServiceStatusModel, error) {
	info, err := s.svmHandler.GetServiceByName(s.manifest.Name)
	if err != nil {
		return ServiceStatusModel{}, err
	}
	probe, err := s.hsmHandler.GetProbe()
	if err != nil {
		return ServiceStatusModel{}, err
	}
	return ServiceStatusModel{Service: info, Probe: probe}, nil
}

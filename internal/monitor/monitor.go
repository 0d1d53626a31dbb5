package monitor

import (
	"context"
	"log"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"steward/internal/store/hsm"
	"steward/internal/store/svm"
	"steward/internal/utils"
)

func NewProcessMonitor() *ProcessMonitor {
	return &ProcessMonitor{
		svmHandler: svm.NewSvmManager(svm.NewSvmStore(utils.SvmStorePath)),
		hsmHandler: hsm.NewHsmManager(hsm.NewHsmStore(utils.HsmStorePath)),
		pidAlive:   pidAlive,
		tick:       time.Second,
	}
}

// ProbeResetter restarts the health classification cycle after a dead
// process is detected, so the next launch begins in a fresh start period.
type ProbeResetter interface {
	Reset(at time.Time)
}

type ProcessMonitor struct {
	svmHandler    svm.SvmHandler
	hsmHandler    hsm.HsmHandler
	probeResetter ProbeResetter
	pidAlive      func(pid int) bool
	tick          time.Duration
}

// AttachProbeResetter wires the probe loop into the dead-process path.
func (m *ProcessMonitor) AttachProbeResetter(r ProbeResetter) {
	m.probeResetter = r
}

func (m *ProcessMonitor) Start(ctx context.Context) error {
	resolver := NewResolver(m.svmHandler)

	// watch SVM file update
	go func() {
		if err := resolver.Watch(ctx); err != nil {
			log.Printf("watch stopped: %v", err)
		}
	}()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.sweep(resolver)
		}
	}
}

func (m *ProcessMonitor) sweep(resolver *Resolver) {
	for _, service := range resolver.Snapshot() {
		if service.State != "running" {
			continue
		}
		if m.pidAlive(service.Pid) {
			continue
		}

		log.Printf("[*] service %s down detected.", service.Name)
		if err := m.svmHandler.UpdateService(service.ServiceId, "stopped", 0); err != nil {
			continue
		}
		if err := m.svmHandler.UpdateExitNote(service.ServiceId, "process down detected."); err != nil {
			continue
		}
		// a dead process cannot be healthy; the next launch probes from scratch
		if err := m.hsmHandler.Reset(); err != nil {
			log.Printf("[*] reset health record failed: %v", err)
		}
		if m.probeResetter != nil {
			m.probeResetter.Reset(time.Now())
		}
	}
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		// process not exist
		return false
	}

	// send 0 signal to process
	err := syscall.Kill(pid, 0)
	switch err {
	case nil:
		// process exist
		return true
	case syscall.ESRCH:
		// no such process
		return false
	case syscall.EPERM:
		// operation not permitted, but process exist
		return true
	}
	// other signal: process not exist
	return false
}

func NewResolver(svmHandler svm.SvmHandler) *Resolver {
	resolver := &Resolver{
		svmHandler: svmHandler,
	}
	resolver.Refresh()
	return resolver
}

type Resolver struct {
	resolveMap atomic.Pointer[map[string]ServiceMeta]
	svmHandler svm.SvmHandler
}

func (r *Resolver) Refresh() {
	resolveMap := map[string]ServiceMeta{}
	serviceList, _ := r.svmHandler.GetServiceList()
	for _, s := range serviceList {
		if _, ok := resolveMap[s.ServiceId]; !ok {
			resolveMap[s.ServiceId] = ServiceMeta{
				ServiceId: s.ServiceId,
				Name:      s.Name,
				State:     s.State,
				Pid:       s.Pid,
			}
		}
	}
	r.resolveMap.Store(&resolveMap)
}

func (r *Resolver) Snapshot() map[string]ServiceMeta {
	m := r.resolveMap.Load()
	if m == nil {
		return map[string]ServiceMeta{}
	}
	return *m
}

func (r *Resolver) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(utils.SvmStorePath)
	base := filepath.Base(utils.SvmStorePath)

	if err := w.Add(dir); err != nil {
		return err
	}

	var pending atomic.Bool
	trigger := func() {
		if pending.CompareAndSwap(false, true) {
			go func() {
				time.Sleep(50 * time.Millisecond)
				r.Refresh()
				pending.Store(false)
			}()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-w.Events:
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				trigger()
			}
		case <-w.Errors:
		}
	}
}

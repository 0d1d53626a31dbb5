package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"steward/internal/core/health"
	"steward/internal/core/image"
	"steward/internal/store/hsm"
	"steward/internal/store/svm"
	"steward/internal/utils"
)

type fakeSvmHandler struct {
	mu       sync.Mutex
	services map[string]svm.ServiceInfo
	readErr  error
}

func newFakeSvmHandler() *fakeSvmHandler {
	return &fakeSvmHandler{services: map[string]svm.ServiceInfo{}}
}

func (f *fakeSvmHandler) StoreService(serviceId string, name string, port int, account string, command []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[serviceId] = svm.ServiceInfo{
		ServiceId: serviceId,
		Name:      name,
		State:     "created",
		Port:      port,
		Account:   account,
		Command:   command,
	}
	return nil
}

func (f *fakeSvmHandler) UpdateService(serviceId string, state string, pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.services[serviceId]
	if !ok {
		return fmt.Errorf("service not found: %s", serviceId)
	}
	info.State = state
	info.Pid = pid
	f.services[serviceId] = info
	return nil
}

func (f *fakeSvmHandler) UpdateExitNote(serviceId string, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.services[serviceId]
	if !ok {
		return fmt.Errorf("service not found: %s", serviceId)
	}
	info.ExitNote = note
	f.services[serviceId] = info
	return nil
}

func (f *fakeSvmHandler) RemoveService(serviceId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.services, serviceId)
	return nil
}

func (f *fakeSvmHandler) GetServiceList() ([]svm.ServiceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []svm.ServiceInfo
	for _, info := range f.services {
		out = append(out, info)
	}
	return out, nil
}

func (f *fakeSvmHandler) GetServiceById(serviceId string) (svm.ServiceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return svm.ServiceInfo{}, f.readErr
	}
	info, ok := f.services[serviceId]
	if !ok {
		return svm.ServiceInfo{}, fmt.Errorf("service: %s: %w", serviceId, svm.ErrServiceNotFound)
	}
	return info, nil
}

func (f *fakeSvmHandler) GetServiceByName(name string) (svm.ServiceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return svm.ServiceInfo{}, f.readErr
	}
	for _, info := range f.services {
		if info.Name == name {
			return info, nil
		}
	}
	return svm.ServiceInfo{}, fmt.Errorf("service: %s: %w", name, svm.ErrServiceNotFound)
}

func (f *fakeSvmHandler) ResolveServiceId(str string) (string, error) {
	return str, nil
}

type fakeHsmHandler struct {
	mu     sync.Mutex
	resets int
}

func (f *fakeHsmHandler) RecordProbe(outcome string, classification string, consecutiveFailures int) error {
	return nil
}

func (f *fakeHsmHandler) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeHsmHandler) GetProbe() (hsm.ProbeInfo, error) {
	return hsm.ProbeInfo{Classification: "starting"}, nil
}

func (f *fakeHsmHandler) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

type fakeGuardHandler struct {
	ensured       []string
	ensuredAtDrop int
	dropCalls     int
	ensureErr     error
	dropErr       error
}

func (f *fakeGuardHandler) EnsureOwnership(account string, dir string) error {
	f.ensured = append(f.ensured, dir)
	return f.ensureErr
}

func (f *fakeGuardHandler) Drop(account string) error {
	f.dropCalls++
	f.ensuredAtDrop = len(f.ensured)
	return f.dropErr
}

type fakeProbeResetter struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeProbeResetter) Reset(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeProbeResetter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type launchFactory struct {
	mu       sync.Mutex
	commands []*launchCommand
	startErr error
	waitCh   chan error
}

func (f *launchFactory) Command(name string, args ...string) utils.CommandExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &launchCommand{
		argv:     append([]string{name}, args...),
		startErr: f.startErr,
		waitCh:   f.waitCh,
	}
	f.commands = append(f.commands, c)
	return c
}

func (f *launchFactory) launched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.commands {
		if c.started {
			n++
		}
	}
	return n
}

type launchCommand struct {
	argv     []string
	dir      string
	env      []string
	started  bool
	startErr error
	waitCh   chan error
}

func (c *launchCommand) Start() error {
	if c.startErr != nil {
		return c.startErr
	}
	c.started = true
	return nil
}

func (c *launchCommand) Wait() error {
	if c.waitCh == nil {
		return nil
	}
	return <-c.waitCh
}

func (c *launchCommand) Run() error { return errors.New("not implemented") }
func (c *launchCommand) Output() ([]byte, error) { return nil, errors.New("not implemented") }
func (c *launchCommand) CombineOutput() ([]byte, error) { return nil, errors.New("not implemented") }
func (c *launchCommand) Pid() int { return 4321 }
func (c *launchCommand) SetDir(dir string) { c.dir = dir }
func (c *launchCommand) SetEnv(envv []string) { c.env = envv }
func (c *launchCommand) SetStdout(w io.Writer) {}
func (c *launchCommand) SetStderr(w io.Writer) {}
func (c *launchCommand) SetStdin(r io.Reader) {}

type signalRecorder struct {
	mu        sync.Mutex
	signals   []syscall.Signal
	alive     bool
	dieOnTerm bool
}

func (r *signalRecorder) signal(pid int, sig syscall.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sig == syscall.Signal(0) {
		if r.alive {
			return nil
		}
		return syscall.ESRCH
	}
	r.signals = append(r.signals, sig)
	if sig == syscall.SIGKILL {
		r.alive = false
	}
	if sig == syscall.SIGTERM && r.dieOnTerm {
		r.alive = false
	}
	return nil
}

func (r *signalRecorder) sent() []syscall.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]syscall.Signal{}, r.signals...)
}

func testManifest() Manifest {
	return Manifest{
		Name:         "youtubedoc",
		Account:      image.AccountSpec{Name: "appuser"},
		Workdir:      "/app",
		Command:      []string{"uvicorn", "main:app"},
		BindHost:     "0.0.0.0",
		Port:         8000,
		LivenessPath: "/health",
		Policy:       health.DefaultPolicy(),
	}
}

type supervisorFixture struct {
	svc     *SupervisorService
	store   *fakeSvmHandler
	probe   *fakeHsmHandler
	guard   *fakeGuardHandler
	factory *launchFactory
	signals *signalRecorder

	mu          sync.Mutex
	listenAddrs []string
	listenErr   error
}

func newSupervisorFixture(t *testing.T) *supervisorFixture {
	t.Helper()

	fx := &supervisorFixture{
		store:   newFakeSvmHandler(),
		probe:   &fakeHsmHandler{},
		guard:   &fakeGuardHandler{},
		factory: &launchFactory{waitCh: make(chan error, 1)},
		signals: &signalRecorder{},
	}
	fx.svc = &SupervisorService{
		manifest:          testManifest(),
		svmHandler:        fx.store,
		hsmHandler:        fx.probe,
		guardHandler:      fx.guard,
		commandFactory:    fx.factory,
		filesystemHandler: utils.NewFilesystemExecutor(),
		logPath:           filepath.Join(t.TempDir(), "service.log"),
		stopTimeout:       time.Second,
		listenPort: func(addr string) (io.Closer, error) {
			fx.mu.Lock()
			defer fx.mu.Unlock()
			fx.listenAddrs = append(fx.listenAddrs, addr)
			if fx.listenErr != nil {
				return nil, fx.listenErr
			}
			return io.NopCloser(nil), nil
		},
		signalProcess: fx.signals.signal,
		sleep:         func(d time.Duration) {},
	}
	return fx
}

func (fx *supervisorFixture) listens() []string {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]string{}, fx.listenAddrs...)
}

func waitForState(t *testing.T, store *fakeSvmHandler, serviceId string, state string) svm.ServiceInfo {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, err := store.GetServiceById(serviceId)
		if err == nil && info.State == state {
			return info
		}
		time.Sleep(5 * time.Millisecond)
	}
	info, _ := store.GetServiceById(serviceId)
	t.Fatalf("service never reached state %s, last: %+v", state, info)
	return svm.ServiceInfo{}
}

func TestBootGuardFailureAbortsBeforeListen(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.guard.dropErr = errors.New("no such account: appuser")

	if _, err := fx.svc.Boot(); err == nil {
		t.Fatalf("expected error")
	}

	if len(fx.listens()) != 0 {
		t.Fatalf("port touched despite guard failure: %v", fx.listens())
	}
	if fx.factory.launched() != 0 {
		t.Fatalf("process launched despite guard failure")
	}
}

func TestBootOwnershipRunsBeforeDrop(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.guard.ensureErr = errors.New("chown failed")

	if _, err := fx.svc.Boot(); err == nil {
		t.Fatalf("expected error")
	}
	if fx.guard.dropCalls != 0 {
		t.Fatalf("privilege drop attempted after ownership failure")
	}
}

func TestBootOwnsRuntimeTreeBeforeDrop(t *testing.T) {
	fx := newSupervisorFixture(t)

	if _, err := fx.svc.Boot(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the runtime tree must change owner as well, or post-drop store and
	// log writes fail with EACCES
	want := []string{utils.RootDir, "/app"}
	if len(fx.guard.ensured) != len(want) {
		t.Fatalf("unexpected ownership dirs: %v", fx.guard.ensured)
	}
	for i, dir := range want {
		if fx.guard.ensured[i] != dir {
			t.Fatalf("unexpected ownership dirs: %v", fx.guard.ensured)
		}
	}
	if fx.guard.dropCalls != 1 {
		t.Fatalf("expected one privilege drop, got %d", fx.guard.dropCalls)
	}
	if fx.guard.ensuredAtDrop != len(want) {
		t.Fatalf("privilege dropped before ownership transfer completed")
	}
	fx.factory.waitCh <- nil
}

func TestStartPortBusyIsFatal(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.listenErr = errors.New("address already in use")

	if _, err := fx.svc.Start(); err == nil {
		t.Fatalf("expected error")
	}
	if fx.factory.launched() != 0 {
		t.Fatalf("process launched despite busy port")
	}
	if _, err := fx.store.GetServiceByName("youtubedoc"); err == nil {
		t.Fatalf("service record created despite busy port")
	}
}

func TestStartRecordsRunningAndResetsProbe(t *testing.T) {
	fx := newSupervisorFixture(t)

	serviceId, err := fx.svc.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := fx.store.GetServiceById(serviceId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.State != "running" || info.Pid != 4321 {
		t.Fatalf("unexpected record: %+v", info)
	}
	if fx.probe.resetCount() != 1 {
		t.Fatalf("expected one probe reset, got %d", fx.probe.resetCount())
	}
	if got := fx.listens(); len(got) != 1 || got[0] != "0.0.0.0:8000" {
		t.Fatalf("unexpected preflight: %v", got)
	}

	cmd := fx.factory.commands[0]
	if cmd.dir != "/app" {
		t.Fatalf("unexpected workdir: %s", cmd.dir)
	}
	found := false
	for _, kv := range cmd.env {
		if kv == "PORT=8000" {
			found = true
		}
	}
	if !found {
		t.Fatalf("PORT not in environment: %v", cmd.env)
	}

	fx.factory.waitCh <- nil
	done := waitForState(t, fx.store, serviceId, "stopped")
	if done.ExitNote != "exited normally." {
		t.Fatalf("unexpected exit note: %q", done.ExitNote)
	}
}

func TestStartResetsProbeCycle(t *testing.T) {
	fx := newSupervisorFixture(t)
	resetter := &fakeProbeResetter{}
	fx.svc.AttachProbeResetter(resetter)

	if _, err := fx.svc.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetter.count() != 1 {
		t.Fatalf("expected one probe cycle reset, got %d", resetter.count())
	}
	fx.factory.waitCh <- nil
}

func TestRelaunchResetsProbeCycleAgain(t *testing.T) {
	fx := newSupervisorFixture(t)
	resetter := &fakeProbeResetter{}
	fx.svc.AttachProbeResetter(resetter)

	serviceId, err := fx.svc.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fx.factory.waitCh <- errors.New("signal: killed")
	waitForState(t, fx.store, serviceId, "failed")

	// the crashed generation's classification must not carry over
	if _, err := fx.svc.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetter.count() != 2 {
		t.Fatalf("expected reset per launch, got %d", resetter.count())
	}
	if fx.probe.resetCount() != 2 {
		t.Fatalf("expected health record reset per launch, got %d", fx.probe.resetCount())
	}
	fx.factory.waitCh <- nil
}

func TestStartFailsOnUnreadableStore(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.store.readErr = errors.New("flock: input/output error")

	if _, err := fx.svc.Start(); err == nil {
		t.Fatalf("expected error")
	}
	if len(fx.listens()) != 0 {
		t.Fatalf("port touched despite unreadable store")
	}
	if fx.factory.launched() != 0 {
		t.Fatalf("process launched despite unreadable store")
	}
}

func TestStartRejectsRunningService(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.store.StoreService("abc123", "youtubedoc", 8000, "appuser", []string{"uvicorn"})
	fx.store.UpdateService("abc123", "running", 99)

	if _, err := fx.svc.Start(); err == nil {
		t.Fatalf("expected error")
	}
	if fx.factory.launched() != 0 {
		t.Fatalf("second process launched")
	}
}

func TestCrashMarksFailedWithNote(t *testing.T) {
	fx := newSupervisorFixture(t)

	serviceId, err := fx.svc.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fx.factory.waitCh <- errors.New("signal: killed")
	info := waitForState(t, fx.store, serviceId, "failed")
	if info.ExitNote != "signal: killed" {
		t.Fatalf("unexpected exit note: %q", info.ExitNote)
	}
}

func TestStopGracefulTermination(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.signals.alive = true
	fx.signals.dieOnTerm = true

	serviceId, err := fx.svc.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stoppedId, err := fx.svc.Stop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stoppedId != serviceId {
		t.Fatalf("unexpected service id: %s", stoppedId)
	}

	sent := fx.signals.sent()
	if len(sent) != 1 || sent[0] != syscall.SIGTERM {
		t.Fatalf("unexpected signals: %v", sent)
	}

	fx.factory.waitCh <- errors.New("signal: terminated")
	info := waitForState(t, fx.store, serviceId, "stopped")
	if info.ExitNote != "terminated by operator." {
		t.Fatalf("unexpected exit note: %q", info.ExitNote)
	}
}

func TestStopEscalatesToSigkill(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.signals.alive = true

	serviceId, err := fx.svc.Start()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := fx.svc.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := fx.signals.sent()
	if len(sent) != 2 || sent[0] != syscall.SIGTERM || sent[1] != syscall.SIGKILL {
		t.Fatalf("unexpected signals: %v", sent)
	}

	fx.factory.waitCh <- errors.New("signal: killed")
	waitForState(t, fx.store, serviceId, "stopped")
}

func TestStopRejectsNonRunningService(t *testing.T) {
	fx := newSupervisorFixture(t)
	fx.store.StoreService("abc123", "youtubedoc", 8000, "appuser", []string{"uvicorn"})
	fx.store.UpdateService("abc123", "stopped", 0)

	if _, err := fx.svc.Stop(); err == nil {
		t.Fatalf("expected error")
	}
	if len(fx.signals.sent()) != 0 {
		t.Fatalf("signal sent to stopped service")
	}
}

func TestLogsTailsServiceLog(t *testing.T) {
	fx := newSupervisorFixture(t)

	var body []byte
	for i := 1; i <= 10; i++ {
		body = append(body, []byte(fmt.Sprintf("line %d\n", i))...)
	}
	if err := os.WriteFile(fx.svc.logPath, body, 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := fx.svc.Logs(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "line 8\nline 9\nline 10\n" {
		t.Fatalf("unexpected tail: %q", string(out))
	}
}

func TestLogsMissingFileIsEmpty(t *testing.T) {
	fx := newSupervisorFixture(t)

	out, err := fx.svc.Logs(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %q", string(out))
	}
}

package env

import (
	"steward/internal/store/hsm"
	"steward/internal/store/ism"
	"steward/internal/store/svm"
	"steward/internal/utils"
)

func NewBootstrapManager() *BootstrapManager {
	return &BootstrapManager{
		filesystemHandler: utils.NewFilesystemExecutor(),
		svmStoreHandler:   svm.NewSvmStore(utils.SvmStorePath),
		hsmStoreHandler:   hsm.NewHsmStore(utils.HsmStorePath),
		ismStoreHandler:   ism.NewIsmStore(utils.IsmStorePath),
	}
}

type BootstrapManager struct {
	filesystemHandler utils.FilesystemHandler
	svmStoreHandler   svm.SvmStoreHandler
	hsmStoreHandler   hsm.HsmStoreHandler
	ismStoreHandler   ism.IsmStoreHandler
}

func (m *BootstrapManager) SetupRuntime() error {
	// 1. create runtime directory
	if err := m.setupRuntimeDirectory(); err != nil {
		return err
	}

	// 2. setup SVM (Service State Management)
	if err := m.setupSvm(); err != nil {
		return err
	}

	// 3. setup HSM (Health State Management)
	if err := m.setupHsm(); err != nil {
		return err
	}

	// 4. setup ISM (Image State Management)
	if err := m.setupIsm(); err != nil {
		return err
	}

	return nil
}

func (m *BootstrapManager) setupRuntimeDirectory() error {
	dirs := []string{
		utils.RootDir,
		utils.StoreDir,
		utils.LogDir,
	}
	for _, dir := range dirs {
		if err := m.filesystemHandler.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (m *BootstrapManager) setupSvm() error {
	return m.svmStoreHandler.SetServiceState()
}

func (m *BootstrapManager) setupHsm() error {
	return m.hsmStoreHandler.SetHealthState()
}

func (m *BootstrapManager) setupIsm() error {
	return m.ismStoreHandler.SetImageState()
}

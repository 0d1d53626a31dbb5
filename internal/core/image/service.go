package image

import (
	"errors"
	"fmt"
	"log"
	"os/user"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"steward/internal/store/ism"
	"steward/internal/utils"
)

func NewImageService() *ImageService {
	return &ImageService{
		ismHandler:     ism.NewIsmManager(ism.NewIsmStore(utils.IsmStorePath)),
		commandFactory: utils.NewCommandFactory(),
		lookupAccount: func(name string) error {
			_, err := user.Lookup(name)
			return err
		},
	}
}

type ImageService struct {
	ismHandler     ism.IsmHandler
	commandFactory utils.CommandFactory
	lookupAccount  func(name string) error
}

// == service: assemble ==
//
// Assemble runs the build specification strictly in order: system
// packages, dependency manifest, copy set, service account, cache
// cleanup. The first failing step aborts the whole assembly and nothing
// is recorded.
func (s *ImageService) Assemble(assembleParameter AssembleModel) (imageId string, err error) {
	if assembleParameter.Name == "" {
		return "", errors.New("image name is required")
	}
	if assembleParameter.Account.Name == "" {
		return "", errors.New("service account is required")
	}

	packageManager := assembleParameter.PackageManager
	if packageManager == "" {
		packageManager = "apt-get"
	}

	// 1. system packages
	if len(assembleParameter.Packages) > 0 {
		if err := s.runStep(packageManager, "update"); err != nil {
			return "", err
		}
		installArgs := append([]string{"install", "-y", "--no-install-recommends"}, assembleParameter.Packages...)
		if err := s.runStep(packageManager, installArgs...); err != nil {
			return "", err
		}
	}

	// 2. dependency manifest
	if assembleParameter.ManifestPath != "" {
		installCommand := assembleParameter.InstallCommand
		if len(installCommand) == 0 {
			installCommand = []string{"pip", "install", "--no-cache-dir", "-r", assembleParameter.ManifestPath}
		}
		if err := s.runStep(installCommand[0], installCommand[1:]...); err != nil {
			return "", err
		}
	}

	// 3. copy set
	for _, c := range assembleParameter.Copy {
		if c.Src == "" || c.Dst == "" {
			return "", errors.New("copy entry requires src and dst")
		}
		if err := s.runStep("cp", "-a", c.Src, c.Dst); err != nil {
			return "", err
		}
	}

	// 4. service account (idempotent: an existing account is kept as-is)
	if err := s.ensureAccount(assembleParameter.Account); err != nil {
		return "", err
	}

	// 5. cache cleanup, housekeeping only
	if len(assembleParameter.Packages) > 0 && packageManager == "apt-get" {
		if err := s.runStep("apt-get", "clean"); err != nil {
			return "", err
		}
		if err := s.runStep("rm", "-rf", "/var/lib/apt/lists/"); err != nil {
			return "", err
		}
	}

	imageId = utils.NewShortId()
	if err := s.ismHandler.StoreImage(
		imageId,
		assembleParameter.Name,
		assembleParameter.Packages,
		assembleParameter.ManifestPath,
		assembleParameter.Account.Name,
	); err != nil {
		return "", fmt.Errorf("store image record failed: %w", err)
	}
	return imageId, nil
}

func (s *ImageService) ensureAccount(account AccountSpec) error {
	if err := s.lookupAccount(account.Name); err == nil {
		return nil
	}

	home := account.Home
	if home == "" {
		home = "/home/" + account.Name
	}
	shell := account.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return s.runStep("useradd", "-m", "-d", home, "-s", shell, account.Name)
}

func (s *ImageService) runStep(name string, args ...string) error {
	log.Printf("[*] assemble: %s", s.buildCommand(name, args))

	step := s.commandFactory.Command(name, args...)
	out, err := step.CombineOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("assemble step %s failed: %w", name, err)
		}
		return fmt.Errorf("assemble step %s failed: %s: %w", name, msg, err)
	}
	return nil
}

func (s *ImageService) buildCommand(name string, args []string) string {
	parts := []string{shellescape.Quote(name)}
	for _, a := range args {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}

func (s *ImageService) GetImageList() ([]ism.ImageInfo, error) {
	return s.ismHandler.GetImageList()
}

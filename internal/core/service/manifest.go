package service

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"steward/internal/core/health"
	"steward/internal/core/image"
)

// Manifest is the decoded, validated service description: what to run,
// where to bind, how to probe it, and how the image is assembled.
type Manifest struct {
	Name     string
	Account  image.AccountSpec
	Workdir  string
	Command  []string
	BindHost string
	Port     int

	LivenessPath string
	Policy       health.Policy

	Build image.AssembleModel
}

type manifestMeta struct {
	Name string `yaml:"name"`
}

type accountManifest struct {
	Name  string `yaml:"name"`
	Home  string `yaml:"home"`
	Shell string `yaml:"shell"`
}

type bindManifest struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type healthcheckManifest struct {
	Path        string `yaml:"path"`
	Port        int    `yaml:"port"`
	Interval    string `yaml:"interval"`
	Timeout     string `yaml:"timeout"`
	StartPeriod string `yaml:"startPeriod"`
	Retries     *int   `yaml:"retries"`
}

type copyManifest struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}

type buildManifest struct {
	PackageManager string         `yaml:"packageManager"`
	Packages       []string       `yaml:"packages"`
	Manifest       string         `yaml:"manifest"`
	InstallCommand []string       `yaml:"installCommand"`
	Copy           []copyManifest `yaml:"copy"`
}

type serviceManifestSpec struct {
	Account     accountManifest     `yaml:"account"`
	Workdir     string              `yaml:"workdir"`
	Command     []string            `yaml:"command"`
	Bind        bindManifest        `yaml:"bind"`
	Healthcheck healthcheckManifest `yaml:"healthcheck"`
	Build       buildManifest       `yaml:"build"`
}

type serviceManifest struct {
	APIVersion string              `yaml:"apiVersion"`
	Kind       string              `yaml:"kind"`
	Metadata   manifestMeta        `yaml:"metadata"`
	Spec       serviceManifestSpec `yaml:"spec"`
}

func LoadManifest(path string) (Manifest, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read service manifest failed: %w", err)
	}
	return DecodeManifest(body)
}

func DecodeManifest(body []byte) (Manifest, error) {
	var raw serviceManifest
	if err := yaml.Unmarshal(body, &raw); err != nil {
		return Manifest{}, fmt.Errorf("service manifest yaml broken: %w", err)
	}
	if raw.Kind != "Service" {
		return Manifest{}, fmt.Errorf("unsupported manifest kind: %q", raw.Kind)
	}
	if raw.Metadata.Name == "" {
		return Manifest{}, errors.New("metadata.name is required")
	}
	if len(raw.Spec.Command) == 0 {
		return Manifest{}, errors.New("spec.command is required")
	}
	if raw.Spec.Account.Name == "" {
		return Manifest{}, errors.New("spec.account.name is required")
	}

	m := Manifest{
		Name: raw.Metadata.Name,
		Account: image.AccountSpec{
			Name:  raw.Spec.Account.Name,
			Home:  raw.Spec.Account.Home,
			Shell: raw.Spec.Account.Shell,
		},
		Workdir:  raw.Spec.Workdir,
		Command:  raw.Spec.Command,
		BindHost: raw.Spec.Bind.Host,
		Port:     raw.Spec.Bind.Port,
	}
	if m.Workdir == "" {
		m.Workdir = "/app"
	}
	if m.BindHost == "" {
		m.BindHost = "0.0.0.0"
	}
	if m.Port == 0 {
		m.Port = 8000
	}

	// the probed port and the bound port are the same constant; a
	// disagreement in the manifest is a configuration defect
	if raw.Spec.Healthcheck.Port != 0 && raw.Spec.Healthcheck.Port != m.Port {
		return Manifest{}, fmt.Errorf(
			"healthcheck port %d does not match bind port %d",
			raw.Spec.Healthcheck.Port, m.Port,
		)
	}

	m.LivenessPath = raw.Spec.Healthcheck.Path
	if m.LivenessPath == "" {
		m.LivenessPath = "/health"
	}

	policy, err := decodePolicy(raw.Spec.Healthcheck)
	if err != nil {
		return Manifest{}, err
	}
	m.Policy = policy

	m.Build = image.AssembleModel{
		Name:           m.Name,
		PackageManager: raw.Spec.Build.PackageManager,
		Packages:       raw.Spec.Build.Packages,
		ManifestPath:   raw.Spec.Build.Manifest,
		InstallCommand: raw.Spec.Build.InstallCommand,
		Account:        m.Account,
	}
	for _, c := range raw.Spec.Build.Copy {
		m.Build.Copy = append(m.Build.Copy, image.CopyEntry{Src: c.Src, Dst: c.Dst})
	}

	return m, nil
}

func decodePolicy(raw healthcheckManifest) (health.Policy, error) {
	policy := health.DefaultPolicy()

	var err error
	if raw.Interval != "" {
		if policy.Interval, err = time.ParseDuration(raw.Interval); err != nil {
			return health.Policy{}, fmt.Errorf("healthcheck interval broken: %w", err)
		}
	}
	if raw.Timeout != "" {
		if policy.Timeout, err = time.ParseDuration(raw.Timeout); err != nil {
			return health.Policy{}, fmt.Errorf("healthcheck timeout broken: %w", err)
		}
	}
	if raw.StartPeriod != "" {
		if policy.StartPeriod, err = time.ParseDuration(raw.StartPeriod); err != nil {
			return health.Policy{}, fmt.Errorf("healthcheck startPeriod broken: %w", err)
		}
	}
	if raw.Retries != nil {
		policy.Retries = *raw.Retries
	}

	if err := policy.Validate(); err != nil {
		return health.Policy{}, fmt.Errorf("healthcheck policy invalid: %w", err)
	}
	return policy, nil
}

// LivenessEndpoint returns the URL the prober targets. Probes go through
// loopback; the service binds all interfaces.
func (m Manifest) LivenessEndpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", m.Port, m.LivenessPath)
}

package detect

import (
	"os"
	"strings"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/flags"
)

// Probe reads the process surroundings. Tests substitute their own.
type Probe struct {
	LookupEnv func(key string) (string, bool)
	ReadFile  func(path string) ([]byte, error)
}

// OSProbe reads the real process environment and filesystem.
func OSProbe() Probe {
	return Probe{LookupEnv: os.LookupEnv, ReadFile: os.ReadFile}
}

func (p Probe) env(key string) (string, bool) {
	if p.LookupEnv == nil {
		return "", false
	}
	v, ok := p.LookupEnv(key)
	return v, ok && v != ""
}

func (p Probe) file(path string) (string, bool) {
	if p.ReadFile == nil {
		return "", false
	}
	data, err := p.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Paths probed by the built-in detectors.
const (
	kubernetesNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	dockerEnvFile           = "/.dockerenv"
)

// Builtins returns the built-in detectors enabled in reg, most specific
// first.
func Builtins(reg *flags.Registry, p Probe) []Detector {
	var out []Detector
	if reg.Enabled(flags.FlagDetectKubernetes) {
		out = append(out, &Kubernetes{probe: p})
	}
	if reg.Enabled(flags.FlagDetectContainer) {
		out = append(out, &Container{probe: p})
	}
	if reg.Enabled(flags.FlagDetectSystemd) {
		out = append(out, &Systemd{probe: p})
	}
	return out
}

// Kubernetes recognizes a pod through the service environment the kubelet
// injects.
type Kubernetes struct {
	probe Probe
}

// NewKubernetes creates a Kubernetes detector.
func NewKubernetes(p Probe) *Kubernetes { return &Kubernetes{probe: p} }

func (d *Kubernetes) Name() string                         { return "kubernetes" }
func (d *Kubernetes) ContributeBackends(*backend.SetBuilder) {}

func (d *Kubernetes) Detect(backend.View) (env.Handle, error) {
	host, ok := d.probe.env("KUBERNETES_SERVICE_HOST")
	if !ok {
		return nil, nil
	}
	extra := map[string]string{"service_host": host}
	if port, ok := d.probe.env("KUBERNETES_SERVICE_PORT"); ok {
		extra["service_port"] = port
	}
	if pod, ok := d.probe.env("HOSTNAME"); ok {
		extra["pod"] = pod
	}
	if ns, ok := d.probe.file(kubernetesNamespaceFile); ok {
		extra["namespace"] = ns
	}
	return env.NewBase(env.Environment{Vendor: "CNCF", Product: "Kubernetes", Extra: extra}), nil
}

// Container recognizes Docker through /.dockerenv and other runtimes
// through the container variable they set.
type Container struct {
	probe Probe
}

// NewContainer creates a container detector.
func NewContainer(p Probe) *Container { return &Container{probe: p} }

func (d *Container) Name() string                         { return "container" }
func (d *Container) ContributeBackends(*backend.SetBuilder) {}

func (d *Container) Detect(backend.View) (env.Handle, error) {
	if runtime, ok := d.probe.env("container"); ok {
		return env.NewBase(env.Environment{
			Vendor:  runtime,
			Product: "container",
			Extra:   map[string]string{"source": "env"},
		}), nil
	}
	if _, ok := d.probe.file(dockerEnvFile); ok {
		return env.NewBase(env.Environment{
			Vendor:  "Docker",
			Product: "container",
			Extra:   map[string]string{"source": dockerEnvFile},
		}), nil
	}
	return nil, nil
}

// Systemd recognizes a process started as a systemd unit.
type Systemd struct {
	probe Probe
}

// NewSystemd creates a systemd detector.
func NewSystemd(p Probe) *Systemd { return &Systemd{probe: p} }

func (d *Systemd) Name() string                         { return "systemd" }
func (d *Systemd) ContributeBackends(*backend.SetBuilder) {}

func (d *Systemd) Detect(backend.View) (env.Handle, error) {
	id, ok := d.probe.env("INVOCATION_ID")
	if !ok {
		return nil, nil
	}
	extra := map[string]string{"invocation_id": id}
	if pid, ok := d.probe.env("SYSTEMD_EXEC_PID"); ok {
		extra["exec_pid"] = pid
	}
	return env.NewBase(env.Environment{Vendor: "systemd", Product: "service", Extra: extra}), nil
}

var (
	_ Detector = (*Kubernetes)(nil)
	_ Detector = (*Container)(nil)
	_ Detector = (*Systemd)(nil)
)

package detect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/flags"
)

func fakeProbe(vars map[string]string, files map[string]string) Probe {
	return Probe{
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		ReadFile: func(path string) ([]byte, error) {
			if v, ok := files[path]; ok {
				return []byte(v), nil
			}
			return nil, errors.New("no such file")
		},
	}
}

func TestKubernetes_Detect(t *testing.T) {
	p := fakeProbe(map[string]string{
		"KUBERNETES_SERVICE_HOST": "10.0.0.1",
		"KUBERNETES_SERVICE_PORT": "443",
		"HOSTNAME":                "web-0",
	}, map[string]string{
		kubernetesNamespaceFile: "prod\n",
	})

	h, err := NewKubernetes(p).Detect(backend.NewSet())
	require.NoError(t, err)
	require.NotNil(t, h)

	e := h.Environment()
	require.Equal(t, "Kubernetes", e.Product)
	require.Equal(t, map[string]string{
		"service_host": "10.0.0.1",
		"service_port": "443",
		"pod":          "web-0",
		"namespace":    "prod",
	}, e.Extra)
}

func TestKubernetes_NoMatch(t *testing.T) {
	h, err := NewKubernetes(fakeProbe(map[string]string{"KUBERNETES_SERVICE_HOST": ""}, nil)).Detect(backend.NewSet())
	require.NoError(t, err)
	require.Nil(t, h)
}

func TestContainer_Detect(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		files  map[string]string
		vendor string
	}{
		{name: "container variable", vars: map[string]string{"container": "podman"}, vendor: "podman"},
		{name: "docker marker file", files: map[string]string{dockerEnvFile: ""}, vendor: "Docker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewContainer(fakeProbe(tt.vars, tt.files)).Detect(backend.NewSet())
			require.NoError(t, err)
			require.NotNil(t, h)
			require.Equal(t, tt.vendor, h.Environment().Vendor)
			require.Equal(t, "container", h.Environment().Product)
		})
	}
}

func TestContainer_NoMatch(t *testing.T) {
	h, err := NewContainer(fakeProbe(nil, nil)).Detect(backend.NewSet())
	require.NoError(t, err)
	require.Nil(t, h)
}

func TestSystemd_Detect(t *testing.T) {
	h, err := NewSystemd(fakeProbe(map[string]string{"INVOCATION_ID": "abc123"}, nil)).Detect(backend.NewSet())
	require.NoError(t, err)
	require.Equal(t, "abc123", h.Environment().Extra["invocation_id"])
}

func TestBuiltins_RespectFlags(t *testing.T) {
	all := Builtins(flags.New(nil), fakeProbe(nil, nil))
	require.Len(t, all, 3)
	require.Equal(t, "kubernetes", all[0].Name())
	require.Equal(t, "container", all[1].Name())
	require.Equal(t, "systemd", all[2].Name())

	some := Builtins(flags.New(map[string]bool{flags.FlagDetectContainer: false}), fakeProbe(nil, nil))
	require.Len(t, some, 2)
	require.Equal(t, "systemd", some[1].Name())
}

func TestBuiltins_KubernetesBeatsContainer(t *testing.T) {
	p := fakeProbe(map[string]string{
		"KUBERNETES_SERVICE_HOST": "10.0.0.1",
		"container":               "containerd",
	}, nil)

	h := NewChain(nil, Builtins(flags.New(nil), p)...).Detect(backend.NewSet())
	require.False(t, env.IsNull(h))
	require.Equal(t, "Kubernetes", h.Environment().Product)
}

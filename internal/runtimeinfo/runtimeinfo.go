// Package runtimeinfo exposes Go runtime statistics as resources in the
// runtime domain.
package runtimeinfo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/handler"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/resource"
)

// Domain is the domain of every resource in this package.
const Domain = "runtime"

// Resource names.
var (
	MemoryName     = resource.MustParse(Domain + ":type=Memory")
	GoroutinesName = resource.MustParse(Domain + ":type=Goroutines")
	BuildName      = resource.MustParse(Domain + ":type=Build")
)

func unknown(kind, name string) error {
	return fmt.Errorf("%w: no attribute %q on %s", backend.ErrMemberNotFound, name, kind)
}

// Memory reports runtime.MemStats.
type Memory struct{}

func (Memory) AttributeNames() []string {
	return []string{"Alloc", "HeapAlloc", "HeapObjects", "NumGC", "Sys", "TotalAlloc"}
}

func (Memory) Attribute(name string) (any, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	switch name {
	case "Alloc":
		return ms.Alloc, nil
	case "HeapAlloc":
		return ms.HeapAlloc, nil
	case "HeapObjects":
		return ms.HeapObjects, nil
	case "NumGC":
		return ms.NumGC, nil
	case "Sys":
		return ms.Sys, nil
	case "TotalAlloc":
		return ms.TotalAlloc, nil
	}
	return nil, unknown("Memory", name)
}

// Invoke supports "gc", which forces a collection.
func (Memory) Invoke(_ context.Context, op string) (any, error) {
	if op != "gc" {
		return nil, fmt.Errorf("%w: no operation %q on Memory", backend.ErrMemberNotFound, op)
	}
	runtime.GC()
	return nil, nil
}

// Goroutines reports scheduler figures.
type Goroutines struct{}

func (Goroutines) AttributeNames() []string {
	return []string{"Count", "GOMAXPROCS", "NumCPU"}
}

func (Goroutines) Attribute(name string) (any, error) {
	switch name {
	case "Count":
		return runtime.NumGoroutine(), nil
	case "GOMAXPROCS":
		return runtime.GOMAXPROCS(0), nil
	case "NumCPU":
		return runtime.NumCPU(), nil
	}
	return nil, unknown("Goroutines", name)
}

// Build reports the binary's build information.
type Build struct{}

func (Build) AttributeNames() []string {
	return []string{"GOARCH", "GOOS", "GoVersion", "Path", "Version"}
}

func (Build) Attribute(name string) (any, error) {
	switch name {
	case "GOARCH":
		return runtime.GOARCH, nil
	case "GOOS":
		return runtime.GOOS, nil
	case "GoVersion":
		return runtime.Version(), nil
	case "Path", "Version":
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return "", nil
		}
		if name == "Path" {
			return info.Main.Path, nil
		}
		return info.Main.Version, nil
	}
	return nil, unknown("Build", name)
}

// Install registers the runtime resources on b. Resources already present
// are left alone.
func Install(b backend.Backend) error {
	var errs []error
	for _, r := range []struct {
		name resource.Name
		obj  any
	}{
		{MemoryName, &Memory{}},
		{GoroutinesName, &Goroutines{}},
		{BuildName, &Build{}},
	} {
		_, err := b.Register(r.obj, r.name)
		if err != nil && !errors.Is(err, backend.ErrResourceExists) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Debug(log.CatBackend, "runtime resources installed", "backend", b.ID())
	return nil
}

var (
	_ handler.AttributeSource = Memory{}
	_ handler.Invoker         = Memory{}
	_ handler.AttributeSource = Goroutines{}
	_ handler.AttributeSource = Build{}
)

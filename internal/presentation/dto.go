package presentation

import (
	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/env"
	"github.com/zjrosen/backendhub/internal/handler"
	"github.com/zjrosen/backendhub/internal/ledger"
)

// EnvironmentDTO represents the detected environment for presentation
type EnvironmentDTO struct {
	Recognized bool              `json:"recognized"`
	Vendor     string            `json:"vendor,omitempty"`
	Product    string            `json:"product,omitempty"`
	Version    string            `json:"version,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// BackendDTO represents one backend in dispatch order
type BackendDTO struct {
	ID            string   `json:"id"`
	DefaultDomain string   `json:"default_domain"`
	Resources     int      `json:"resources"`
	Domains       []string `json:"domains"`
}

// ListingDTO represents one listed resource name
type ListingDTO struct {
	Backend string `json:"backend"`
	Domain  string `json:"domain"`
	Name    string `json:"name"`
}

// ReadResultDTO represents the outcome of a read request
type ReadResultDTO struct {
	Target    string `json:"target"`
	Attribute string `json:"attribute,omitempty"`
	Value     any    `json:"value"`
}

// RegistrationDTO represents a resource registered through the hub
type RegistrationDTO struct {
	Backend string `json:"backend"`
	Name    string `json:"name"`
}

// HubDTO summarizes a hub
type HubDTO struct {
	Name          string            `json:"name"`
	Environment   EnvironmentDTO    `json:"environment"`
	Backends      []BackendDTO      `json:"backends"`
	Registrations []RegistrationDTO `json:"registrations"`
}

// ReportDTO wraps the plain-text inventory report
type ReportDTO struct {
	Report string `json:"report"`
}

// FromEnvironment converts a detected environment to a DTO.
func FromEnvironment(e env.Environment) EnvironmentDTO {
	dto := EnvironmentDTO{
		Recognized: !e.IsZero(),
		Vendor:     e.Vendor,
		Product:    e.Product,
		Version:    e.Version,
	}
	if len(e.Extra) > 0 {
		dto.Extra = make(map[string]string, len(e.Extra))
		for _, k := range e.ExtraKeys() {
			dto.Extra[k] = e.Extra[k]
		}
	}
	return dto
}

// FromBackend converts a backend to a DTO
func FromBackend(b backend.Backend) BackendDTO {
	domains := b.Domains()
	if domains == nil {
		domains = []string{}
	}
	return BackendDTO{
		ID:            b.ID(),
		DefaultDomain: b.DefaultDomain(),
		Resources:     b.ResourceCount(),
		Domains:       domains,
	}
}

// FromBackends converts backends to DTOs, keeping their order
func FromBackends(bs []backend.Backend) []BackendDTO {
	dtos := make([]BackendDTO, len(bs))
	for i, b := range bs {
		dtos[i] = FromBackend(b)
	}
	return dtos
}

// FromListings converts list results to DTOs
func FromListings(ls []handler.Listing) []ListingDTO {
	dtos := make([]ListingDTO, len(ls))
	for i, l := range ls {
		dtos[i] = ListingDTO{
			Backend: l.Backend,
			Domain:  l.Name.Domain(),
			Name:    l.Name.String(),
		}
	}
	return dtos
}

// FromRegistrations converts ledger entries to DTOs
func FromRegistrations(entries []ledger.Entry) []RegistrationDTO {
	dtos := make([]RegistrationDTO, len(entries))
	for i, e := range entries {
		dtos[i] = RegistrationDTO{Backend: e.Backend.ID(), Name: e.Name.String()}
	}
	return dtos
}

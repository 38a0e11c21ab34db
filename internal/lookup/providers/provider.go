package providers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"rcgateway/internal/lookup/models"
	"rcgateway/internal/platform/config"
)

// Shape declares how a provider's response body is structured.
type Shape string

const (
	// ShapeStructured is the surepass-style envelope: a status marker plus
	// a nested data object.
	ShapeStructured Shape = "surepass"

	// ShapeRaw is an arbitrary JSON object normalized purely by field aliases.
	ShapeRaw Shape = "raw"
)

const (
	defaultAuthHeader   = "authorization"
	defaultAuthScheme   = "Bearer"
	defaultPayloadField = "id_number"
	defaultSigHeader    = "x-signature"
	defaultTSHeader     = "x-signature-ts"
)

// Descriptor is the immutable configuration of one external provider,
// built once from environment configuration.
type Descriptor struct {
	Position     int    // 1-based chain ordinal; 0 for the last-resort provider
	Ref          string // externally-visible provider reference
	Base         string
	Method       string
	Key          string
	AuthHeader   string
	AuthScheme   string // scheme prefix; empty string means no prefix
	PayloadField string
	ExtraParams  map[string]any
	ExtraHeaders map[string]string
	Signing      *SigningConfig
	Shape        Shape
}

// SigningConfig holds per-provider request-signing material.
type SigningConfig struct {
	KeyMaterial     string // path to a PEM file, or inline PEM
	SignatureHeader string
	TimestampHeader string
}

// Variant classifies the provider's base URL host for audit tagging.
func (d Descriptor) Variant() string {
	u, err := url.Parse(d.Base)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// Registry holds the ordered provider chain plus the optional last-resort
// provider. Construction is pure; invalid entries are skipped, not fatal.
type Registry struct {
	chain      []Descriptor
	lastResort *Descriptor
}

// Build validates raw provider configuration into an ordered registry.
// A provider with a base endpoint but no credential is skipped with a
// warning rather than aborting the whole chain.
func Build(cfg config.Config, logger *slog.Logger) *Registry {
	r := &Registry{}

	for i, pc := range cfg.Providers {
		// The configured slot is the ordinal. Entries built without one
		// (direct construction in tests) fall back to their list position.
		slot := pc.Index
		if slot == 0 {
			slot = i + 1
		}
		d, ok := buildDescriptor(pc, slot, logger)
		if !ok {
			continue
		}
		r.chain = append(r.chain, d)
	}

	if cfg.LastResort != nil {
		if d, ok := buildDescriptor(*cfg.LastResort, 0, logger); ok {
			d.Ref = models.LastResortRef
			r.lastResort = &d
		}
	}

	return r
}

func buildDescriptor(pc config.Provider, position int, logger *slog.Logger) (Descriptor, bool) {
	if pc.Base == "" {
		return Descriptor{}, false
	}
	if pc.Key == "" {
		logger.Warn("provider has endpoint but no credential, skipping",
			"position", position,
			"base", pc.Base,
		)
		return Descriptor{}, false
	}

	d := Descriptor{
		Position:     position,
		Ref:          strconv.Itoa(position),
		Base:         pc.Base,
		Method:       pc.Method,
		Key:          pc.Key,
		AuthHeader:   pc.AuthHeader,
		AuthScheme:   pc.AuthScheme,
		PayloadField: pc.PayloadField,
		Shape:        Shape(pc.Shape),
	}

	if d.Method != http.MethodGet {
		d.Method = http.MethodPost
	}
	if d.AuthHeader == "" {
		d.AuthHeader = defaultAuthHeader
	}
	if !pc.AuthSchemeSet {
		d.AuthScheme = defaultAuthScheme
	}
	if d.PayloadField == "" {
		d.PayloadField = defaultPayloadField
	}
	if d.Shape != ShapeRaw {
		d.Shape = ShapeStructured
	}

	if pc.ExtraParamsJSON != "" {
		if err := json.Unmarshal([]byte(pc.ExtraParamsJSON), &d.ExtraParams); err != nil {
			logger.Warn("provider extra params are not valid JSON, ignoring",
				"position", position,
				"error", err,
			)
		}
	}
	if pc.ExtraHeadersJSON != "" {
		if err := json.Unmarshal([]byte(pc.ExtraHeadersJSON), &d.ExtraHeaders); err != nil {
			logger.Warn("provider extra headers are not valid JSON, ignoring",
				"position", position,
				"error", err,
			)
		}
	}

	if pc.SigningKey != "" {
		d.Signing = &SigningConfig{
			KeyMaterial:     pc.SigningKey,
			SignatureHeader: pc.SignatureHeader,
			TimestampHeader: pc.TimestampHeader,
		}
		if d.Signing.SignatureHeader == "" {
			d.Signing.SignatureHeader = defaultSigHeader
		}
		if d.Signing.TimestampHeader == "" {
			d.Signing.TimestampHeader = defaultTSHeader
		}
	}

	return d, true
}

// Chain returns the ordinary ranked providers in ascending order.
func (r *Registry) Chain() []Descriptor {
	return r.chain
}

// LastResort returns the last-resort provider, if configured.
func (r *Registry) LastResort() (Descriptor, bool) {
	if r.lastResort == nil {
		return Descriptor{}, false
	}
	return *r.lastResort, true
}

// Empty reports whether no provider of any kind is configured.
func (r *Registry) Empty() bool {
	return len(r.chain) == 0 && r.lastResort == nil
}

// Len returns the number of ordinary providers in the chain.
func (r *Registry) Len() int {
	return len(r.chain)
}

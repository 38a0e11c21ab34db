// Package models defines the canonical RC record shape and the lookup
// result metadata shared across the lookup packages.
package models

import "time"

// Record is the canonical normalized RC record. Every field is a
// provider-supplied string; dates keep the provider's formatting rather
// than being parsed, so replaying a cached record is byte-faithful.
type Record struct {
	RegistrationNumber string `json:"registration_number"`
	OwnerName          string `json:"owner_name"`
	VehicleClass       string `json:"vehicle_class"`
	Maker              string `json:"maker"`
	Model              string `json:"model"`
	FuelType           string `json:"fuel_type"`
	RegistrationDate   string `json:"registration_date"`
	ChassisNumber      string `json:"chassis_number"`
	EngineNumber       string `json:"engine_number"`
	Address            string `json:"address"`

	// Secondary fields, present when the provider supplies them.
	Color                string `json:"color,omitempty"`
	BodyType             string `json:"body_type,omitempty"`
	SeatingCapacity      string `json:"seating_capacity,omitempty"`
	ManufacturingDate    string `json:"manufacturing_date,omitempty"`
	CubicCapacity        string `json:"cubic_capacity,omitempty"`
	HorsePower           string `json:"horse_power,omitempty"`
	Wheelbase            string `json:"wheelbase,omitempty"`
	Financier            string `json:"financier,omitempty"`
	RegisteringAuthority string `json:"registering_authority,omitempty"`
	ValidityDate         string `json:"validity_date,omitempty"`
	EmissionNorms        string `json:"emission_norms,omitempty"`
	UnladenWeight        string `json:"unladen_weight,omitempty"`
}

// ProvenanceMode identifies the mechanism that produced a record.
type ProvenanceMode string

const (
	ModeCache    ProvenanceMode = "cache"
	ModeExternal ProvenanceMode = "external"
	ModeMock     ProvenanceMode = "mock"
)

// LastResortRef is the fixed provider reference used by the last-resort
// provider. Ordinary providers use their 1-based ordinal as a string.
const LastResortRef = "last-resort"

// Provenance describes which mechanism produced a record. ProviderRef is
// empty for mock records; for cache replays it carries the most recent
// external reference when one is determinable.
type Provenance struct {
	Mode        ProvenanceMode `json:"provider"`
	ProviderRef string         `json:"provider_ref,omitempty"`
}

// LookupResult pairs a delivered record with its provenance.
type LookupResult struct {
	Record     Record     `json:"record"`
	Provenance Provenance `json:"provenance"`
}

// CacheEntry is one append-only result cache row. Entries are never
// updated in place or deleted; later writes for the same registration
// number supersede earlier ones.
type CacheEntry struct {
	RegistrationNumber string
	Record             Record
	Mode               ProvenanceMode
	ProviderRef        string
	CreatedAt          time.Time
}

// ProgressKind tags a progress event.
type ProgressKind string

const (
	ProgressCacheHit         ProgressKind = "cache_hit"
	ProgressMockHit          ProgressKind = "mock_hit"
	ProgressAttemptStarted   ProgressKind = "attempt_started"
	ProgressAttemptFailed    ProgressKind = "attempt_failed"
	ProgressAttemptSucceeded ProgressKind = "attempt_succeeded"
)

// ProgressEvent is emitted during one lookup so callers can render live
// per-provider status. ProviderIndex is the provider's configured 1-based
// ordinal (its env slot, which survives gaps in the sequence); it is zero
// for cache, mock, and last-resort events, where ProviderRef disambiguates.
// Events exist only for the duration of one lookup call.
type ProgressEvent struct {
	Kind          ProgressKind `json:"kind"`
	ProviderIndex int          `json:"provider_index,omitempty"`
	ProviderRef   string       `json:"provider_ref,omitempty"`
	StatusCode    int          `json:"status_code,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// ProgressFunc consumes progress events. Implementations must not block;
// the orchestrator calls it synchronously between provider attempts.
type ProgressFunc func(ProgressEvent)

package handler

import (
	"rcgateway/internal/lookup/models"
)

// LookupResponse is the body of a delivered lookup. RC fields keep the
// provider's formatting; Provider mirrors the provenance tag.
type LookupResponse struct {
	Record      models.Record         `json:"record"`
	Provider    models.ProvenanceMode `json:"provider"`
	ProviderRef string                `json:"provider_ref,omitempty"`
	Charged     string                `json:"charged,omitempty"`
}

func toLookupResponse(result *models.LookupResult, charged string) *LookupResponse {
	return &LookupResponse{
		Record:      result.Record,
		Provider:    result.Provenance.Mode,
		ProviderRef: result.Provenance.ProviderRef,
		Charged:     charged,
	}
}

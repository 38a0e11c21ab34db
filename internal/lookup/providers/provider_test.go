package providers

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcgateway/internal/lookup/models"
	"rcgateway/internal/platform/config"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestBuildSkipsIncompleteProviders(t *testing.T) {
	cfg := config.Config{
		Providers: []config.Provider{
			{Base: "https://one.example/api", Key: "k1"},
			{Base: "", Key: "orphan-key"},
			{Base: "https://three.example/api"}, // endpoint without credential
			{Base: "https://four.example/api", Key: "k4"},
		},
	}

	r := Build(cfg, testLogger())
	require.Equal(t, 2, r.Len())

	chain := r.Chain()
	assert.Equal(t, "1", chain[0].Ref)
	assert.Equal(t, 1, chain[0].Position)
	assert.Equal(t, "https://one.example/api", chain[0].Base)

	// Position tracks the configured slot, not the surviving index.
	assert.Equal(t, "4", chain[1].Ref)
	assert.Equal(t, 4, chain[1].Position)
}

func TestBuildKeepsEnvSlotNumbers(t *testing.T) {
	// A chain loaded from PROVIDER_2_* and PROVIDER_4_* keeps those slot
	// numbers as refs even though slots 1 and 3 were never set.
	cfg := config.Config{
		Providers: []config.Provider{
			{Index: 2, Base: "https://two.example/api", Key: "k2"},
			{Index: 4, Base: "https://four.example/api", Key: "k4"},
		},
	}

	chain := Build(cfg, testLogger()).Chain()
	require.Len(t, chain, 2)
	assert.Equal(t, "2", chain[0].Ref)
	assert.Equal(t, 2, chain[0].Position)
	assert.Equal(t, "4", chain[1].Ref)
	assert.Equal(t, 4, chain[1].Position)
}

func TestBuildAppliesDefaults(t *testing.T) {
	cfg := config.Config{
		Providers: []config.Provider{{Base: "https://p.example/api", Key: "k"}},
	}

	d := Build(cfg, testLogger()).Chain()[0]
	assert.Equal(t, http.MethodPost, d.Method)
	assert.Equal(t, "authorization", d.AuthHeader)
	assert.Equal(t, "Bearer", d.AuthScheme)
	assert.Equal(t, "id_number", d.PayloadField)
	assert.Equal(t, ShapeStructured, d.Shape)
	assert.Nil(t, d.Signing)
}

func TestBuildKeepsExplicitEmptyScheme(t *testing.T) {
	cfg := config.Config{
		Providers: []config.Provider{{
			Base:          "https://p.example/api",
			Key:           "k",
			AuthHeader:    "x-api-key",
			AuthScheme:    "",
			AuthSchemeSet: true,
			Method:        http.MethodGet,
			PayloadField:  "vehicleId",
			Shape:         string(ShapeRaw),
		}},
	}

	d := Build(cfg, testLogger()).Chain()[0]
	assert.Equal(t, http.MethodGet, d.Method)
	assert.Equal(t, "x-api-key", d.AuthHeader)
	assert.Empty(t, d.AuthScheme)
	assert.Equal(t, "vehicleId", d.PayloadField)
	assert.Equal(t, ShapeRaw, d.Shape)
}

func TestBuildParsesExtrasAndIgnoresBadJSON(t *testing.T) {
	cfg := config.Config{
		Providers: []config.Provider{{
			Base:             "https://p.example/api",
			Key:              "k",
			ExtraParamsJSON:  `{"consent":"Y","version":2}`,
			ExtraHeadersJSON: `not json`,
		}},
	}

	d := Build(cfg, testLogger()).Chain()[0]
	assert.Equal(t, "Y", d.ExtraParams["consent"])
	assert.Equal(t, float64(2), d.ExtraParams["version"])
	assert.Nil(t, d.ExtraHeaders)
}

func TestBuildSigningDefaults(t *testing.T) {
	cfg := config.Config{
		Providers: []config.Provider{{
			Base:       "https://p.example/api",
			Key:        "k",
			SigningKey: "/etc/keys/provider.pem",
		}},
	}

	d := Build(cfg, testLogger()).Chain()[0]
	require.NotNil(t, d.Signing)
	assert.Equal(t, "/etc/keys/provider.pem", d.Signing.KeyMaterial)
	assert.Equal(t, "x-signature", d.Signing.SignatureHeader)
	assert.Equal(t, "x-signature-ts", d.Signing.TimestampHeader)
}

func TestBuildLastResort(t *testing.T) {
	cfg := config.Config{
		LastResort: &config.Provider{Base: "https://fallback.example/api", Key: "k"},
	}

	r := Build(cfg, testLogger())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Empty())

	d, ok := r.LastResort()
	require.True(t, ok)
	assert.Equal(t, models.LastResortRef, d.Ref)
	assert.Equal(t, 0, d.Position)
}

func TestBuildEmpty(t *testing.T) {
	r := Build(config.Config{}, testLogger())
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())

	_, ok := r.LastResort()
	assert.False(t, ok)
}

func TestDescriptorVariant(t *testing.T) {
	assert.Equal(t, "api.one.example", Descriptor{Base: "https://api.one.example/v2/rc"}.Variant())
	assert.Equal(t, "unknown", Descriptor{Base: "://broken"}.Variant())
	assert.Equal(t, "unknown", Descriptor{Base: ""}.Variant())
}

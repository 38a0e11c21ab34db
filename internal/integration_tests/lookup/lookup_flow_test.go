package lookup_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcgateway/internal/account"
	"rcgateway/internal/audit"
	"rcgateway/internal/ledger"
	ledgerhandler "rcgateway/internal/ledger/handler"
	"rcgateway/internal/lookup"
	lookuphandler "rcgateway/internal/lookup/handler"
	"rcgateway/internal/lookup/mock"
	"rcgateway/internal/lookup/orchestrator"
	"rcgateway/internal/lookup/providers"
	lookupstore "rcgateway/internal/lookup/store"
	"rcgateway/internal/platform/config"
	httptransport "rcgateway/internal/transport/http"
	"rcgateway/pkg/testutil"
)

// cannedDoer answers every provider call with a fixed response.
type cannedDoer struct {
	status int
	body   string
}

func (d *cannedDoer) Do(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(d.body))),
		Header:     make(http.Header),
	}, nil
}

const providerPayload = `{
	"success": true,
	"data": {
		"owner_name": "RAJESH KUMAR",
		"maker_description": "MARUTI SUZUKI INDIA LTD",
		"maker_model": "SWIFT VXI",
		"fuel_type": "PETROL",
		"registration_date": "2019-01-15",
		"vehicle_chasi_number": "MA3EYD32S00123456"
	}
}`

type stack struct {
	router   http.Handler
	resolver *account.JWTResolver
	ledger   *ledger.Service
	price    decimal.Decimal
}

// newStack wires the whole service in memory: JWT auth, provider chain with
// a canned HTTP client, result cache, audit sink, and the ledger.
func newStack(t *testing.T, doer providers.HTTPDoer) *stack {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := providers.Build(config.Config{
		Providers: []config.Provider{{Base: "https://provider.example/api", Key: "key"}},
	}, log)

	cache := lookupstore.NewMemoryStore()
	sink := audit.NewSink(log)

	orch := orchestrator.New(orchestrator.Config{
		Registry: registry,
		Fetcher:  providers.NewCaller(providers.NewSigner(), log, providers.WithHTTPClient(doer)),
		Cache:    cache,
		Audit:    sink,
		Mock:     mock.NewTable(),
		Logger:   log,
	})

	ledgerStore := ledger.NewMemoryStore()
	ledgerService := ledger.NewService(ledgerStore, ledger.NewMemoryTxRunner(ledgerStore), nil, log)

	price := decimal.NewFromInt(15)
	lookupService := lookup.NewService(orch, cache, ledgerService, nil, price, nil, log)

	resolver := account.NewJWTResolver("flow-test-key")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Resolver:   resolver,
		AdminToken: "flow-test-admin",
		Consumer: []httptransport.Registrar{
			lookuphandler.New(lookupService, nil, log),
			ledgerhandler.New(ledgerService, log),
		},
	})

	return &stack{router: router, resolver: resolver, ledger: ledgerService, price: price}
}

func (s *stack) authedRequest(t *testing.T, method, path, body, token string) *http.Request {
	t.Helper()
	req := testutil.NewRequestWithBody(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLookupFlowChargesWallet(t *testing.T) {
	s := newStack(t, &cannedDoer{status: http.StatusOK, body: providerPayload})

	accountRec, err := s.ledger.CreateAccount(t.Context(), "flow", decimal.NewFromInt(40))
	require.NoError(t, err)
	token, err := s.resolver.IssueToken(accountRec.ID, time.Hour)
	require.NoError(t, err)

	// First lookup: provider hit.
	rr := testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodPost, "/lookup", `{"registration_number": "MH12AB1234"}`, token))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[lookuphandler.LookupResponse](t, rr)
	assert.Equal(t, "RAJESH KUMAR", resp.Record.OwnerName)
	assert.Equal(t, "external", string(resp.Provider))
	assert.Equal(t, "15", resp.Charged)

	// Second lookup: cache replay, charged the same.
	rr = testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodPost, "/lookup", `{"registration_number": "MH12AB1234"}`, token))
	testutil.AssertStatusOK(t, rr)
	resp = testutil.UnmarshalResponse[lookuphandler.LookupResponse](t, rr)
	assert.Equal(t, "cache", string(resp.Provider))
	assert.Equal(t, "1", resp.ProviderRef)

	// Third lookup: wallet has 10 left, refused before delivery.
	rr = testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodPost, "/lookup", `{"registration_number": "MH12AB1234"}`, token))
	testutil.AssertStatus(t, rr, http.StatusPaymentRequired)

	balance, err := s.ledger.Balance(t.Context(), accountRec.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(10)))

	// Balance endpoint agrees.
	rr = testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodGet, "/wallet/balance", "", token))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "balance", "10")
}

func TestLookupFlowNotFoundIsFree(t *testing.T) {
	s := newStack(t, &cannedDoer{status: http.StatusNotFound, body: `{"status":"id_not_found"}`})

	accountRec, err := s.ledger.CreateAccount(t.Context(), "flow", decimal.NewFromInt(40))
	require.NoError(t, err)
	token, err := s.resolver.IssueToken(accountRec.ID, time.Hour)
	require.NoError(t, err)

	rr := testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodPost, "/lookup", `{"registration_number": "ZZ99XX0001"}`, token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	balance, err := s.ledger.Balance(t.Context(), accountRec.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(40)))
}

func TestLookupFlowRejectsBadToken(t *testing.T) {
	s := newStack(t, &cannedDoer{status: http.StatusOK, body: providerPayload})

	rr := testutil.DoRequest(s.router, s.authedRequest(t,
		http.MethodPost, "/lookup", `{"registration_number": "MH12AB1234"}`, "not-a-token"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

package httptransport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"landregistry/internal/events"
	"landregistry/internal/ledger"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/platform/middleware"
	"landregistry/internal/registry/ownerindex"
	registryservice "landregistry/internal/registry/service"
	registrystore "landregistry/internal/registry/store"
	httptransport "landregistry/internal/transport/http"
	"landregistry/internal/verifier"
	id "landregistry/pkg/domain"
)

const (
	controller = "controller"
	alice      = "alice"
	bob        = "bob"
	vera       = "vera"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	recorder := events.NewRecorder()

	verifiers := verifier.NewService(controller, verifier.NewMemoryStore(), recorder, m, logger)
	registry := registryservice.NewService(
		registrystore.NewMemoryParcelStore(),
		ownerindex.New(),
		ledger.NewMemoryLedger(),
		verifiers,
		recorder,
		m,
		logger,
	)

	handler := httptransport.NewHandler(registry, verifiers, logger)
	s.router = httptransport.NewRouter(handler, nil, m, logger)
}

func (s *HandlerSuite) do(caller, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if caller != "" {
		req.Header.Set("X-Caller-Identity", caller)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) register(caller, location string) uint64 {
	rec := s.do(caller, http.MethodPost, "/parcels", map[string]string{
		"location":        location,
		"surveyReference": "survey-1",
		"documentRef":     "docA",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp struct {
		Error string `json:"error"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func (s *HandlerSuite) TestRegisterParcel() {
	s.Run("register returns 201 with id", func() {
		s.Equal(uint64(1), s.register(alice, "123 Main St"))
	})

	s.Run("duplicate location returns 409", func() {
		rec := s.do(bob, http.MethodPost, "/parcels", map[string]string{
			"location":        "123 Main St",
			"surveyReference": "survey-2",
			"documentRef":     "docX",
		})
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("duplicate_location", s.errorCode(rec))
	})

	s.Run("missing caller identity returns 401", func() {
		rec := s.do("", http.MethodPost, "/parcels", map[string]string{"location": "1 Elm"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("invalid body returns 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/parcels", bytes.NewReader([]byte("{")))
		req.Header.Set("X-Caller-Identity", alice)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestParcelQueries() {
	parcelID := s.register(alice, "123 Main St")
	s.Require().Equal(uint64(1), parcelID)

	s.Run("details", func() {
		rec := s.do(bob, http.MethodGet, "/parcels/1", nil)
		s.Equal(http.StatusOK, rec.Code)
		var details struct {
			Location      string `json:"location"`
			Verified      bool   `json:"verified"`
			DocumentCount int    `json:"documentCount"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &details))
		s.Equal("123 Main St", details.Location)
		s.False(details.Verified)
		s.Equal(1, details.DocumentCount)
	})

	s.Run("owner", func() {
		rec := s.do(bob, http.MethodGet, "/parcels/1/owner", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), alice)
	})

	s.Run("unknown parcel returns 404", func() {
		rec := s.do(bob, http.MethodGet, "/parcels/99", nil)
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("unknown_parcel", s.errorCode(rec))
	})

	s.Run("non-numeric id returns 400", func() {
		rec := s.do(bob, http.MethodGet, "/parcels/abc", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown owner yields empty list", func() {
		rec := s.do(bob, http.MethodGet, "/owners/nobody/parcels", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"parcelIds":[]}`, rec.Body.String())
	})
}

func (s *HandlerSuite) TestVerifyFlow() {
	s.register(alice, "123 Main St")

	s.Run("non-controller cannot add verifiers", func() {
		rec := s.do(bob, http.MethodPut, "/verifiers/"+vera, nil)
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("not_controller", s.errorCode(rec))
	})

	s.Run("controller authorizes verifier", func() {
		rec := s.do(controller, http.MethodPut, "/verifiers/"+vera, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		list := s.do(bob, http.MethodGet, "/verifiers", nil)
		s.Equal(http.StatusOK, list.Code)
		s.Contains(list.Body.String(), vera)
	})

	s.Run("verifier verifies once", func() {
		rec := s.do(vera, http.MethodPost, "/parcels/1/verify", nil)
		s.Equal(http.StatusNoContent, rec.Code)

		again := s.do(vera, http.MethodPost, "/parcels/1/verify", nil)
		s.Equal(http.StatusConflict, again.Code)
		s.Equal("already_verified", s.errorCode(again))
	})

	s.Run("non-verifier is rejected", func() {
		rec := s.do(bob, http.MethodPost, "/parcels/1/verify", nil)
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("not_verifier", s.errorCode(rec))
	})
}

func (s *HandlerSuite) TestTransferAndDocuments() {
	s.register(alice, "123 Main St")

	s.Run("stranger cannot transfer", func() {
		rec := s.do(bob, http.MethodPost, "/parcels/1/transfer", map[string]string{"to": bob})
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("owner transfers", func() {
		rec := s.do(alice, http.MethodPost, "/parcels/1/transfer", map[string]string{"to": bob})
		s.Equal(http.StatusNoContent, rec.Code)

		owner := s.do(alice, http.MethodGet, "/parcels/1/owner", nil)
		s.Contains(owner.Body.String(), bob)

		holdings := s.do(alice, http.MethodGet, "/owners/"+bob+"/parcels", nil)
		s.JSONEq(`{"parcelIds":[1]}`, holdings.Body.String())
	})

	s.Run("new owner appends documents", func() {
		rec := s.do(bob, http.MethodPost, "/parcels/1/documents", map[string]string{"documentRef": "docB"})
		s.Equal(http.StatusNoContent, rec.Code)

		docs := s.do(bob, http.MethodGet, "/parcels/1/documents", nil)
		s.JSONEq(`{"documents":["docA","docB"]}`, docs.Body.String())
	})

	s.Run("delegate approval enables transfer", func() {
		rec := s.do(bob, http.MethodPost, "/parcels/1/approve", map[string]string{"delegate": vera})
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(vera, http.MethodPost, "/parcels/1/transfer", map[string]string{"to": alice})
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *HandlerSuite) TestHealth() {
	rec := s.do("", http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func TestJWTIdentity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	recorder := events.NewRecorder()
	verifiers := verifier.NewService(controller, verifier.NewMemoryStore(), recorder, m, logger)
	registry := registryservice.NewService(
		registrystore.NewMemoryParcelStore(),
		ownerindex.New(),
		ledger.NewMemoryLedger(),
		verifiers,
		recorder,
		m,
		logger,
	)
	validator := middleware.NewHMACValidator("test-signing-key")
	handler := httptransport.NewHandler(registry, verifiers, logger)
	router := httptransport.NewRouter(handler, validator, m, logger)

	token, err := validator.MintToken(id.Identity(alice))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"location":        "123 Main St",
		"surveyReference": "survey-1",
		"documentRef":     "docA",
	})

	t.Run("valid token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parcels", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("header fallback disabled when JWT configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parcels", bytes.NewReader(body))
		req.Header.Set("X-Caller-Identity", alice)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parcels", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"canopy/internal/policy"
	"canopy/internal/policy/handler/mocks"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/policy-mocks.go -package=mocks Service
type PolicyHandlerSuite struct {
	suite.Suite
}

func TestPolicyHandlerSuite(t *testing.T) {
	suite.Run(t, new(PolicyHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	// Identity is injected per request in tests; auth is a pass-through.
	New(mockService, logger).Register(r, func(next http.Handler) http.Handler { return next })
	return r, mockService
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), "admin-1"))
}

func (s *PolicyHandlerSuite) TestHandleGet() {
	s.Run("known category", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().Get(gomock.Any(), gomock.Any()).Return(policy.ValidationPolicy{
			Category:     "carbon_reduction",
			MaxValue:     10000,
			MaxAge:       90 * 24 * time.Hour,
			AllowedUnits: []string{"tCO2e"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/policies/carbon_reduction", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusOK, w.Code)
		var resp PolicyResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("carbon_reduction", resp.Category)
		s.Equal(int64(90*24*3600), resp.MaxAgeSeconds)
		s.Equal([]string{"tCO2e"}, resp.AllowedUnits)
	})

	s.Run("unknown category", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(policy.ValidationPolicy{}, dErrors.New(dErrors.CodeNotFound, "no policy for category"))

		req := httptest.NewRequest(http.MethodGet, "/policies/unmapped", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *PolicyHandlerSuite) TestHandleSet() {
	body, err := json.Marshal(SetPolicyRequest{
		MinValue:             0,
		MaxValue:             10000,
		MaxAgeSeconds:        3600,
		AllowedUnits:         []string{"tCO2e"},
		AllowedMethodologies: []string{"GHG_Protocol"},
	})
	s.Require().NoError(err)

	s.Run("valid update", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, actor domain.Identity, p policy.ValidationPolicy) error {
				s.Equal(domain.Identity("admin-1"), actor)
				s.Equal("carbon_reduction", p.Category.String())
				s.Equal(time.Hour, p.MaxAge)
				return nil
			})

		req := asAdmin(httptest.NewRequest(http.MethodPut, "/policies/carbon_reduction", bytes.NewReader(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("unauthenticated", func() {
		r, _ := newTestRouter(s.T())

		req := httptest.NewRequest(http.MethodPut, "/policies/carbon_reduction", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("non-positive max age rejected before the service", func() {
		r, _ := newTestRouter(s.T())

		bad, err := json.Marshal(SetPolicyRequest{MaxAgeSeconds: 0})
		s.Require().NoError(err)

		req := asAdmin(httptest.NewRequest(http.MethodPut, "/policies/carbon_reduction", bytes.NewReader(bad)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *PolicyHandlerSuite) TestHandleAddUnit() {
	s.Run("valid add", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().AddUnit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		body := []byte(`{"unit":"kgCO2e"}`)
		req := asAdmin(httptest.NewRequest(http.MethodPost, "/policies/carbon_reduction/units", bytes.NewReader(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("unauthorized actor", func() {
		r, mockService := newTestRouter(s.T())
		mockService.EXPECT().AddUnit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeUnauthorized, "caller does not hold role admin"))

		body := []byte(`{"unit":"kgCO2e"}`)
		req := asAdmin(httptest.NewRequest(http.MethodPost, "/policies/carbon_reduction/units", bytes.NewReader(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("blank unit rejected", func() {
		r, _ := newTestRouter(s.T())

		body := []byte(`{"unit":"  "}`)
		req := asAdmin(httptest.NewRequest(http.MethodPost, "/policies/carbon_reduction/units", bytes.NewReader(body)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *PolicyHandlerSuite) TestHandleAddMethodology() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().AddMethodology(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	body := []byte(`{"methodology":"ISO_14064"}`)
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/policies/carbon_reduction/methodologies", bytes.NewReader(body)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
}

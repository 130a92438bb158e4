package boletim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bulletin_sync/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	calls   atomic.Int32
	client  *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.calls.Store(0)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.handler(w, r)
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.client = NewClient(Config{
		BaseURL:        s.server.URL + "/api/",
		Token:          "test-token",
		Timeout:        2 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Breaker: BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  100,
			FailureRatio: 0.9,
		},
	}, logger)
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestBulletins_SendsTokenAndQuery() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("test-token", r.Header.Get("x-auth-token"))
		s.Equal("/api/filtro/10/boletins", r.URL.Path)
		s.Equal("2", r.URL.Query().Get("page"))
		s.Equal("100", r.URL.Query().Get("per_page"))
		s.Equal("desc", r.URL.Query().Get("order"))
		_, _ = io.WriteString(w, `{"boletins":[{"id":5,"numero_edicao":12,"filtro_id":10}],"total":101}`)
	}

	resp, err := s.client.Bulletins(context.Background(), 10, 2, 100)
	s.Require().NoError(err)
	s.Require().Len(resp.Bulletins, 1)
	s.Equal(int64(5), resp.Bulletins[0].ID)
	s.Require().NotNil(resp.Total)
	s.Equal(101, *resp.Total)
}

func (s *ClientTestSuite) TestBulletins_TotalMissingIsUnknown() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"boletins":[]}`)
	}

	resp, err := s.client.Bulletins(context.Background(), 10, 1, 100)
	s.Require().NoError(err)
	s.Nil(resp.Total)
}

func (s *ClientTestSuite) TestAuthFailure_ErrorPayload() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"errors":[{"message":"Token inválido ou IP de origem não cadastrado"}]}`)
	}

	_, err := s.client.Filters(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrUnauthorized))
	s.Equal(int32(1), s.calls.Load(), "authorization failures must not be retried")
}

func (s *ClientTestSuite) TestAuthFailure_Status() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_, err := s.client.Bulletin(context.Background(), 1)
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrUnauthorized))
	s.Equal(int32(1), s.calls.Load())
}

func (s *ClientTestSuite) TestGenericErrorPayloadIsNotAuth() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"Boletim não encontrado"}]}`)
	}

	_, err := s.client.Bulletin(context.Background(), 1)
	s.Require().Error(err)
	s.False(errors.Is(err, domain.ErrUnauthorized))
	s.Contains(err.Error(), "Boletim não encontrado")

	var pe *PayloadError
	s.True(errors.As(err, &pe))
	s.Equal(int32(1), s.calls.Load())
	s.Equal(uint32(0), s.client.breaker.Counts().TotalFailures)
}

func (s *ClientTestSuite) TestRetriesServerErrors() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		if s.calls.Load() < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"boletim":{"id":9},"licitacoes":[],"acompanhamentos":[]}`)
	}

	resp, err := s.client.Bulletin(context.Background(), 9)
	s.Require().NoError(err)
	s.Equal(int64(9), resp.Bulletin.ID)
	s.Equal(int32(3), s.calls.Load())
}

func (s *ClientTestSuite) TestGivesUpAfterMaxAttempts() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_, err := s.client.Bulletin(context.Background(), 9)
	s.Require().Error(err)
	s.Contains(err.Error(), "after 3 attempts")

	var se *StatusError
	s.Require().True(errors.As(err, &se))
	s.Equal(http.StatusServiceUnavailable, se.Code)
	s.Equal(int32(3), s.calls.Load())
}

func (s *ClientTestSuite) TestDoesNotRetryClientErrors() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	_, err := s.client.Bulletin(context.Background(), 9)
	s.Require().Error(err)
	s.Equal(int32(1), s.calls.Load())
}

func (s *ClientTestSuite) TestFilters_Decodes() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/filtros", r.URL.Path)
		_, _ = io.WriteString(w, `{"cliente":{"id":3,"razao_social":"ACME","filtros":[
			{"id":10,"descricao":"Obras","manha":true,"tarde":false,"noite":true}]}}`)
	}

	resp, err := s.client.Filters(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(3), resp.Client.ID)
	s.Require().Len(resp.Client.Filters, 1)
	s.True(resp.Client.Filters[0].Morning)
	s.True(resp.Client.Filters[0].Night)
}

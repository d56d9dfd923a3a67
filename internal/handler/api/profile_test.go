//go:build unit

package api_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillmesh/internal/entitystore/memoryengine"
	"skillmesh/internal/handler"
	"skillmesh/internal/handler/api"
	resdto "skillmesh/internal/handler/dto/response"
	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/pkg/config"
	"skillmesh/internal/pkg/jwt"
	"skillmesh/internal/reconcile"
	"skillmesh/internal/resolve"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProfileAPITestSuite struct {
	suite.Suite
	router     *gin.Engine
	jwtService *jwt.Service
}

func TestProfileAPISuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ProfileAPITestSuite))
}

func (s *ProfileAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	logger := slog.Default()

	clk := clock.NewRealClock()
	engine := memoryengine.New()
	resolver := resolve.New(engine, clk, logger)
	reconciler := reconcile.New(cfg.Reconcile, logger)

	s.jwtService = jwt.NewService(cfg.JWT.Secret)

	s.router = gin.New()
	handler.NewRouter(
		s.router,
		cfg,
		api.NewProfileHandler(
			commands.NewProfileCommands(engine, resolver, reconciler, clk, logger),
			queries.NewProfileQueries(resolver),
		),
		api.NewPostHandler(
			commands.NewPostCommands(engine, clk, logger),
			queries.NewPostQueries(engine, clk),
		),
		api.NewSessionHandler(
			commands.NewSessionCommands(engine, reconciler, queries.NewSessionQueries(engine), &apiStubValidator{}, clk, logger),
			queries.NewSessionQueries(engine),
		),
		middleware.NewAuthMiddleware(s.jwtService),
	)
}

func (s *ProfileAPITestSuite) request(method, path, wallet string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if wallet != "" {
		token, err := s.jwtService.GenerateToken(wallet, time.Hour)
		require.NoError(s.T(), err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func (s *ProfileAPITestSuite) upsert(wallet, username string) *httptest.ResponseRecorder {
	return s.request(http.MethodPost, "/api/profiles", wallet, gin.H{
		"username":     username,
		"display_name": "Someone",
	})
}

func (s *ProfileAPITestSuite) TestUpsertAndGet() {
	recorder := s.upsert("0xabc", "alice")
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.request(http.MethodGet, "/api/profiles/0xabc", "", nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var view resdto.ProfileResponse
	require.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &view))
	assert.Equal(s.T(), "alice", view.Username)
	assert.Equal(s.T(), "0xabc", view.Wallet)
}

func (s *ProfileAPITestSuite) TestUpsertRequiresAuth() {
	recorder := s.request(http.MethodPost, "/api/profiles", "", gin.H{
		"username":     "alice",
		"display_name": "Alice",
	})
	assert.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
}

func (s *ProfileAPITestSuite) TestUsernameConflictIs409() {
	require.Equal(s.T(), http.StatusCreated, s.upsert("0xabc", "alice").Code)

	recorder := s.upsert("0xdef", "alice")
	assert.Equal(s.T(), http.StatusConflict, recorder.Code)
}

func (s *ProfileAPITestSuite) TestInvalidUsernameIs400() {
	recorder := s.upsert("0xabc", "a!")
	assert.Equal(s.T(), http.StatusBadRequest, recorder.Code)
}

func (s *ProfileAPITestSuite) TestGetMissingProfileIs404() {
	recorder := s.request(http.MethodGet, "/api/profiles/0xmissing", "", nil)
	assert.Equal(s.T(), http.StatusNotFound, recorder.Code)
}

func (s *ProfileAPITestSuite) TestDeleteProfile() {
	require.Equal(s.T(), http.StatusCreated, s.upsert("0xabc", "alice").Code)

	recorder := s.request(http.MethodDelete, "/api/profiles", "0xabc", nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	recorder = s.request(http.MethodGet, "/api/profiles/0xabc", "", nil)
	assert.Equal(s.T(), http.StatusNotFound, recorder.Code)

	// History survives deletion.
	recorder = s.request(http.MethodGet, "/api/profiles/0xabc/history", "", nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var history []resdto.ProfileRevisionResponse
	require.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &history))
	assert.Len(s.T(), history, 1)
}

func (s *ProfileAPITestSuite) TestAvailabilityRoundTrip() {
	recorder := s.request(http.MethodPut, "/api/profiles/availability", "0xabc", gin.H{
		"timezone": "Europe/Berlin",
		"slots": []gin.H{
			{"day": "mon", "start": "09:00", "end": "12:00"},
		},
	})
	require.Equal(s.T(), http.StatusCreated, recorder.Code)

	recorder = s.request(http.MethodGet, "/api/profiles/0xabc/availability", "", nil)
	require.Equal(s.T(), http.StatusOK, recorder.Code)

	var view resdto.AvailabilityResponse
	require.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &view))
	assert.Equal(s.T(), "Europe/Berlin", view.Timezone)
	require.Len(s.T(), view.Slots, 1)
}

func (s *ProfileAPITestSuite) TestHealthCheck() {
	recorder := s.request(http.MethodGet, "/health", "", nil)
	assert.Equal(s.T(), http.StatusOK, recorder.Code)
}

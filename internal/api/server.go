package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/alexmejias/repo-radar/internal/auth"
	"github.com/alexmejias/repo-radar/internal/catalog"
	"github.com/alexmejias/repo-radar/internal/db"
	"github.com/alexmejias/repo-radar/internal/matching"
	"github.com/alexmejias/repo-radar/internal/models"
	"github.com/alexmejias/repo-radar/internal/scoring"
	"github.com/alexmejias/repo-radar/internal/telemetry"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Collector   *telemetry.Collector
	Payment     PaymentVerifier
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	Scoring     scoring.Config

	logger *zap.Logger
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, collector *telemetry.Collector, scoringCfg scoring.Config, payment PaymentVerifier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if payment == nil {
		payment = openVerifier{}
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret", PaymentReceiptHeader},
	}))

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Collector:   collector,
		Payment:     payment,
		Echo:        e,
		Scoring:     scoringCfg,
		logger:      logger,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Analysis
	analyze := api.Group("/analyze")
	analyze.Use(s.paymentMiddleware)
	analyze.POST("", s.handleAnalyze)

	api.GET("/cards", s.handleListCards)
	api.GET("/cards/:id", s.handleGetCard)
	api.GET("/cards/:id/export", s.handleExportCard)
	api.PATCH("/cards/:id/actions/:actionID", s.handleSetActionState)

	// Catalog
	api.GET("/grants", s.handleListGrants)
	api.GET("/grants/:id", s.handleGetGrant)
	api.GET("/niches", s.handleListNiches)
	api.GET("/niches/:id/grants", s.handleNicheGrants)

	// Admin routes (catalog maintenance)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/catalog/seed", s.handleSeedCatalog)
	admin.POST("/catalog/refresh", s.handleRefreshCatalog)

	// Auth routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected routes (saved grants)
	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveGrant)
	saved.DELETE("/:id", s.handleUnsaveGrant)
	saved.GET("", s.handleGetSavedGrants)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) paymentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		receipt := c.Request().Header.Get(PaymentReceiptHeader)
		if err := s.Payment.Verify(receipt); err != nil {
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": err.Error()})
		}
		return next(c)
	}
}

type analyzeRequest struct {
	Repo  string `json:"repo"`
	Niche string `json:"niche,omitempty"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	owner, name, err := telemetry.ParseRepoRef(req.Repo)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if s.Collector == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "telemetry collector not configured"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	t, err := s.Collector.Collect(ctx, owner, name, now)
	if err != nil {
		s.logger.Error("telemetry collection failed",
			zap.String("repo", req.Repo), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to collect repo telemetry"})
	}

	if req.Niche != "" {
		niche, ok := matching.NicheByID(req.Niche)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown niche %q", req.Niche)})
		}
		t.GrantFit.Matches = append(t.GrantFit.Matches, s.matchesForNiche(c, niche)...)
	}

	card := scoring.GenerateOpportunityCard(t, s.Scoring, now)

	// Analysis history is best-effort: a storage failure degrades to an
	// unpersisted response instead of discarding the computed card.
	if err := s.Store.SaveCard(ctx, card); err != nil {
		s.logger.Warn("failed to persist card",
			zap.String("card_id", card.ID.String()), zap.Error(err))
	}

	return c.JSON(http.StatusOK, card)
}

// matchesForNiche ranks the stored catalog against a niche and converts the
// results into telemetry-shaped matches. Falls back to the embedded seed
// when the database is unavailable.
func (s *Server) matchesForNiche(c echo.Context, niche models.BuilderNiche) []models.GrantMatch {
	grants := s.openGrants(c)

	ranked := matching.MatchGrantsForNiche(niche, grants)
	matches := make([]models.GrantMatch, 0, len(ranked))
	for _, r := range ranked {
		matches = append(matches, models.GrantMatch{
			GrantID:    r.Grant.ID,
			Program:    r.Grant.Name,
			Ecosystem:  r.Grant.Ecosystem,
			Confidence: math.Min(100, float64(r.Score)*10),
			Reasons:    r.Reasons,
			ApplyURL:   r.Grant.ApplyURL,
		})
	}
	return matches
}

func (s *Server) openGrants(c echo.Context) []models.Grant {
	result, err := s.Store.ListGrants(c.Request().Context(), db.GrantListParams{Limit: 100})
	if err == nil && len(result.Grants) > 0 {
		return result.Grants
	}
	if err != nil {
		s.logger.Warn("grant catalog query failed, using embedded seed", zap.Error(err))
	}

	seed, seedErr := catalog.LoadSeed()
	if seedErr != nil {
		s.logger.Error("embedded grant seed unavailable", zap.Error(seedErr))
		return nil
	}
	open := make([]models.Grant, 0, len(seed))
	for _, g := range seed {
		if g.Status != models.GrantStatusClosed {
			open = append(open, g)
		}
	}
	return open
}

func (s *Server) handleListCards(c echo.Context) error {
	limit, offset := 20, 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}

	cards, err := s.Store.ListCards(c.Request().Context(), limit, offset)
	if err != nil {
		c.Logger().Errorf("Failed to list cards: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, cards)
}

func (s *Server) loadCard(c echo.Context) (*models.OpportunityCard, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid card ID")
	}

	card, err := s.Store.GetCard(c.Request().Context(), id)
	if err == pgx.ErrNoRows {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Card not found")
	}
	if err != nil {
		c.Logger().Errorf("Failed to load card %s: %v", id, err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return card, nil
}

func (s *Server) handleGetCard(c echo.Context) error {
	card, err := s.loadCard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) handleExportCard(c echo.Context) error {
	card, err := s.loadCard(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(scoring.ExportMarkdown(*card)))
}

type actionStateRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleSetActionState(c echo.Context) error {
	card, err := s.loadCard(c)
	if err != nil {
		return err
	}

	actionID := c.Param("actionID")
	known := false
	for _, a := range card.NextActions {
		if a.ID == actionID {
			known = true
			break
		}
	}
	if !known {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Action not found on card"})
	}

	var req actionStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := s.Store.SetActionState(c.Request().Context(), card.ID, actionID, req.Completed); err != nil {
		c.Logger().Errorf("Failed to set action state: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"card_id":   card.ID,
		"action_id": actionID,
		"completed": req.Completed,
	})
}

func (s *Server) handleListGrants(c echo.Context) error {
	params := db.GrantListParams{
		Query:     c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		Ecosystem: strings.ToLower(c.QueryParam("ecosystem")),
		Tag:       c.QueryParam("tag"),
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_amount"), 64); err == nil && v > 0 {
		params.MinAmount = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_amount"), 64); err == nil && v > 0 {
		params.MaxAmount = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		params.Offset = v
	}

	result, err := s.Store.ListGrants(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list grants: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetGrant(c echo.Context) error {
	grant, err := s.Store.GetGrant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, grant)
}

func (s *Server) handleListNiches(c echo.Context) error {
	return c.JSON(http.StatusOK, matching.Niches())
}

func (s *Server) handleNicheGrants(c echo.Context) error {
	niche, ok := matching.NicheByID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown niche"})
	}

	ranked := matching.MatchGrantsForNiche(niche, s.openGrants(c))
	return c.JSON(http.StatusOK, map[string]any{
		"niche":   niche,
		"matches": ranked,
	})
}

func (s *Server) handleSeedCatalog(c echo.Context) error {
	grants, err := catalog.LoadSeed()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	count, err := s.Store.UpsertGrants(c.Request().Context(), grants)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Seed complete",
		"count":   count,
	})
}

func (s *Server) handleRefreshCatalog(c echo.Context) error {
	var source catalog.ListingSource
	if err := c.Bind(&source); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if source.URL == "" || source.Selectors.Container == "" || source.Selectors.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url and selectors.container/title are required"})
	}

	u, err := url.Parse(source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid URL scheme"})
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL host is required"})
	}
	if host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".local") {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Internal network access forbidden"})
	}
	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unable to resolve URL host"})
	}
	for _, ip := range ips {
		if isPrivateOrSpecialIP(ip) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Internal network access forbidden"})
		}
	}

	fetcher := catalog.NewFetcher(s.logger)
	grants, err := fetcher.Fetch(c.Request().Context(), source)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	count, err := s.Store.UpsertGrants(c.Request().Context(), grants)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%s refresh complete", source.Name),
		"count":   count,
	})
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Protected handlers

func (s *Server) handleSaveGrant(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	grantID := c.Param("id")
	if _, err := s.Store.GetGrant(ctx, grantID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Grant not found"})
	}

	if err := s.AuthService.SaveGrant(ctx, userID, grantID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save grant"})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveGrant(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.AuthService.UnsaveGrant(ctx, userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unsave grant"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleGetSavedGrants(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	grants, err := s.AuthService.SavedGrants(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch saved grants"})
	}
	if grants == nil {
		grants = []models.Grant{}
	}
	return c.JSON(http.StatusOK, grants)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func isPrivateOrSpecialIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		if ip4[0] == 100 && ip4[1]&0xC0 == 64 {
			return true
		}
		if ip4[0] == 169 && ip4[1] == 254 {
			return true
		}
	}

	return false
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}

package devkit

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

const (
	gatewayTimeLayout      = "2006-01-02T15:04:05.000000"
	tokenKindClient        = "client"
	tokenKindUser          = "user"
	sessionPurposeVerify   = "verify"
	sessionPurposeReset    = "reset"
	defaultGatewayTokenTTL = 15 * time.Minute
	verificationWindow     = 10 * time.Minute
)

type GatewayOption func(*MockGateway)

func WithGatewayCredentials(clientID uuid.UUID, secret string) GatewayOption {
	return func(g *MockGateway) {
		g.clientID = clientID
		g.clientSecret = secret
	}
}

// WithTokenTTL sets the lifetime of client and user tokens.
func WithTokenTTL(ttl time.Duration) GatewayOption {
	return func(g *MockGateway) {
		if ttl > 0 {
			g.tokenTTL = ttl
		}
	}
}

func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *MockGateway) {
		if now != nil {
			g.now = now
		}
	}
}

func WithPoolName(name string) GatewayOption {
	return func(g *MockGateway) {
		g.pool.PoolName = name
	}
}

// MockGateway is an in-process HashGate gateway. Client tokens are HS256
// JWTs; ExpireTokens and Advance let tests force the 401 path.
type MockGateway struct {
	mu sync.Mutex

	echo   *echo.Echo
	server *httptest.Server

	clientID     uuid.UUID
	clientSecret string
	signingKey   []byte
	tokenTTL     time.Duration
	epoch        int
	now          func() time.Time
	offset       time.Duration
	pool         core.Pool
	poolCreated  time.Time

	users       map[uuid.UUID]*gatewayUser
	usernames   map[string]uuid.UUID
	sessions    map[string]*gatewaySession
	resetTokens map[string]uuid.UUID

	authCalls  int
	rejections int
}

type gatewayUser struct {
	id           uuid.UUID
	username     string
	email        *string
	verified     bool
	passwordHash []byte
	attributes   map[string]json.RawMessage
	createdAt    time.Time
	updatedAt    time.Time
}

type gatewaySession struct {
	userID    uuid.UUID
	code      string
	purpose   string
	expiresAt time.Time
}

type gatewayUserJSON struct {
	ID         uuid.UUID                  `json:"id"`
	Username   string                     `json:"username"`
	Email      *string                    `json:"email,omitempty"`
	IsVerified bool                       `json:"isVerified"`
	CreatedAt  string                     `json:"createdAt"`
	UpdatedAt  string                     `json:"updatedAt"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type gatewayEnvelope map[string]any

// NewMockGateway builds the gateway without starting a listener. Use Start
// for a real socket or Handler to mount it elsewhere.
func NewMockGateway(opts ...GatewayOption) *MockGateway {
	g := &MockGateway{
		clientID:     uuid.New(),
		clientSecret: "devkit-secret",
		signingKey:   []byte(uuid.NewString()),
		tokenTTL:     defaultGatewayTokenTTL,
		now:          time.Now,
		pool:         core.Pool{PoolID: uuid.New(), PoolName: "devkit"},
		users:        map[uuid.UUID]*gatewayUser{},
		usernames:    map[string]uuid.UUID{},
		sessions:     map[string]*gatewaySession{},
		resetTokens:  map[string]uuid.UUID{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.poolCreated = g.currentTime()
	g.echo = g.routes()
	return g
}

// Start serves the gateway on a loopback listener.
func (g *MockGateway) Start() *MockGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server == nil {
		g.server = httptest.NewServer(g.echo)
	}
	return g
}

// URL is the gateway base URL, ending in /api/.
func (g *MockGateway) URL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server == nil {
		return ""
	}
	return g.server.URL + "/api/"
}

func (g *MockGateway) Close() {
	g.mu.Lock()
	server := g.server
	g.server = nil
	g.mu.Unlock()
	if server != nil {
		server.Close()
	}
}

func (g *MockGateway) Handler() http.Handler {
	return g.echo
}

func (g *MockGateway) ClientID() uuid.UUID {
	return g.clientID
}

func (g *MockGateway) ClientSecret() string {
	return g.clientSecret
}

// ExpireTokens invalidates every client token issued so far.
func (g *MockGateway) ExpireTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
}

// Advance moves the gateway clock forward.
func (g *MockGateway) Advance(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offset += d
}

// AuthCalls counts client/auth requests, successful or not.
func (g *MockGateway) AuthCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authCalls
}

// Rejections counts requests refused with 401 for a bad client token.
func (g *MockGateway) Rejections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rejections
}

// VerificationCode exposes the code the gateway would have delivered out of band.
func (g *MockGateway) VerificationCode(sessionID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		return "", false
	}
	return session.code, true
}

// SeedUser registers a user directly, bypassing the HTTP surface.
func (g *MockGateway) SeedUser(username string, password string, email *string) (core.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	user, err := g.createUserLocked(username, password, email)
	if err != nil {
		return core.User{}, err
	}
	return user.domain(), nil
}

func (g *MockGateway) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())

	api := e.Group("/api")
	api.POST("/client/auth", g.handleClientAuth)
	api.GET("/pool/info", g.handlePoolInfo, g.requireClientToken)

	users := api.Group("/user", g.requireClientToken)
	users.POST("/sign-in", g.handleSignIn)
	users.POST("/create", g.handleCreateUser)
	users.POST("/get", g.handleGetUser)
	users.POST("/get-by-token", g.handleGetUserByToken)
	users.POST("/set-attribute", g.handleSetAttribute)
	users.POST("/get-attribute", g.handleGetAttribute)
	users.POST("/get-attributes", g.handleGetAttributes)
	users.POST("/init-verification", g.handleInitVerification)
	users.POST("/complete-verification", g.handleCompleteVerification)
	users.POST("/verify-email", g.handleVerifyEmail)
	users.POST("/init-password-reset", g.handleInitPasswordReset)
	users.POST("/verify-password-reset", g.handleVerifyPasswordReset)
	users.POST("/reset-password", g.handleResetPassword)
	users.POST("/update-password", g.handleUpdatePassword)
	return e
}

func (g *MockGateway) requireClientToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return g.reject(c, "missing bearer token")
		}
		claims, err := g.parseToken(parts[1])
		if err != nil || claims["typ"] != tokenKindClient {
			return g.reject(c, "invalid token")
		}
		epoch, _ := claims["epoch"].(float64)
		g.mu.Lock()
		current := g.epoch
		g.mu.Unlock()
		if int(epoch) != current {
			return g.reject(c, "token expired")
		}
		return next(c)
	}
}

func (g *MockGateway) reject(c echo.Context, message string) error {
	g.mu.Lock()
	g.rejections++
	g.mu.Unlock()
	return c.JSON(http.StatusUnauthorized, failure(message))
}

func (g *MockGateway) handleClientAuth(c echo.Context) error {
	var req core.ClientAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	g.authCalls++
	valid := req.ClientID == g.clientID.String() && req.ClientSecret == g.clientSecret
	epoch := g.epoch
	g.mu.Unlock()
	if !valid {
		return c.JSON(http.StatusUnauthorized, failure("invalid client credentials"))
	}
	token, err := g.issueToken(tokenKindClient, g.clientID.String(), epoch)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, failure(err.Error()))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"token": token, "wasSuccessful": true})
}

func (g *MockGateway) handlePoolInfo(c echo.Context) error {
	g.mu.Lock()
	pool := g.pool
	created := g.poolCreated
	g.mu.Unlock()
	return c.JSON(http.StatusOK, gatewayEnvelope{
		"pool": gatewayEnvelope{
			"poolId":       pool.PoolID,
			"poolName":     pool.PoolName,
			"creationDate": created.UTC().Format(gatewayTimeLayout),
		},
		"wasSuccessful": true,
	})
}

func (g *MockGateway) handleSignIn(c echo.Context) error {
	var req core.UserAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	user := g.userByNameLocked(req.Username)
	g.mu.Unlock()
	if user == nil || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid username or password"))
	}
	token, err := g.issueToken(tokenKindUser, user.id.String(), 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, failure(err.Error()))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"token": token, "wasSuccessful": true})
}

func (g *MockGateway) handleCreateUser(c echo.Context) error {
	var req core.UserRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	if g.userByNameLocked(req.Username) != nil {
		g.mu.Unlock()
		return c.JSON(http.StatusConflict, failure("username already taken"))
	}
	user, err := g.createUserLocked(req.Username, req.Password, req.Email)
	g.mu.Unlock()
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	token, err := g.issueToken(tokenKindUser, user.id.String(), 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, failure(err.Error()))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"user": user.wire(), "token": token, "wasSuccessful": true})
}

func (g *MockGateway) handleGetUser(c echo.Context) error {
	var req core.GetUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"user": user.wire(), "wasSuccessful": true})
}

func (g *MockGateway) handleGetUserByToken(c echo.Context) error {
	var req core.GetUserByTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	claims, err := g.parseToken(req.Token)
	if err != nil || claims["typ"] != tokenKindUser {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	subject, _ := claims["sub"].(string)
	userID, err := uuid.Parse(subject)
	if err != nil {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[userID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"user": user.wire(), "wasSuccessful": true})
}

func (g *MockGateway) handleSetAttribute(c echo.Context) error {
	var req core.SetAttributeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	if len(req.Value) == 0 {
		req.Value = json.RawMessage("null")
	}
	user.attributes[req.Key] = append(json.RawMessage(nil), req.Value...)
	user.updatedAt = g.currentTimeLocked()
	return c.JSON(http.StatusOK, gatewayEnvelope{"wasSuccessful": true})
}

func (g *MockGateway) handleGetAttribute(c echo.Context) error {
	var req core.GetAttributeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	value, ok := user.attributes[req.Key]
	if !ok {
		return c.JSON(http.StatusOK, gatewayEnvelope{"attribute": nil, "wasSuccessful": false, "message": "attribute not found"})
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"attribute": value, "wasSuccessful": true})
}

func (g *MockGateway) handleGetAttributes(c echo.Context) error {
	var req core.GetAttributesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"attributes": cloneAttributes(user.attributes), "wasSuccessful": true})
}

func (g *MockGateway) handleInitVerification(c echo.Context) error {
	var req core.InitVerificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.users[req.UserID]; !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	return g.openSessionLocked(c, req.UserID, sessionPurposeVerify)
}

func (g *MockGateway) handleCompleteVerification(c echo.Context) error {
	var req core.CompleteVerificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.consumeSessionLocked(req.VerificationSessionID, req.VerificationCode, sessionPurposeVerify)
	if !ok {
		return c.JSON(http.StatusOK, gatewayEnvelope{"isVerified": false, "wasSuccessful": false, "message": "invalid or expired verification code"})
	}
	if user, found := g.users[session.userID]; found {
		user.verified = true
		user.updatedAt = g.currentTimeLocked()
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"isVerified": true, "wasSuccessful": true})
}

func (g *MockGateway) handleVerifyEmail(c echo.Context) error {
	var req core.VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	if user.email == nil {
		return c.JSON(http.StatusOK, gatewayEnvelope{"isVerified": false, "message": "user has no email", "wasSuccessful": false})
	}
	user.verified = true
	user.updatedAt = g.currentTimeLocked()
	return c.JSON(http.StatusOK, gatewayEnvelope{"isVerified": true, "message": "email verified", "wasSuccessful": true})
}

func (g *MockGateway) handleInitPasswordReset(c echo.Context) error {
	var req core.InitPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	var user *gatewayUser
	if req.Username != nil {
		user = g.userByNameLocked(*req.Username)
	}
	if user == nil && req.Email != nil {
		for _, candidate := range g.users {
			if candidate.email != nil && strings.EqualFold(*candidate.email, *req.Email) {
				user = candidate
				break
			}
		}
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	return g.openSessionLocked(c, user.id, sessionPurposeReset)
}

func (g *MockGateway) handleVerifyPasswordReset(c echo.Context) error {
	var req core.VerifyPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.consumeSessionLocked(req.VerificationSessionID, req.VerificationCode, sessionPurposeReset)
	if !ok {
		return c.JSON(http.StatusOK, failure("invalid or expired verification code"))
	}
	resetToken := uuid.NewString()
	g.resetTokens[resetToken] = session.userID
	return c.JSON(http.StatusOK, gatewayEnvelope{"resetToken": resetToken, "wasSuccessful": true})
}

func (g *MockGateway) handleResetPassword(c echo.Context) error {
	var req core.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	userID, ok := g.resetTokens[req.ResetToken]
	if !ok {
		return c.JSON(http.StatusOK, failure("invalid reset token"))
	}
	delete(g.resetTokens, req.ResetToken)
	user, ok := g.users[userID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	if err := user.setPassword(req.NewPassword, g.currentTimeLocked()); err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"wasSuccessful": true})
}

func (g *MockGateway) handleUpdatePassword(c echo.Context) error {
	var req core.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid payload"))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[req.UserID]
	if !ok {
		return c.JSON(http.StatusNotFound, failure("user not found"))
	}
	if bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.CurrentPassword)) != nil {
		return c.JSON(http.StatusOK, failure("current password does not match"))
	}
	if err := user.setPassword(req.NewPassword, g.currentTimeLocked()); err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{"wasSuccessful": true})
}

func (g *MockGateway) openSessionLocked(c echo.Context, userID uuid.UUID, purpose string) error {
	code, err := verificationCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, failure(err.Error()))
	}
	sessionID := uuid.NewString()
	expiresAt := g.currentTimeLocked().Add(verificationWindow)
	g.sessions[sessionID] = &gatewaySession{
		userID:    userID,
		code:      code,
		purpose:   purpose,
		expiresAt: expiresAt,
	}
	return c.JSON(http.StatusOK, gatewayEnvelope{
		"verificationSessionId": sessionID,
		"verificationCode":      code,
		"expiresAt":             expiresAt.UTC().Format(gatewayTimeLayout),
		"wasSuccessful":         true,
	})
}

// consumeSessionLocked removes the session when the code matches.
func (g *MockGateway) consumeSessionLocked(sessionID string, code string, purpose string) (*gatewaySession, bool) {
	session, ok := g.sessions[sessionID]
	if !ok || session.purpose != purpose {
		return nil, false
	}
	if g.currentTimeLocked().After(session.expiresAt) {
		delete(g.sessions, sessionID)
		return nil, false
	}
	if session.code != strings.TrimSpace(code) {
		return nil, false
	}
	delete(g.sessions, sessionID)
	return session, true
}

func (g *MockGateway) createUserLocked(username string, password string, email *string) (*gatewayUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if _, exists := g.usernames[strings.ToLower(username)]; exists {
		return nil, fmt.Errorf("username already taken")
	}
	now := g.currentTimeLocked()
	user := &gatewayUser{
		id:         uuid.New(),
		username:   username,
		attributes: map[string]json.RawMessage{},
		createdAt:  now,
	}
	if email != nil {
		copied := *email
		user.email = &copied
	}
	if err := user.setPassword(password, now); err != nil {
		return nil, err
	}
	g.users[user.id] = user
	g.usernames[strings.ToLower(username)] = user.id
	return user, nil
}

func (g *MockGateway) userByNameLocked(username string) *gatewayUser {
	id, ok := g.usernames[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil
	}
	return g.users[id]
}

func (g *MockGateway) issueToken(kind string, subject string, epoch int) (string, error) {
	now := g.currentTime()
	claims := jwt.MapClaims{
		"sub":   subject,
		"typ":   kind,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(g.tokenTTL).Unix(),
		"epoch": epoch,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
}

func (g *MockGateway) parseToken(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return g.signingKey, nil
	}, jwt.WithTimeFunc(g.currentTime), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (g *MockGateway) currentTime() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentTimeLocked()
}

func (g *MockGateway) currentTimeLocked() time.Time {
	return g.now().UTC().Add(g.offset)
}

func (u *gatewayUser) setPassword(password string, now time.Time) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	u.updatedAt = now
	return nil
}

func (u *gatewayUser) wire() gatewayUserJSON {
	out := gatewayUserJSON{
		ID:         u.id,
		Username:   u.username,
		Email:      u.email,
		IsVerified: u.verified,
		CreatedAt:  u.createdAt.UTC().Format(gatewayTimeLayout),
		UpdatedAt:  u.updatedAt.UTC().Format(gatewayTimeLayout),
	}
	if len(u.attributes) > 0 {
		out.Attributes = cloneAttributes(u.attributes)
	}
	return out
}

func (u *gatewayUser) domain() core.User {
	user := core.User{
		ID:         u.id,
		Username:   u.username,
		Email:      u.email,
		IsVerified: u.verified,
		CreatedAt:  core.GatewayTime{Time: u.createdAt.UTC()},
		UpdatedAt:  core.GatewayTime{Time: u.updatedAt.UTC()},
	}
	if len(u.attributes) > 0 {
		user.Attributes = cloneAttributes(u.attributes)
	}
	return user
}

func cloneAttributes(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for key, value := range in {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}

func failure(message string) gatewayEnvelope {
	return gatewayEnvelope{"wasSuccessful": false, "message": message}
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

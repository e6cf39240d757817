package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavrin/realmportal/internal/common"
	"github.com/tavrin/realmportal/internal/dbx"
	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/models"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/server/repositories/accounts"
	"github.com/tavrin/realmportal/internal/server/repositories/repomanager"
	"github.com/tavrin/realmportal/internal/server/services"

	_ "modernc.org/sqlite"
)

type memAccountsRepo struct {
	byUsername map[string]*models.Account
	gmLevels   map[int64]int
	nextID     int64
}

func newMemAccountsRepo() *memAccountsRepo {
	return &memAccountsRepo{byUsername: make(map[string]*models.Account), gmLevels: make(map[int64]int)}
}

func (r *memAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.nextID++
	created := *account
	created.ID = r.nextID
	r.byUsername[account.Username] = &created
	return &created, nil
}

func (r *memAccountsRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return account, nil
}

func (r *memAccountsRepo) IsBanned(ctx context.Context, accountID int64) (bool, error) {
	return false, nil
}

func (r *memAccountsRepo) GMLevel(ctx context.Context, accountID int64, realmID int32) (int, error) {
	return r.gmLevels[accountID], nil
}

type memAuthManager struct {
	repo accounts.Repository
}

func (m *memAuthManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *memAuthManager) Accounts(db dbx.DBTX) accounts.Repository           { return m.repo }

var realmSchema = []string{
	`CREATE TABLE characters (guid INTEGER PRIMARY KEY, account INTEGER NOT NULL, name TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 1, money INTEGER NOT NULL DEFAULT 0, deleted_account INTEGER)`,
	`CREATE TABLE item_template (entry INTEGER PRIMARY KEY, name TEXT NOT NULL, class INTEGER NOT NULL DEFAULT 0,
		buy_price INTEGER NOT NULL DEFAULT 0, max_stack INTEGER NOT NULL DEFAULT 1, durability INTEGER NOT NULL DEFAULT 0)`,
	`CREATE TABLE item_instance (guid INTEGER PRIMARY KEY, entry INTEGER NOT NULL, owner_guid INTEGER NOT NULL,
		count INTEGER NOT NULL, durability INTEGER NOT NULL DEFAULT 0)`,
	`CREATE TABLE mail (id INTEGER PRIMARY KEY, sender_guid INTEGER NOT NULL DEFAULT 0, receiver_guid INTEGER NOT NULL,
		subject TEXT NOT NULL DEFAULT '', body TEXT NOT NULL DEFAULT '', money INTEGER NOT NULL DEFAULT 0,
		has_items INTEGER NOT NULL DEFAULT 0, deliver_time TIMESTAMP NOT NULL, expire_time TIMESTAMP NOT NULL)`,
	`CREATE TABLE mail_items (mail_id INTEGER NOT NULL, item_guid INTEGER NOT NULL, receiver_guid INTEGER NOT NULL,
		PRIMARY KEY (mail_id, item_guid))`,
	`CREATE TABLE realm_sequences (name TEXT PRIMARY KEY, next_id INTEGER NOT NULL)`,
	`INSERT INTO realm_sequences (name, next_id) VALUES ('item_guid', 0), ('mail_id', 0)`,
}

type testEnv struct {
	server  *httptest.Server
	repo    *memAccountsRepo
	realmDB *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range realmSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Minute,
		AccessCacheTTL:              time.Minute,
		ShopMarkupPercent:           20,
		ShopAllowedClasses:          []int{0, 2, 4},
		GMMailMinLevel:              2,
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := newMemAccountsRepo()
	authManager := &memAuthManager{repo: repo}
	realmManager := repomanager.NewPostgresRealmManager()
	registry := realms.NewRegistryFromRealms(&realms.Realm{ID: 1, Name: "test", DB: db})

	accountsSvc := services.NewAccountService(nil, authManager, cfg, logger)
	engine := services.NewDeliveryEngine(registry, realmManager, logger)
	shop := services.NewShopService(engine, registry, realmManager, cfg, logger)
	gmmail := services.NewGMMailService(engine, accountsSvc, cfg, logger)

	srv := httptest.NewServer(NewServer(cfg, logger, accountsSvc, shop, gmmail).Handler())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, repo: repo, realmDB: db}
}

func (e *testEnv) post(t *testing.T, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// register + login, seed a character owned by the new account, return token.
func (e *testEnv) loginWithCharacter(t *testing.T, guid, money int64) string {
	t.Helper()
	resp, body := e.post(t, "/api/register", "", map[string]string{"username": "player", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	accountID := int64(body["account_id"].(float64))

	_, err := e.realmDB.Exec(`INSERT INTO characters (guid, account, name, level, money) VALUES ($1, $2, 'Testchar', 60, $3)`,
		guid, accountID, money)
	require.NoError(t, err)

	resp, body = e.post(t, "/api/login", "", map[string]string{"username": "player", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["access_token"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/register", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "ALICE", body["username"])

	resp, body = env.post(t, "/api/login", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["access_token"])

	resp, body = env.post(t, "/api/login", "", map[string]string{"username": "alice", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid_credentials", body["error"])
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.post(t, "/api/register", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.post(t, "/api/register", "", map[string]string{"username": "ALICE", "password": "pw"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "account_exists", body["error"])
}

func TestPurchase_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, "/api/shop/purchase", "", map[string]any{"realm_id": 1})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "unauthorized", body["error"])

	resp, _ = env.post(t, "/api/shop/purchase", "not-a-token", map[string]any{"realm_id": 1})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPurchase_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.realmDB.Exec(`INSERT INTO item_template (entry, name, class, buy_price, max_stack) VALUES (5000, 'Heavy Runecloth Bandage', 0, 100, 20)`)
	require.NoError(t, err)

	token := env.loginWithCharacter(t, 100, 10000)

	resp, body := env.post(t, "/api/shop/purchase", token, map[string]any{
		"realm_id": 1, "character_guid": 100, "template_id": 5000, "quantity": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(600), body["total_cost"])
	require.Equal(t, float64(9400), body["new_balance"])
	require.Equal(t, "Heavy Runecloth Bandage", body["item_name"])
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.realmDB.Exec(`INSERT INTO item_template (entry, name, class, buy_price, max_stack) VALUES (5000, 'Bandage', 0, 100, 20)`)
	require.NoError(t, err)

	token := env.loginWithCharacter(t, 100, 500)

	resp, body := env.post(t, "/api/shop/purchase", token, map[string]any{
		"realm_id": 1, "character_guid": 100, "template_id": 5000, "quantity": 5,
	})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	require.Equal(t, "insufficient_funds", body["error"])
	require.Contains(t, body["message"], "100 more needed")
}

func TestPurchase_ForeignCharacter(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.realmDB.Exec(`INSERT INTO item_template (entry, name, class, buy_price, max_stack) VALUES (5000, 'Bandage', 0, 100, 20)`)
	require.NoError(t, err)
	// Character owned by an account that is not the caller.
	_, err = env.realmDB.Exec(`INSERT INTO characters (guid, account, name, money) VALUES (200, 999, 'Other', 10000)`)
	require.NoError(t, err)

	token := env.loginWithCharacter(t, 100, 10000)

	resp, body := env.post(t, "/api/shop/purchase", token, map[string]any{
		"realm_id": 1, "character_guid": 200, "template_id": 5000, "quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "character_not_found", body["error"])
}

func TestSendMail_GMGate(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginWithCharacter(t, 100, 0)

	resp, body := env.post(t, "/api/mail/send", token, map[string]any{
		"realm_id": 1, "character_guid": 100, "money": 500,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "unauthorized", body["error"])
}

func TestSendMail_AsGM(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginWithCharacter(t, 100, 0)
	env.repo.gmLevels[1] = 3

	resp, body := env.post(t, "/api/mail/send", token, map[string]any{
		"realm_id": 1, "character_guid": 100, "money": 500, "subject": "Compensation",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(500), body["money"])

	var money int64
	require.NoError(t, env.realmDB.QueryRow(`SELECT money FROM characters WHERE guid = 100`).Scan(&money))
	require.Equal(t, int64(500), money)
}

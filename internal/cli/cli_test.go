package cli

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/cookiejar"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

func testConfig() config.Config {
	return config.Config{
		DefinitionPath: "testdata/journey.yaml",
		RedisPrefix:    "waypoint:session:",
		CookieName:     "wp",
		LockTTL:        time.Second,
		SessionTTL:     time.Hour,
		Metrics:        true,
	}
}

func TestLoadDefinition(t *testing.T) {
	def, err := LoadDefinition("testdata/journey.yaml")
	require.NoError(t, err)
	assert.Equal(t, "apply", def.Name)
	require.Len(t, def.Steps, 5)
	assert.NotNil(t, def.Steps[1].Next.Conditions[0].OpFunc)
	assert.NotNil(t, def.Steps[1].Next.Conditions[1].OpFunc)

	_, err = LoadDefinition("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestNewWizard_UnboundFunction(t *testing.T) {
	def, err := LoadDefinition("testdata/unbound.yaml")
	require.NoError(t, err)

	_, err = NewWizard(def, nil, logging.NewNop())
	var cerr *domain.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "/start", cerr.Step)
}

func TestNewSessions_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	mgr, closeStore, err := NewSessions(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	_, err = mgr.LoadOrStart(context.Background(), "s1", "apply")
	require.NoError(t, err)
	assert.True(t, mr.Exists("waypoint:session:s1"))
}

func TestNewSessions_EncryptedRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
	cfg.RedactFields = []string{"password"}

	mgr, closeStore, err := NewSessions(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	_, err = mgr.Update(ctx, "s1", "apply", func(s *domain.Session) error {
		s.Set("name", "Ada")
		s.Set("password", "hunter2")
		return nil
	})
	require.NoError(t, err)

	raw, err := mr.Get("waypoint:session:s1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Ada")
	assert.Contains(t, raw, "__encrypted__")

	store, closeOffline, err := OpenStore(cfg)
	require.NoError(t, err)
	defer closeOffline()
	s, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.Get("name"))
	assert.Equal(t, "***", s.Get("password"))
}

func TestStoreMiddleware_BadKeys(t *testing.T) {
	cfg := testConfig()
	cfg.EncryptionKey = "not base64!"
	_, err := StoreMiddleware(cfg)
	assert.ErrorContains(t, err, "ENCRYPTION_KEY")

	cfg.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = StoreMiddleware(cfg)
	assert.ErrorContains(t, err, "32 bytes")

	cfg.RedactFields = []string{"("}
	_, err = StoreMiddleware(cfg)
	assert.ErrorContains(t, err, "invalid redact pattern")
}

func TestNewSessions_FileStoreSharedWithOpenStore(t *testing.T) {
	cfg := testConfig()
	cfg.SessionDir = t.TempDir()

	mgr, closeStore, err := NewSessions(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()
	_, err = mgr.LoadOrStart(context.Background(), "apply:s1", "apply")
	require.NoError(t, err)

	store, _, err := OpenStore(cfg)
	require.NoError(t, err)
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apply:s1"}, ids)
}

func TestNewSessions_SQLiteRedactedAndShared(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "sqlite:" + filepath.Join(t.TempDir(), "sessions.db")
	cfg.RedactFields = []string{"^card"}

	mgr, closeStore, err := NewSessions(cfg, logging.NewNop())
	require.NoError(t, err)
	_, err = mgr.Update(context.Background(), "apply:s1", "apply", func(s *domain.Session) error {
		s.Set("cardNumber", "4111")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, closeStore())

	store, closeOffline, err := OpenStore(cfg)
	require.NoError(t, err)
	defer closeOffline()
	loaded, err := store.Load(context.Background(), "apply:s1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Get("cardNumber"))
}

func TestOpenStore_RequiresRedis(t *testing.T) {
	_, _, err := OpenStore(testConfig())
	assert.ErrorContains(t, err, "WAYPOINT_REDIS_ADDR")
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{Config: testConfig(), Logger: logging.NewNop(), Listener: ln})
	}()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	base := "http://" + ln.Addr().String()

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := client.Post(base+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := post("/apply/start", `{}`)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/apply/age", resp.Header.Get("Location"))

	resp = post("/apply/age", `{"age": "twelve"}`)
	assert.Equal(t, "/apply/age", resp.Header.Get("Location"))

	resp = post("/apply/age", `{"age": 12}`)
	assert.Equal(t, "/apply/guardian", resp.Header.Get("Location"))

	resp = post("/apply/age", `{"age": 30}`)
	assert.Equal(t, "/apply/adult", resp.Header.Get("Location"))

	resp, err = client.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_NoDefinition(t *testing.T) {
	err := Serve(context.Background(), ServeOptions{Logger: logging.NewNop()})
	assert.ErrorContains(t, err, "no definition")
}

func TestLoadDefinition_Directory(t *testing.T) {
	def, err := LoadDefinition("testdata/apply")
	require.NoError(t, err)
	assert.Equal(t, "apply", def.Name)
	assert.Equal(t, "/apply", def.BaseURL)
	require.Len(t, def.Steps, 4)
	assert.Equal(t, "/start", def.Steps[0].Route)
	assert.Contains(t, def.Steps[0].Content, "# Apply")
	assert.NotNil(t, def.Steps[1].Next.Conditions[0].OpFunc)
	assert.True(t, def.Fields["age"].Required)
}

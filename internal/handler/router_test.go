package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/config"
	"github.com/qs-lzh/movie-favorites/internal/app"
	"github.com/qs-lzh/movie-favorites/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:           "Movie Favorites API",
		AppVersion:        "1.0.0",
		Env:               config.EnvTesting,
		Debug:             true,
		DatabaseDSN:       "sqlite://:memory:",
		CORSOrigins:       []string{"*"},
		RateLimitCapacity: 120,
		RateLimitInterval: time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*app.App, http.Handler) {
	t.Helper()
	db, err := database.Open(cfg.DatabaseDSN, false, nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db, cfg.DatabaseDSN); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	a, err := app.New(cfg, db, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, NewRouter(a)
}

type apiClient struct {
	t *testing.T
	h http.Handler
}

func (c apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func createUser(c apiClient, name, email string) uint {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/usuarios", map[string]any{"nombre": name, "correo": email})
	expectStatus(c.t, w, http.StatusCreated)
	return decode[struct {
		ID uint `json:"id"`
	}](c.t, w).ID
}

func createMovie(c apiClient, title, genre string, duration, year int) uint {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/peliculas", map[string]any{
		"titulo":        title,
		"director":      "Director",
		"genero":        genre,
		"duracion":      duration,
		"año":           year,
		"clasificacion": "PG-13",
	})
	expectStatus(c.t, w, http.StatusCreated)
	return decode[struct {
		ID uint `json:"id"`
	}](c.t, w).ID
}

func TestRootAndHealth(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	c := apiClient{t, h}

	w := c.do(http.MethodGet, "/", nil)
	expectStatus(t, w, http.StatusOK)
	root := decode[map[string]any](t, w)
	if root["version"] != "1.0.0" || root["entorno"] != "testing" {
		t.Errorf("unexpected root body: %v", root)
	}

	w = c.do(http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)
	health := decode[map[string]string](t, w)
	if health["status"] != "healthy" || health["database"] != "connected" {
		t.Errorf("unexpected health body: %v", health)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	a, h := newTestServer(t, testConfig())
	sqlDB, err := a.DB.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	_ = sqlDB.Close()

	w := apiClient{t, h}.do(http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusServiceUnavailable)
	if body := decode[map[string]string](t, w); body["status"] != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", body["status"])
	}
}

func TestUserEndpoints(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	c := apiClient{t, h}

	id := createUser(c, "Juan Pérez", "Juan.Perez@Email.com")

	w := c.do(http.MethodPost, "/api/usuarios", map[string]any{"nombre": "Otro", "correo": "juan.perez@email.com"})
	expectStatus(t, w, http.StatusBadRequest)
	if body := decode[map[string]any](t, w); !strings.Contains(body["message"].(string), "juan.perez@email.com") {
		t.Errorf("conflict message should name the email: %v", body)
	}

	w = c.do(http.MethodPost, "/api/usuarios", map[string]any{"nombre": "Ana", "correo": "email-invalido"})
	expectStatus(t, w, http.StatusBadRequest)
	if body := decode[map[string]any](t, w); body["details"] == nil {
		t.Errorf("validation errors should carry details: %v", body)
	}

	w = c.do(http.MethodGet, "/api/usuarios/"+itoa(id), nil)
	expectStatus(t, w, http.StatusOK)
	user := decode[map[string]any](t, w)
	if user["correo"] != "juan.perez@email.com" || user["fecha_registro"] == nil {
		t.Errorf("unexpected user: %v", user)
	}

	w = c.do(http.MethodPut, "/api/usuarios/"+itoa(id), map[string]any{"nombre": "Juan Carlos"})
	expectStatus(t, w, http.StatusOK)
	if got := decode[map[string]any](t, w)["nombre"]; got != "Juan Carlos" {
		t.Errorf("nombre = %v", got)
	}

	w = c.do(http.MethodGet, "/api/usuarios?skip=0&limit=10", nil)
	expectStatus(t, w, http.StatusOK)
	if users := decode[[]map[string]any](t, w); len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}

	expectStatus(t, c.do(http.MethodGet, "/api/usuarios?limit=-1", nil), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodGet, "/api/usuarios?skip=abc", nil), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodGet, "/api/usuarios/abc", nil), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodGet, "/api/usuarios/9999", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodPost, "/api/usuarios", `{"nombre":`), http.StatusBadRequest)

	expectStatus(t, c.do(http.MethodDelete, "/api/usuarios/"+itoa(id), nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodGet, "/api/usuarios/"+itoa(id), nil), http.StatusNotFound)
}

func TestMovieEndpoints(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	c := apiClient{t, h}

	inception := createMovie(c, "Inception", "Ciencia Ficción, Acción", 148, 2010)
	createMovie(c, "El Padrino", "Drama, Crimen", 175, 1972)

	w := c.do(http.MethodPost, "/api/peliculas", map[string]any{
		"titulo": "Vieja", "director": "X", "genero": "Drama", "duracion": 90, "año": 1800, "clasificacion": "G",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = c.do(http.MethodPut, "/api/peliculas/"+itoa(inception), map[string]any{"duracion": 150})
	expectStatus(t, w, http.StatusOK)
	movie := decode[map[string]any](t, w)
	if movie["duracion"] != float64(150) || movie["titulo"] != "Inception" {
		t.Errorf("unexpected movie: %v", movie)
	}

	q := url.Values{}
	q.Set("genero", "drama")
	q.Set("año_min", "1970")
	w = c.do(http.MethodGet, "/api/peliculas/buscar?"+q.Encode(), nil)
	expectStatus(t, w, http.StatusOK)
	found := decode[[]map[string]any](t, w)
	if len(found) != 1 || found[0]["titulo"] != "El Padrino" {
		t.Errorf("search result = %v", found)
	}

	w = c.do(http.MethodGet, "/api/peliculas/buscar?titulo=nada", nil)
	expectStatus(t, w, http.StatusOK)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty search should encode as [], got %s", w.Body.String())
	}

	q = url.Values{}
	q.Set("año_min", "2000")
	q.Set("año_max", "1990")
	expectStatus(t, c.do(http.MethodGet, "/api/peliculas/buscar?"+q.Encode(), nil), http.StatusBadRequest)

	w = c.do(http.MethodGet, "/api/peliculas", nil)
	expectStatus(t, w, http.StatusOK)
	if movies := decode[[]map[string]any](t, w); len(movies) != 2 {
		t.Errorf("got %d movies, want 2", len(movies))
	}

	expectStatus(t, c.do(http.MethodDelete, "/api/peliculas/"+itoa(inception), nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodGet, "/api/peliculas/"+itoa(inception), nil), http.StatusNotFound)
}

func TestFavoritesAndStats(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	c := apiClient{t, h}

	user := createUser(c, "Ana", "ana@example.com")
	godfather := createMovie(c, "El Padrino", "Drama", 175, 1972)
	lotr := createMovie(c, "El Señor de los Anillos", "Fantasía", 178, 2001)

	base := "/api/usuarios/" + itoa(user) + "/favoritos/"
	w := c.do(http.MethodPost, base+itoa(godfather), nil)
	expectStatus(t, w, http.StatusCreated)
	expectStatus(t, c.do(http.MethodPost, base+itoa(godfather), nil), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodPost, base+"9999", nil), http.StatusNotFound)

	w = c.do(http.MethodPost, "/api/favoritos", map[string]any{"id_usuario": user, "id_pelicula": lotr})
	expectStatus(t, w, http.StatusCreated)
	fav := decode[map[string]any](t, w)
	if fav["id_usuario"] != float64(user) || fav["id_pelicula"] != float64(lotr) {
		t.Errorf("unexpected favorite: %v", fav)
	}
	expectStatus(t, c.do(http.MethodPost, "/api/favoritos", map[string]any{"id_usuario": 0}), http.StatusBadRequest)

	w = c.do(http.MethodGet, "/api/usuarios/"+itoa(user)+"/favoritos", nil)
	expectStatus(t, w, http.StatusOK)
	movies := decode[[]map[string]any](t, w)
	if len(movies) != 2 || movies[0]["titulo"] != "El Padrino" {
		t.Errorf("favorite movies = %v", movies)
	}

	w = c.do(http.MethodGet, "/api/usuarios/"+itoa(user)+"/estadisticas", nil)
	expectStatus(t, w, http.StatusOK)
	stats := decode[map[string]any](t, w)
	if stats["total_peliculas_favoritas"] != float64(2) || stats["tiempo_total_minutos"] != float64(353) ||
		stats["tiempo_total_formateado"] != "5h 53m" {
		t.Errorf("unexpected stats: %v", stats)
	}
	genres, _ := stats["generos_preferidos"].([]any)
	if len(genres) != 2 || genres[0].(map[string]any)["genero"] != "Drama" {
		t.Errorf("generos_preferidos = %v", stats["generos_preferidos"])
	}

	favID := uint(fav["id"].(float64))
	expectStatus(t, c.do(http.MethodGet, "/api/favoritos/"+itoa(favID), nil), http.StatusOK)
	expectStatus(t, c.do(http.MethodDelete, "/api/favoritos/"+itoa(favID), nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodDelete, "/api/favoritos/"+itoa(favID), nil), http.StatusNotFound)

	expectStatus(t, c.do(http.MethodDelete, base+itoa(godfather), nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodDelete, base+itoa(godfather), nil), http.StatusNotFound)

	w = c.do(http.MethodGet, "/api/usuarios/"+itoa(user)+"/estadisticas", nil)
	expectStatus(t, w, http.StatusOK)
	stats = decode[map[string]any](t, w)
	if stats["tiempo_total_formateado"] != "0m" {
		t.Errorf("stats after removing everything = %v", stats)
	}
	if g, ok := stats["generos_preferidos"].([]any); !ok || len(g) != 0 {
		t.Errorf("generos_preferidos should be [], got %v", stats["generos_preferidos"])
	}

	expectStatus(t, c.do(http.MethodGet, "/api/usuarios/9999/favoritos", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodGet, "/api/usuarios/9999/estadisticas", nil), http.StatusNotFound)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitCapacity = 2
	cfg.RateLimitInterval = time.Hour
	_, h := newTestServer(t, cfg)
	c := apiClient{t, h}

	expectStatus(t, c.do(http.MethodGet, "/api/peliculas", nil), http.StatusOK)
	expectStatus(t, c.do(http.MethodGet, "/api/peliculas", nil), http.StatusOK)
	w := c.do(http.MethodGet, "/api/peliculas", nil)
	expectStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	// system endpoints are not limited
	expectStatus(t, c.do(http.MethodGet, "/health", nil), http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	c := apiClient{t, h}

	user := createUser(c, "Ana", "ana@example.com")
	movie := createMovie(c, "Amélie", "Comedia", 122, 2001)
	expectStatus(t, c.do(http.MethodPost, "/api/usuarios/"+itoa(user)+"/favoritos/"+itoa(movie), nil), http.StatusCreated)

	w := c.do(http.MethodGet, "/metrics", nil)
	expectStatus(t, w, http.StatusOK)
	body := w.Body.String()
	for _, want := range []string{
		`movies_activity_events_total{kind="favorite.added"} 1`,
		`movies_http_requests_total{method="POST",route="/api/usuarios",status="201"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

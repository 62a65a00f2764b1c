package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seguimiento-cmr/seguimiento-api/internal/config"
	"github.com/seguimiento-cmr/seguimiento-api/internal/handler"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
	"github.com/seguimiento-cmr/seguimiento-api/internal/repository"
	"github.com/seguimiento-cmr/seguimiento-api/internal/router"
	"github.com/seguimiento-cmr/seguimiento-api/internal/service"
)

// newTestApp wires the full stack against an in-memory database: real
// repositories and services, no redis, no spreadsheet client.
func newTestApp(t *testing.T) *fiber.App {
	return newTestAppWithMirror(t, nil)
}

func newTestAppWithMirror(t *testing.T, mirror service.EvidenceMirror) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Component{}, &models.Activity{}, &models.User{}, &models.Evidence{}, &models.Admin{}))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	componentRepo := repository.NewComponentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	if mirror == nil {
		mirror = service.NewSheetSync(nil, config.SyncModeAsync, 0, logger)
	}

	componentService := service.NewComponentService(componentRepo, activityRepo, evidenceRepo, validate, logger)
	activityService := service.NewActivityService(activityRepo, componentRepo, validate, logger)
	evidenceService := service.NewEvidenceService(evidenceRepo, activityRepo, userRepo, mirror, validate, logger)
	taskBoardService := service.NewTaskBoardService(evidenceService, nil, 0, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	authService := service.NewAuthService(adminRepo, "test-secret", validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Seguimiento Test", AppEnv: "test"}, router.Dependencies{
		ComponentHandler: handler.NewComponentHandler(componentService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, logger),
		EvidenceHandler:  handler.NewEvidenceHandler(evidenceService, taskBoardService, logger),
		UserHandler:      handler.NewUserHandler(userService, logger),
		AuthHandler:      handler.NewAuthHandler(authService, logger),
	})

	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestEvidenceLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/componentes", fiber.Map{"componente": "Gestión Ambiental"})
	require.Equal(t, http.StatusCreated, status)
	var component models.Component
	decodeData(t, env, &component)

	status, env = doJSON(t, app, http.MethodPost, "/api/actividades", fiber.Map{
		"actividad":  "Capacitación docente",
		"metaAnual":  4,
		"componente": component.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	var activity models.Activity
	decodeData(t, env, &activity)
	require.Equal(t, "Gestión Ambiental", activity.Component.Name)

	status, env = doJSON(t, app, http.MethodPost, "/api/users/register", fiber.Map{
		"nombre":      "Ana Torres",
		"email":       "ana@example.com",
		"vinculacion": "Docente",
	})
	require.Equal(t, http.StatusCreated, status)
	var user models.User
	decodeData(t, env, &user)

	status, env = doJSON(t, app, http.MethodPost, "/api/evidencias", fiber.Map{
		"actividad":     activity.ID,
		"tipoEvidencia": "Informe trimestral",
		"mes":           6,
		"trimestre":     2,
		"anio":          2026,
		"fechaEntrega":  "2026-06-30",
		"responsables":  []uint{user.ID},
	})
	require.Equal(t, http.StatusCreated, status)
	var evidence models.Evidence
	decodeData(t, env, &evidence)
	require.Equal(t, models.StatusPending, evidence.Status)
	require.Len(t, evidence.Responsibles, 1)

	// Deliver after the due date: status lands as Entrega Extemporanea.
	status, env = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/evidencias/%d/estado", evidence.ID), fiber.Map{
		"estado":      models.StatusDelivered,
		"entregadoEn": "2026-07-02",
	})
	require.Equal(t, http.StatusOK, status)
	var updated models.Evidence
	decodeData(t, env, &updated)
	require.Equal(t, models.StatusLate, updated.Status)
	require.NotNil(t, updated.DeliveredAt)

	status, env = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/evidencias/%d", evidence.ID), nil)
	require.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, app, http.MethodGet, "/api/evidencias/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	var groups []struct {
		ID         uint              `json:"id"`
		Componente string            `json:"componente"`
		Evidencias []models.Evidence `json:"evidencias"`
	}
	decodeData(t, env, &groups)
	require.Len(t, groups, 1)
	require.Equal(t, "Gestión Ambiental", groups[0].Componente)
	require.Len(t, groups[0].Evidencias, 1)

	status, env = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/componentes/%d/responsables", component.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var responsibles []models.User
	decodeData(t, env, &responsibles)
	require.Len(t, responsibles, 1)
	require.Equal(t, "Ana Torres", responsibles[0].Name)
}

func TestEvidenceEndpointsRejectBadInput(t *testing.T) {
	app := newTestApp(t)

	status, env := doJSON(t, app, http.MethodGet, "/api/evidencias/abc", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, env.Success)

	status, _ = doJSON(t, app, http.MethodGet, "/api/evidencias/999", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/evidencias", fiber.Map{
		"actividad":     1,
		"tipoEvidencia": "Informe",
		"mes":           13,
		"trimestre":     2,
		"anio":          2026,
		"fechaEntrega":  "2026-06-30",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/evidencias?page=0&limit=10", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/evidencias?componente=abc", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/evidencias/actividades/trimestre", nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestEvidenceListPagination(t *testing.T) {
	app := newTestApp(t)

	_, env := doJSON(t, app, http.MethodPost, "/api/componentes", fiber.Map{"componente": "Gestión"})
	var component models.Component
	decodeData(t, env, &component)

	_, env = doJSON(t, app, http.MethodPost, "/api/actividades", fiber.Map{
		"actividad": "Capacitación", "metaAnual": 4, "componente": component.ID,
	})
	var activity models.Activity
	decodeData(t, env, &activity)

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/api/evidencias", fiber.Map{
			"actividad":     activity.ID,
			"tipoEvidencia": "Informe",
			"mes":           6,
			"trimestre":     2,
			"anio":          2026,
			"fechaEntrega":  "2026-06-30",
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := doJSON(t, app, http.MethodGet, "/api/evidencias?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items      []models.Evidence `json:"items"`
		Total      int               `json:"total"`
		TotalPages int               `json:"totalPages"`
	}
	decodeData(t, env, &page)
	require.Len(t, page.Items, 2)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPages)

	// Without pagination parameters the full list comes back.
	status, env = doJSON(t, app, http.MethodGet, "/api/evidencias", nil)
	require.Equal(t, http.StatusOK, status)
	var all []models.Evidence
	decodeData(t, env, &all)
	require.Len(t, all, 3)
}

func TestComponentConflictAndHealth(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/componentes", fiber.Map{"componente": "Gestión"})
	require.Equal(t, http.StatusCreated, status)

	status, env := doJSON(t, app, http.MethodPost, "/api/componentes", fiber.Map{"componente": "Gestión"})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)

	status, env = doJSON(t, app, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
}

// stalledSheetClient never answers, standing in for an unreachable
// spreadsheet backend.
type stalledSheetClient struct{}

func (stalledSheetClient) IDColumn(ctx context.Context) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledSheetClient) Append(ctx context.Context, row []interface{}) error { return nil }

func (stalledSheetClient) Update(ctx context.Context, rowNumber int, row []interface{}) error {
	return nil
}

func TestEvidenceCreateSucceedsWhenSheetSyncTimesOut(t *testing.T) {
	logger := zerolog.Nop()
	mirror := service.NewSheetSync(stalledSheetClient{}, config.SyncModeAwait, 20*time.Millisecond, logger)
	app := newTestAppWithMirror(t, mirror)

	_, env := doJSON(t, app, http.MethodPost, "/api/componentes", fiber.Map{"componente": "Gestión"})
	var component models.Component
	decodeData(t, env, &component)

	_, env = doJSON(t, app, http.MethodPost, "/api/actividades", fiber.Map{
		"actividad": "Capacitación", "metaAnual": 4, "componente": component.ID,
	})
	var activity models.Activity
	decodeData(t, env, &activity)

	status, env := doJSON(t, app, http.MethodPost, "/api/evidencias", fiber.Map{
		"actividad":     activity.ID,
		"tipoEvidencia": "Informe",
		"mes":           6,
		"trimestre":     2,
		"anio":          2026,
		"fechaEntrega":  "2026-06-30",
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"name":     "Carla Ruiz",
		"email":    "carla@example.com",
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "carla@example.com",
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("x-access-token", login.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/verify", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/verify?token=garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "carla@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)
}

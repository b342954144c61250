package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/handler"
	"github.com/tsundberg/fakeloc/internal/mocker"
	"github.com/tsundberg/fakeloc/internal/service"
	"github.com/tsundberg/fakeloc/internal/statemachine"
)

// mockFakerServicer is a test double for handler.FakerServicer.
// Set only the method fields your test needs.
type mockFakerServicer struct {
	status           func() service.Status
	setLocation      func(ctx context.Context, loc domain.Location) error
	clearLocation    func()
	setState         func(on bool) error
	stop             func()
	favorites        func() []domain.Location
	toggleFavorite   func() (bool, error)
	toggleFavoriteOf func(loc domain.Location) (bool, error)
	removeFavorite   func(loc domain.Location) error
}

func (m *mockFakerServicer) Status() service.Status { return m.status() }
func (m *mockFakerServicer) SetLocation(ctx context.Context, loc domain.Location) error {
	return m.setLocation(ctx, loc)
}
func (m *mockFakerServicer) ClearLocation()         { m.clearLocation() }
func (m *mockFakerServicer) SetState(on bool) error { return m.setState(on) }
func (m *mockFakerServicer) Stop()                  { m.stop() }
func (m *mockFakerServicer) Favorites() []domain.Location {
	return m.favorites()
}
func (m *mockFakerServicer) ToggleFavorite() (bool, error) { return m.toggleFavorite() }
func (m *mockFakerServicer) ToggleFavoriteOf(loc domain.Location) (bool, error) {
	return m.toggleFavoriteOf(loc)
}
func (m *mockFakerServicer) RemoveFavorite(loc domain.Location) error {
	return m.removeFavorite(loc)
}

// compile-time check: mockFakerServicer must satisfy handler.FakerServicer.
var _ handler.FakerServicer = (*mockFakerServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into a chi router.
// This mirrors how the app wires it in production, minus middleware.
func newHTTPHandler(svc handler.FakerServicer) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(svc).Register(r)
	return r
}

func locationFixture() domain.Location {
	name := "Pier 39"
	return domain.Location{Latitude: 37.7749, Longitude: -122.4194, Name: &name}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func doRequest(t *testing.T, h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ---- GET /healthz ----------------------------------------------------------

func TestGetHealth_200(t *testing.T) {
	h := newHTTPHandler(&mockFakerServicer{})

	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// ---- GET /v1/status --------------------------------------------------------

func TestGetStatus_200(t *testing.T) {
	session := uuid.New()
	loc := locationFixture()
	svc := &mockFakerServicer{
		status: func() service.Status {
			return service.Status{
				State:    statemachine.On,
				Setting:  true,
				Location: &loc,
				Saved:    true,
				Driver:   mocker.Status{Active: true, Session: &session, Location: &loc},
			}
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodGet, "/v1/status", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "on", body["state"])
	assert.Equal(t, true, body["mock_setting_enabled"])
	assert.Equal(t, true, body["saved"])
	driver, ok := body["driver"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, session.String(), driver["session"])
}

// ---- PUT /v1/location ------------------------------------------------------

func TestPutLocation_204(t *testing.T) {
	var got domain.Location
	svc := &mockFakerServicer{
		setLocation: func(_ context.Context, loc domain.Location) error {
			got = loc
			return nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPut, "/v1/location",
		bytes.NewBufferString(`{"latitude":60.1699,"longitude":24.9384,"name":"Helsinki"}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 60.1699, got.Latitude)
	assert.Equal(t, 24.9384, got.Longitude)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Helsinki", *got.Name)
}

func TestPutLocation_NoName_204(t *testing.T) {
	var got domain.Location
	svc := &mockFakerServicer{
		setLocation: func(_ context.Context, loc domain.Location) error {
			got = loc
			return nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPut, "/v1/location",
		bytes.NewBufferString(`{"latitude":0,"longitude":0}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, got.Name)
	assert.Equal(t, 0.0, got.Latitude)
}

func TestPutLocation_MissingCoordinates_422(t *testing.T) {
	called := false
	svc := &mockFakerServicer{
		setLocation: func(_ context.Context, _ domain.Location) error {
			called = true
			return nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPut, "/v1/location",
		bytes.NewBufferString(`{"latitude":12.5}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, called)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Contains(t, body.Error.Message, "required")
}

func TestPutLocation_MalformedBody_422(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockFakerServicer{}), http.MethodPut, "/v1/location",
		bytes.NewBufferString(`{"latitude":`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
}

func TestPutLocation_OutOfRange_422(t *testing.T) {
	svc := &mockFakerServicer{
		setLocation: func(_ context.Context, _ domain.Location) error {
			return fmt.Errorf("service.Faker.SetLocation: %w: latitude out of range", domain.ErrValidation)
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPut, "/v1/location",
		bytes.NewBufferString(`{"latitude":91,"longitude":0}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "latitude out of range", body.Error.Message)
}

// ---- DELETE /v1/location ---------------------------------------------------

func TestDeleteLocation_204(t *testing.T) {
	cleared := false
	svc := &mockFakerServicer{clearLocation: func() { cleared = true }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodDelete, "/v1/location", nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, cleared)
}

// ---- POST /v1/state --------------------------------------------------------

func TestPostState_On_204(t *testing.T) {
	var got bool
	svc := &mockFakerServicer{setState: func(on bool) error { got = on; return nil }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/state",
		bytes.NewBufferString(`{"on":true}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, got)
}

func TestPostState_SettingDisabled_409(t *testing.T) {
	svc := &mockFakerServicer{
		setState: func(bool) error {
			return fmt.Errorf("service.Faker.SetState: %w", domain.ErrSettingDisabled)
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/state",
		bytes.NewBufferString(`{"on":true}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "mock_setting_disabled", body.Error.Code)
}

func TestPostState_MissingOn_422(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockFakerServicer{}), http.MethodPost, "/v1/state",
		bytes.NewBufferString(`{}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- POST /v1/stop ---------------------------------------------------------

func TestPostStop_204(t *testing.T) {
	stopped := false
	svc := &mockFakerServicer{stop: func() { stopped = true }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/stop", nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, stopped)
}

// ---- GET /v1/favorites -----------------------------------------------------

func TestGetFavorites_200(t *testing.T) {
	loc := locationFixture()
	svc := &mockFakerServicer{favorites: func() []domain.Location { return []domain.Location{loc} }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodGet, "/v1/favorites", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.Location `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.True(t, loc.Equal(body.Data[0]))
}

func TestGetFavorites_Empty_200(t *testing.T) {
	svc := &mockFakerServicer{favorites: func() []domain.Location { return nil }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodGet, "/v1/favorites", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

// ---- POST /v1/favorites/toggle ---------------------------------------------

func TestPostFavoritesToggle_Current_200(t *testing.T) {
	svc := &mockFakerServicer{toggleFavorite: func() (bool, error) { return true, nil }}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/favorites/toggle", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())
}

func TestPostFavoritesToggle_Explicit_200(t *testing.T) {
	var got domain.Location
	svc := &mockFakerServicer{
		toggleFavoriteOf: func(loc domain.Location) (bool, error) {
			got = loc
			return false, nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/favorites/toggle",
		jsonBody(t, locationFixture()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())
	assert.True(t, got.Equal(locationFixture()))
}

func TestPostFavoritesToggle_NoLocationSelected_404(t *testing.T) {
	svc := &mockFakerServicer{
		toggleFavorite: func() (bool, error) {
			return false, fmt.Errorf("service.Faker.ToggleFavorite: %w: no location selected", domain.ErrNotFound)
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodPost, "/v1/favorites/toggle", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

// ---- DELETE /v1/favorites --------------------------------------------------

func TestDeleteFavorites_204(t *testing.T) {
	var got domain.Location
	svc := &mockFakerServicer{
		removeFavorite: func(loc domain.Location) error {
			got = loc
			return nil
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodDelete, "/v1/favorites",
		jsonBody(t, locationFixture()))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 37.7749, got.Latitude)
}

func TestDeleteFavorites_NotFound_404(t *testing.T) {
	svc := &mockFakerServicer{
		removeFavorite: func(domain.Location) error {
			return fmt.Errorf("service.Faker.RemoveFavorite: %w", domain.ErrNotFound)
		},
	}

	rec := doRequest(t, newHTTPHandler(svc), http.MethodDelete, "/v1/favorites",
		jsonBody(t, locationFixture()))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestDeleteFavorites_EmptyBody_422(t *testing.T) {
	rec := doRequest(t, newHTTPHandler(&mockFakerServicer{}), http.MethodDelete, "/v1/favorites",
		bytes.NewBufferString(""))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "location body")
}

package handler

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avillegasn/agenda-api/internal/repository"
)

type fakeEventLister struct {
    events []repository.EventRecord
    err    error
}

func (f *fakeEventLister) List(ctx context.Context) ([]repository.EventRecord, error) {
    return f.events, f.err
}

func TestListEvents(t *testing.T) {
    h := &AdminHandler{Events: &fakeEventLister{events: []repository.EventRecord{
        {ID: "ev-1", Title: "Taller", Category: "public-workshop", Date: "2026-09-20", Capacity: 25},
    }}}

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/admin/events", nil)
    rec := httptest.NewRecorder()

    require.NoError(t, h.ListEvents(e.NewContext(req, rec)))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"ev-1"`)
    assert.Contains(t, rec.Body.String(), `"2026-09-20"`)
}

func TestListEventsStoreError(t *testing.T) {
    h := &AdminHandler{Events: &fakeEventLister{err: errors.New("db down")}}

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/admin/events", nil)
    rec := httptest.NewRecorder()

    require.NoError(t, h.ListEvents(e.NewContext(req, rec)))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    // The raw failure never reaches the operator UI.
    assert.NotContains(t, rec.Body.String(), "db down")
}

package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
)

func newPochaBody(title string) map[string]interface{} {
	start := time.Now().UTC().Add(24 * time.Hour)
	return map[string]interface{}{
		"title":       title,
		"description": "fall pocha",
		"startDate":   start.Format(time.RFC3339),
		"endDate":     start.Add(5 * time.Hour).Format(time.RFC3339),
		"menus": []map[string]interface{}{
			{"nameKor": "김치전", "nameEng": "Kimchi Pancake", "category": "Food", "price": 10, "stock": 20, "isImmediatePrep": false},
		},
	}
}

func TestPochaController_GetStatusInfo(t *testing.T) {
	env := setupControllerTest(t, testEmail, model.RoleUser)

	w := env.do(t, http.MethodGet, "/api/v2/pocha/status-info/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v2/pocha/status-info/?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	now := time.Now().UTC().Format(time.RFC3339)
	w = env.do(t, http.MethodGet, "/api/v2/pocha/status-info/?date="+now, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(env.pocha.ID), body["pochaID"])
	assert.Equal(t, true, body["ongoing"])

	later := env.pocha.EndDate.Add(time.Minute).Format(time.RFC3339)
	w = env.do(t, http.MethodGet, "/api/v2/pocha/status-info/?date="+later, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPochaController_CreateAndUpdate(t *testing.T) {
	env := setupControllerTest(t, "admin@umich.edu", model.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/v2/pocha/", newPochaBody("가을 포차"))
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := uint(created["pochaID"].(float64))

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v2/pocha/%d/", id), newPochaBody("가을 포차 2일차"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "가을 포차 2일차", decode(t, w)["title"])

	w = env.do(t, http.MethodPut, "/api/v2/pocha/9999/", newPochaBody("없는 포차"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPochaController_CreateValidation(t *testing.T) {
	env := setupControllerTest(t, "admin@umich.edu", model.RoleAdmin)

	tests := []struct {
		name      string
		mutate    func(body map[string]interface{})
		wantCode  string
		wantField string
	}{
		{"blank title", func(b map[string]interface{}) { b["title"] = " " }, apperrors.ValidationInvalidInput, "title"},
		{"end before start", func(b map[string]interface{}) { b["endDate"] = b["startDate"] }, apperrors.PochaInvalidDates, "startDate"},
		{"missing dates", func(b map[string]interface{}) { delete(b, "endDate") }, apperrors.PochaInvalidDates, "startDate/endDate"},
		{"no menus", func(b map[string]interface{}) { b["menus"] = []map[string]interface{}{} }, apperrors.PochaMenuRequired, "menus"},
		{"menu without price", func(b map[string]interface{}) {
			b["menus"] = []map[string]interface{}{{"nameKor": "김치전", "nameEng": "Kimchi Pancake", "category": "Food", "stock": 1, "isImmediatePrep": false}}
		}, apperrors.MenuInvalidField, "menus[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newPochaBody("가을 포차")
			tt.mutate(body)

			w := env.do(t, http.MethodPost, "/api/v2/pocha/", body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode(t, w)
			assert.Equal(t, tt.wantCode, resp["error"])
			assert.Contains(t, resp["message"], tt.wantField)
			fields, ok := resp["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestPochaController_GetMenu(t *testing.T) {
	env := setupControllerTest(t, testEmail, model.RoleUser)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/v2/pocha/menu/%d/", env.pocha.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"Food"`)
	assert.Contains(t, w.Body.String(), `"menusList"`)

	w = env.do(t, http.MethodGet, "/api/v2/pocha/menu/9999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

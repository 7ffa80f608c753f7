package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoestore-service/internal/models"
)

func TestCreateBrandDuplicateCode(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/admin/brands", jsonBody{"code": " NIKE ", "name": "Nike"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "NIKE", data["code"])

	w = env.doJSON(t, http.MethodPost, "/api/v1/admin/brands", jsonBody{"code": "NIKE", "name": "Nike again"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrCodeDuplicateCode, errorCode(t, w))

	w = env.doJSON(t, http.MethodPost, "/api/v1/admin/brands", jsonBody{"code": "  ", "name": "Blank"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListBrandsPaginates(t *testing.T) {
	env := newTestEnv(t)
	for _, code := range []string{"ADIDAS", "NIKE", "VANS"} {
		w := env.doJSON(t, http.MethodPost, "/api/v1/admin/brands", jsonBody{"code": code, "name": code})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/brands?page=2&limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["totalPages"])
	assert.Equal(t, false, pagination["hasNext"])
}

func TestDeleteBrandInUse(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/admin/products", jsonBody{
		"code": "PRD-1", "name": "Old Skool", "price": "100", "categoryCode": "CASUAL", "brandCode": "VANS",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	brand, err := env.catalog.FindBrandByCode(t.Context(), "VANS")
	require.NoError(t, err)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/brands/"+brand.ID.String(), nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrCodeInUse, errorCode(t, w))

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/brands/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeInvalidID, errorCode(t, w))
}

func TestCreateColorValidatesHex(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/admin/colors", jsonBody{"code": "RED", "name": "Red", "hexCode": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeValidation, errorCode(t, w))

	w = env.doJSON(t, http.MethodPost, "/api/v1/admin/colors", jsonBody{"code": "RED", "name": "Red", "hexCode": "#ff0000"})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "#FF0000", data["hexCode"])
}

func TestCreateSizeValidatesCm(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/admin/sizes", jsonBody{"code": "37", "sizeLabel": "EU 37", "cmValue": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/v1/admin/sizes", jsonBody{"code": "37", "sizeLabel": "EU 37", "cmValue": "23.5"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateSizeTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/admin/size-templates", jsonBody{
		"code": "EU-SMALL", "name": "EU small", "sizeCodes": []string{"37", "99"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeReferenceNotFound, errorCode(t, w))

	w = env.doJSON(t, http.MethodPost, "/api/v1/admin/size-templates", jsonBody{
		"code": "EU-SMALL", "name": "EU small", "sizeCodes": []string{"38", "37", "38"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	template, err := env.catalog.FindSizeTemplateByCode(t.Context(), "EU-SMALL")
	require.NoError(t, err)
	assert.Len(t, template.Sizes, 2)
	assert.Equal(t, int64(2), env.count(t, &models.Size{}))
}

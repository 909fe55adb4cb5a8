package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoryCreateAndConflict проверяет уникальность имени без учета регистра.
func TestCategoryCreateAndConflict(t *testing.T) {
	f := newFixture()
	_, categories, _, _ := f.stores()
	h := NewCategoryHandler(categories)

	rec := request(t, h.Create, http.MethodPost, "/api/categories", map[string]string{"name": "  Eating   Out "}, &f.user)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Eating Out", decode[CategoryResponse](t, rec).Name)

	rec = request(t, h.Create, http.MethodPost, "/api/categories", map[string]string{"name": "eating out"}, &f.user)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = request(t, h.Create, http.MethodPost, "/api/categories", map[string]string{"name": "   "}, &f.user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category name is required", errorMessage(t, rec))

	rec = request(t, h.Create, http.MethodPost, "/api/categories", map[string]string{"name": strings.Repeat("x", 101)}, &f.user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category name must be at most 100 characters", errorMessage(t, rec))
}

// TestCategoryListFilter проверяет сортировку и фильтр автодополнения.
func TestCategoryListFilter(t *testing.T) {
	f := newFixture()
	f.addCategory("Transit")
	f.addCategory("food")
	f.addCategory("Fuel")
	_, categories, _, _ := f.stores()
	h := NewCategoryHandler(categories)

	rec := request(t, h.List, http.MethodGet, "/api/categories", nil, &f.user)
	require.Equal(t, http.StatusOK, rec.Code)
	names := func(items []CategoryResponse) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Name)
		}
		return out
	}
	assert.Equal(t, []string{"food", "Fuel", "Transit"}, names(decode[[]CategoryResponse](t, rec)))

	rec = request(t, h.List, http.MethodGet, "/api/categories?q=F", nil, &f.user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"food", "Fuel"}, names(decode[[]CategoryResponse](t, rec)))
}

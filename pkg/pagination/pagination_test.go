package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextWithQuery(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParsePageParamsDefaults(t *testing.T) {
	params := ParsePageParams(contextWithQuery(""))

	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultPageSize, params.PageSize)
}

func TestParsePageParamsFromQuery(t *testing.T) {
	params := ParsePageParams(contextWithQuery("page=3&limit=25"))

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.PageSize)
	assert.Equal(t, 50, params.GetOffset())
	assert.Equal(t, 25, params.GetLimit())
}

func TestParsePageParamsInvalidValues(t *testing.T) {
	params := ParsePageParams(contextWithQuery("page=abc&limit=-5"))

	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultPageSize, params.PageSize)
}

func TestParsePageParamsCapsPageSize(t *testing.T) {
	params := ParsePageParams(contextWithQuery("limit=9999"))

	assert.Equal(t, MaxPageSize, params.PageSize)
}

func TestParsePageParamsWithDefault(t *testing.T) {
	params := ParsePageParamsWithDefault(contextWithQuery(""), 20)

	assert.Equal(t, 20, params.PageSize)
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 35)

	assert.Equal(t, int64(35), info.Total)
	assert.Equal(t, 4, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	last := NewPageInfo(4, 10, 35)
	assert.False(t, last.HasNext)

	empty := NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

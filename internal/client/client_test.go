package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marklens/internal/client"
	"marklens/internal/config"
	"marklens/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFakeService(t *testing.T, handler func(*gin.Engine)) client.Client {
	t.Helper()
	engine := gin.New()
	handler(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return client.New(&config.APIConfig{BaseURL: srv.URL}, nil)
}

func jpegFile(name string) domain.File {
	return domain.File{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        4,
		Data:        []byte{0xFF, 0xD8, 0xFF, 0xE0},
	}
}

func TestSubmitSingle_Success(t *testing.T) {
	var calls int
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract", func(ctx *gin.Context) {
			calls++
			file, err := ctx.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "marksheet.jpg", file.Filename)

			ctx.JSON(http.StatusOK, gin.H{
				"data": gin.H{
					"subjects": []gin.H{{
						"subject":        gin.H{"value": "Math", "confidence": 0.95},
						"obtained_marks": gin.H{"value": 88, "confidence": 0.9},
						"max_marks":      gin.H{"value": 100, "confidence": 1.0},
						"grade":          gin.H{"value": "A", "confidence": 0.85},
					}},
				},
			})
		})
	})

	res, err := c.SubmitSingle(context.Background(), jpegFile("marksheet.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, res.Subjects, 1)
	assert.NotEmpty(t, res.Raw())
}

func TestSubmitSingle_ServerErrorWithDetail(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract", func(ctx *gin.Context) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "model timeout"})
		})
	})

	_, err := c.SubmitSingle(context.Background(), jpegFile("m.jpg"))
	require.Error(t, err)

	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, "Extraction failed: model timeout", terr.Message)
}

func TestSubmitSingle_ErrorBodyNotJSON(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract", func(ctx *gin.Context) {
			ctx.String(http.StatusBadGateway, "<html>bad gateway</html>")
		})
	})

	_, err := c.SubmitSingle(context.Background(), jpegFile("m.jpg"))
	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "Extraction failed: request failed with status 502", terr.Message)
}

func TestSubmitSingle_NetworkFailure(t *testing.T) {
	c := client.New(&config.APIConfig{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := c.SubmitSingle(context.Background(), jpegFile("m.jpg"))
	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 0, terr.StatusCode)
	assert.Contains(t, terr.Message, "Extraction failed")
}

func TestSubmitSingle_EmptyData(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"data": nil})
		})
	})

	res, err := c.SubmitSingle(context.Background(), jpegFile("m.jpg"))
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

func TestSubmitBatch_Success(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract/batch", func(ctx *gin.Context) {
			form, err := ctx.MultipartForm()
			require.NoError(t, err)
			require.Len(t, form.File["files"], 3)

			ctx.JSON(http.StatusOK, gin.H{
				"results": []gin.H{
					{"filename": "a.jpg", "success": true, "data": gin.H{
						"subjects": []gin.H{{"subject": gin.H{"value": "Math", "confidence": 0.9}}},
					}},
					{"filename": "b.jpg", "success": true, "data": gin.H{}},
					{"filename": "c.jpg", "success": false, "error": "unreadable scan"},
				},
			})
		})
	})

	files := []domain.File{jpegFile("a.jpg"), jpegFile("b.jpg"), jpegFile("c.jpg")}
	results, err := c.SubmitBatch(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, "a.jpg", results[0].Filename)
	require.NotNil(t, results[0].Data)
	assert.Len(t, results[0].Data.Subjects, 1)

	assert.False(t, results[2].Success)
	assert.Equal(t, "unreadable scan", results[2].Error)
	assert.Nil(t, results[2].Data)
}

func TestSubmitBatch_NullResults(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract/batch", func(ctx *gin.Context) {
			ctx.Data(http.StatusOK, "application/json", []byte(`{"results": null}`))
		})
	})

	results, err := c.SubmitBatch(context.Background(), []domain.File{jpegFile("a.jpg")})
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSubmitBatch_ServerError(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract/batch", func(ctx *gin.Context) {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": "too many files"})
		})
	})

	_, err := c.SubmitBatch(context.Background(), []domain.File{jpegFile("a.jpg")})
	var terr *domain.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "Extraction failed: too many files", terr.Message)
}

func TestSubmitSingle_PartCarriesContentType(t *testing.T) {
	c := newFakeService(t, func(e *gin.Engine) {
		e.POST("/extract", func(ctx *gin.Context) {
			file, err := ctx.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "application/pdf", file.Header.Get("Content-Type"))
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{}})
		})
	})

	f := domain.File{Name: "m.pdf", ContentType: "application/pdf", Size: 9, Data: []byte("%PDF-1.4\n")}
	_, err := c.SubmitSingle(context.Background(), f)
	require.NoError(t, err)
}

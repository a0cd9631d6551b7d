package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructorsReachSentinels(t *testing.T) {
	cause := errors.New("disk full")

	assert.ErrorIs(t, NotFound("estimate", "e1"), ErrNotFound)
	assert.ErrorIs(t, Validation("not draft"), ErrValidation)
	assert.ErrorIs(t, InvalidInput("bad"), ErrInvalidInput)
	assert.ErrorIs(t, NotImplemented("room patterns"), ErrNotImplemented)

	ext := Extraction("read pdf", cause)
	assert.ErrorIs(t, ext, ErrExtraction)
	assert.ErrorIs(t, ext, cause)

	per := Persistence("put blueprint", cause)
	assert.ErrorIs(t, per, ErrPersistence)
	assert.ErrorIs(t, per, cause)
	assert.NotErrorIs(t, per, ErrNotFound)

	var appErr *AppError
	require.ErrorAs(t, WrapError(NotFound("project", "p1"), "load"), &appErr)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Contains(t, appErr.Error(), `project "p1" not found`)
}

func TestWrapErrorNil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "anything"))
}

func TestLoadConfigDefaultsAndValidate(t *testing.T) {
	t.Setenv("DB_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("QUEUE_WORKERS", "3")
	t.Setenv("CATALOG_CACHE_TTL", "90s")

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Queue.Workers)
	assert.Equal(t, "poppler", cfg.Extractor.Engine)
	assert.Equal(t, "local", cfg.Blob.Driver)
	assert.Equal(t, 90.0, cfg.Cache.TTL.Seconds())
	assert.Zero(t, cfg.Extractor.MaxPages)
	require.NoError(t, cfg.Validate())

	cfg.Extractor.MaxPages = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
	cfg.Extractor.MaxPages = 0

	cfg.Blob.Driver = "s3"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg.Blob.Bucket = "plans"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("projectId", "", Required).
		Field("hourlyRate", -1.0, NonNegative).
		Field("count", 0, Positive).
		Field("name", "a very long name", MaxLength(4))

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 4)

	err := ValidateAndReturnError(v)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, ValidateInput(v), ErrInvalidInput)

	ok := NewValidator().Field("id", "8a0e3c0c-2f0b-4b38-9d7b-1f4f0c2a9a11", Required, UUID)
	assert.NoError(t, ValidateAndReturnError(ok))
}

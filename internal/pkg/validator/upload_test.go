package validator

import (
	"mime/multipart"
	"testing"

	"github.com/futig/ragchat-backend/internal/config"
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *Validator {
	return NewFileValidator(config.FileUploadConfig{
		MaxFileSize:  1024,
		MaxTotalSize: 2000,
		MaxFileCount: 2,
	})
}

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateUpload(t *testing.T) {
	t.Run("Accepts supported files within limits", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload([]*multipart.FileHeader{
			header("plan.txt", 500),
			header("faq.pdf", 900),
		})

		require.NoError(t, err)
	})

	t.Run("Rejects empty upload", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload(nil)

		assert.ErrorIs(t, err, entity.ErrMissingField)
	})

	t.Run("Rejects unsupported extension", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload([]*multipart.FileHeader{header("virus.exe", 10)})

		assert.ErrorIs(t, err, entity.ErrInvalidExtension)
	})

	t.Run("Rejects oversized file", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload([]*multipart.FileHeader{header("big.txt", 4096)})

		assert.ErrorIs(t, err, entity.ErrFileTooLarge)
	})

	t.Run("Rejects too many files", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload([]*multipart.FileHeader{
			header("a.txt", 10), header("b.txt", 10), header("c.txt", 10),
		})

		assert.ErrorIs(t, err, entity.ErrTooManyFiles)
	})

	t.Run("Rejects oversized total", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateUpload([]*multipart.FileHeader{
			header("a.txt", 1024), header("b.txt", 1024),
		})

		assert.ErrorIs(t, err, entity.ErrTotalSizeTooLarge)
	})
}

func TestValidateChat(t *testing.T) {
	t.Run("Accepts a plain message", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateChat(&entity.ChatRequest{Message: "hello"})

		require.NoError(t, err)
	})

	t.Run("Rejects blank message", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateChat(&entity.ChatRequest{Message: "   "})

		assert.ErrorIs(t, err, entity.ErrMissingField)
	})

	t.Run("Rejects unknown history role", func(t *testing.T) {
		v := newValidator()

		err := v.ValidateChat(&entity.ChatRequest{
			Message: "hello",
			History: []entity.Message{{Role: "narrator", Content: "once upon a time"}},
		})

		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_plan_v2.txt", SanitizeFilename("../my plan (v2).txt"))
}

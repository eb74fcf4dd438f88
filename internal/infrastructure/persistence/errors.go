package persistence

import (
	"errors"
	"strings"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain sentinels. Unique
// violations arrive as gorm.ErrDuplicatedKey when the dialector translates
// them; the message checks cover raw driver errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return shared.ErrAlreadyExists
	}
	return err
}

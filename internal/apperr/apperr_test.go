package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"delipos/internal/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	require.ErrorIs(t, apperr.FromDB(gorm.ErrRecordNotFound), apperr.ErrNotFound)
	require.ErrorIs(t, apperr.FromDB(errors.New("database is locked")), apperr.ErrStoreBusy)
	require.ErrorIs(t, apperr.FromDB(errors.New("UNIQUE constraint failed: products.name")), apperr.ErrDuplicateName)

	plain := errors.New("disk I/O error")
	require.Equal(t, plain, apperr.FromDB(plain))
	require.Nil(t, apperr.FromDB(nil))
}

func TestKindAndStatusSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("client 3: %w", apperr.ErrOutstandingDebt)
	require.Equal(t, "outstanding_debt", apperr.Kind(err))
	require.Equal(t, http.StatusConflict, apperr.Status(err))

	err = fmt.Errorf("outer: %w", apperr.Validationf("quantity must be greater than 0"))
	require.Equal(t, "validation_error", apperr.Kind(err))
	require.Equal(t, http.StatusBadRequest, apperr.Status(err))

	require.Equal(t, http.StatusNotFound, apperr.Status(apperr.ErrNotFound))
	require.Equal(t, http.StatusInternalServerError, apperr.Status(errors.New("anything else")))
}

package repositories

import (
	"errors"
	"fmt"
	"testing"

	"book-inventory-backend/db/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func TestClassifyGormError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, ErrDuplicateSKU},
		{"translated check", gorm.ErrCheckConstraintViolated, ErrValidation},
		{"raw unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrDuplicateSKU},
		{"raw check violation", &pgconn.PgError{Code: "23514", Message: "chk_inventory_price_sale"}, ErrValidation},
		{"hook validation", &models.ItemValidationError{Problems: []string{"title is required"}}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyGormError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyGormErrorPassesThroughUnknown(t *testing.T) {
	boom := errors.New("connection refused")
	assert.Equal(t, boom, classifyGormError(boom))
}

func TestClassifyMongoError(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	schemaFailure := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}},
	}
	commandFailure := mongo.CommandError{Code: 121, Message: "Document failed validation"}

	assert.NoError(t, classifyMongoError(nil))
	assert.ErrorIs(t, classifyMongoError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, classifyMongoError(duplicate), ErrDuplicateSKU)
	assert.ErrorIs(t, classifyMongoError(schemaFailure), ErrValidation)
	assert.ErrorIs(t, classifyMongoError(commandFailure), ErrValidation)
	assert.ErrorIs(t, classifyMongoError(&models.ItemValidationError{Problems: []string{"x"}}), ErrValidation)
}

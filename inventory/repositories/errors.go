package repositories

import (
	"errors"
	"fmt"

	"book-inventory-backend/db/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	ErrDuplicateSKU = errors.New("sku already exists for this tenant")
	ErrValidation   = errors.New("inventory item failed schema validation")
	ErrNotFound     = errors.New("inventory item not found")
)

const (
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"

	mongoDocumentValidationFailure = 121
)

// classifyGormError maps gorm and PostgreSQL failures onto the repository errors.
func classifyGormError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *models.ItemValidationError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Errorf("%w: %s", ErrValidation, validationErr.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateSKU
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateSKU
		case pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %s", ErrValidation, pgErr.Message)
		}
	}

	return err
}

// classifyMongoError maps driver failures onto the repository errors.
func classifyMongoError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *models.ItemValidationError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Errorf("%w: %s", ErrValidation, validationErr.Error())
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateSKU
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == mongoDocumentValidationFailure {
				return fmt.Errorf("%w: %s", ErrValidation, we.Message)
			}
		}
		if writeErr.WriteConcernError != nil && writeErr.WriteConcernError.Code == mongoDocumentValidationFailure {
			return fmt.Errorf("%w: %s", ErrValidation, writeErr.WriteConcernError.Message)
		}
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == mongoDocumentValidationFailure {
		return fmt.Errorf("%w: %s", ErrValidation, cmdErr.Message)
	}

	return err
}

package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update matched nothing
	// because the document was not in the expected state.
	ErrConflict = errors.New("record not in expected state")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// writeConflictCode is reported when a write races another transaction on
// the same document.
const writeConflictCode = 112

// MapMongoError converts driver errors into the package sentinels.
func MapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	case isWriteConflict(err):
		return ErrConflict
	}
	return err
}

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(writeConflictCode)
}

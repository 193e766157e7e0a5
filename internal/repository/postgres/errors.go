package postgres

import "errors"

var ErrFieldsNotAllowedToUpdate = errors.New("fields are not allowed to update")

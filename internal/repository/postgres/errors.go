package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation = "23505"

	customersEmailKey     = "customers_email_key"
	adminsUsernameKey     = "admins_username_key"
	reservationsSlotTable = "reservations_time_slot_table_number_key"
)

// uniqueConstraint returns the violated constraint name when err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

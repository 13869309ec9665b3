// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. ErrSeatTaken signals
// that a seat was sold to someone else between the shopper's last look at
// the seat map and checkout, while ErrSoldOut means the session counter
// would go below zero.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSeatTaken is returned when a seat of the session has already been sold.
// Handlers should translate this into an HTTP 409 response.
var ErrSeatTaken = errors.New("seat already sold")

// ErrSoldOut is returned when a session has fewer available seats than a
// checkout needs. Handlers should translate this into an HTTP 409 response.
var ErrSoldOut = errors.New("session sold out")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

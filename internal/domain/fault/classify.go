package fault

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/domain/transfer"
)

// sqlstateKinds maps PostgreSQL SQLSTATE codes to domain error kinds.
var sqlstateKinds = map[string]Kind{
	// Integrity constraint violations
	"23505": KindDuplicateKey, // unique_violation
	"23503": KindNotFound,     // foreign_key_violation: referenced account absent
	"23502": KindValidation,   // not_null_violation
	"23514": KindValidation,   // check_violation

	// Concurrency
	"55P03": KindConflict, // lock_not_available (lock_timeout exceeded)
	"40001": KindConflict, // serialization_failure
	"40P01": KindConflict, // deadlock_detected

	// Connectivity / capacity
	"08000": KindUnavailable, // connection_exception
	"08003": KindUnavailable, // connection_does_not_exist
	"08006": KindUnavailable, // connection_failure
	"53300": KindUnavailable, // too_many_connections
	"57P01": KindUnavailable, // admin_shutdown
	"57P02": KindUnavailable, // crash_shutdown
	"57P03": KindUnavailable, // cannot_connect_now
}

// sqlstateMessages provides caller-safe messages per kind for table-driven matches.
var sqlstateMessages = map[Kind]string{
	KindDuplicateKey: "a record with the same key already exists",
	KindNotFound:     "referenced record not found",
	KindValidation:   "the request violates a data constraint",
	KindConflict:     "the record was modified concurrently, retry the operation",
	KindUnavailable:  "the storage backend is unavailable",
}

// markerPrefix delimits application-raised error codes embedded in storage messages,
// e.g. "SPAY-20001: insufficient balance" from a RAISE EXCEPTION in a procedure.
const markerPrefix = "SPAY-2"

var markerKinds = map[string]Kind{
	"SPAY-20001": KindInsufficientFunds,
	"SPAY-20002": KindNotFound,
	"SPAY-20003": KindConflict,
}

// Classify maps any failure surfaced by the storage layer onto the domain taxonomy.
// Already-classified errors pass through unchanged; domain-typed errors from the
// repositories map to their kinds; raw provider errors go through the SQLSTATE table
// and the marker scan. Anything unrecognized becomes Internal with a generic message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	var accNotFound account.ErrAccountNotFound
	if errors.As(err, &accNotFound) {
		return Wrap(KindNotFound, "account not found", err)
	}
	var dupNumber account.ErrDuplicateAccountNumber
	if errors.As(err, &dupNumber) {
		return Wrap(KindDuplicateKey, "an account with this account number already exists", err)
	}
	var concurrent account.ErrConcurrentModification
	if errors.As(err, &concurrent) {
		return Wrap(KindConflict, "the account was modified concurrently, retry the operation", err)
	}
	var nonZero account.ErrBalanceNotZero
	if errors.As(err, &nonZero) {
		return Wrap(KindConflict, "the account balance must be zero", err)
	}
	var txnNotFound transfer.ErrTransactionNotFound
	if errors.As(err, &txnNotFound) {
		return Wrap(KindNotFound, "transaction not found", err)
	}
	var dupRef transfer.ErrDuplicateReferenceNo
	if errors.As(err, &dupRef) {
		return Wrap(KindDuplicateKey, "a transaction with this reference number already exists", err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindNotFound, "record not found", err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindUnavailable, "the operation was interrupted, retry the operation", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// raise_exception: scan for an embedded application marker
		if pgErr.Code == "P0001" {
			if kind, msg, ok := scanMarker(pgErr.Message); ok {
				return Wrap(kind, msg, err)
			}
			return Wrap(KindInternal, "a storage operation failed", err)
		}
		if kind, ok := sqlstateKinds[pgErr.Code]; ok {
			return Wrap(kind, sqlstateMessages[kind], err)
		}
		return Wrap(KindInternal, "a storage operation failed", err)
	}

	return Wrap(KindInternal, "an internal error occurred", err)
}

// scanMarker extracts an application error marker of the form "SPAY-2xxxx: message"
// from a raw storage message. The human message after the delimiter is considered
// safe to expose: it was authored by the application, not the provider.
func scanMarker(message string) (Kind, string, bool) {
	start := strings.Index(message, markerPrefix)
	if start < 0 {
		return "", "", false
	}

	rest := message[start:]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}

	code, msg, found := strings.Cut(rest, ":")
	code = strings.TrimSpace(code)
	kind, ok := markerKinds[code]
	if !ok {
		return "", "", false
	}

	msg = strings.TrimSpace(msg)
	if !found || msg == "" {
		msg = sqlstateMessages[kind]
		if msg == "" {
			msg = "a storage operation failed"
		}
	}
	return kind, msg, true
}

package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	numFields    = 6
	colID        = 0
	colName      = 1
	colSalary    = 2
	colBalance   = 3
	colCreatedAt = 4
	colDeleted   = 5
)

var header = []string{"account_id", "name", "salary", "balance", "created_at", "is_deleted"}

// ReadAccounts reads the full account list from CSV.
func ReadAccounts(r io.Reader) ([]domain.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []domain.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes the full account list as CSV, header first.
func WriteAccounts(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct domain.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.AccountID
	row[colName] = acct.Name
	row[colSalary] = acct.Salary.String()
	row[colBalance] = acct.Balance.String()
	row[colCreatedAt] = acct.CreatedAt.Format(time.RFC3339Nano)
	row[colDeleted] = strconv.FormatBool(acct.IsDeleted)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (domain.Account, error) {
	if len(record) != numFields {
		return domain.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	salary, err := decimal.NewFromString(record[colSalary])
	if err != nil {
		return domain.Account{}, fmt.Errorf("parsing salary %q: %w", record[colSalary], err)
	}

	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return domain.Account{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, record[colCreatedAt])
	if err != nil {
		return domain.Account{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	deleted, err := strconv.ParseBool(record[colDeleted])
	if err != nil {
		return domain.Account{}, fmt.Errorf("parsing is_deleted %q: %w", record[colDeleted], err)
	}

	return domain.Account{
		AccountID: record[colID],
		Name:      record[colName],
		Salary:    salary,
		Balance:   balance,
		CreatedAt: createdAt,
		IsDeleted: deleted,
	}, nil
}

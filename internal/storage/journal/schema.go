package journal

import (
	"strconv"
	"strings"
)

// dialect covers the differences between the supported SQL engines.
type dialect struct {
	driver   string
	blob     string
	numbered bool
}

var dialects = map[string]dialect{
	DriverSQLite:   {driver: "sqlite", blob: "BLOB"},
	DriverPostgres: {driver: "postgres", blob: "BYTEA", numbered: true},
}

// rebind rewrites ? placeholders to $n for engines that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			tx_hash     ` + d.blob + ` PRIMARY KEY,
			tx_type     VARCHAR(32) NOT NULL,
			account     VARCHAR(64) NOT NULL,
			sequence    BIGINT NOT NULL,
			result      VARCHAR(48) NOT NULL,
			applied     BOOLEAN NOT NULL,
			applied_at  BIGINT NOT NULL,
			raw_txn     ` + d.blob + `,
			txn_meta    ` + d.blob + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account, applied_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_applied_at ON transactions(applied_at)`,
	}
}

// upsertTransaction replaces the outcome of a rejected attempt. Once a
// transaction is applied its record is final.
const upsertTransaction = `INSERT INTO transactions
	(tx_hash, tx_type, account, sequence, result, applied, applied_at, raw_txn, txn_meta)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (tx_hash) DO UPDATE SET
		result = excluded.result,
		applied = excluded.applied,
		applied_at = excluded.applied_at,
		txn_meta = excluded.txn_meta
	WHERE NOT transactions.applied`

const selectColumns = `tx_hash, tx_type, account, sequence, result, applied, applied_at, raw_txn, txn_meta`

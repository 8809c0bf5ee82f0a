package clickhouse

import "fmt"

// DefaultTable stores one row per committed price snapshot.
const DefaultTable = "price_snapshots"

// PriceSnapshotSchema returns the DDL for the price snapshot table.
// ORDER BY (instrument_id, captured_at) keeps both the magnitude scan and the
// post-anchor range read on the primary index.
func PriceSnapshotSchema(database, table string) []string {
	if table == "" {
		table = DefaultTable
	}
	stmts := make([]string, 0, 2)
	qualified := table
	if database != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database))
		qualified = database + "." + table
	}
	stmts = append(stmts, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            instrument_id String,
            price         Decimal(18, 4),
            change_pct    Float64,
            volume        Int64,
            captured_at   DateTime64(3, 'UTC')
        )
        ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(captured_at)
        ORDER BY (instrument_id, captured_at)
    `, qualified))
	return stmts
}

// QualifiedTable joins database and table the way queries reference them.
func QualifiedTable(database, table string) string {
	if table == "" {
		table = DefaultTable
	}
	if database == "" {
		return table
	}
	return database + "." + table
}

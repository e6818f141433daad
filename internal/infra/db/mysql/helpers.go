package mysql

import "database/sql"

// nullable maps "" to NULL for the optional metadata columns
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

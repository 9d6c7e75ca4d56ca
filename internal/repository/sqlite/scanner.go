package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanToDo scans a single todo from a database row
func ScanToDo(scanner Scanner) (*ToDoRow, error) {
	row := &ToDoRow{}
	err := scanner.Scan(
		&row.ID,
		&row.Title,
		&row.Description,
		&row.Expiry,
		&row.PercentComplete,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ScanToDos scans multiple todos from database rows
func ScanToDos(rows Rows) ([]*ToDoRow, error) {
	var result []*ToDoRow
	for rows.Next() {
		row, err := ScanToDo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

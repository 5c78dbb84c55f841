package embeddings

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Encode serialises a vector as a JSON array of numbers for the notes
// embedding column.
func Encode(v []float32) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode embedding: %w", err)
	}
	return string(data), nil
}

// Decode reverses Encode. A NULL column decodes to a nil vector.
func Decode(col sql.NullString) ([]float32, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(col.String), &v); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return v, nil
}

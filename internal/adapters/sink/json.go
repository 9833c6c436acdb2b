package sink

import (
	"encoding/json"
	"io"
	"os"

	"trustharvest/internal/domain"
)

// WriteJSON writes the collection as a JSON array. Absent fields serialize
// as null; timestamps as RFC 3339 strings.
func WriteJSON(w io.Writer, rs []domain.Review) error {
	if rs == nil {
		rs = []domain.Review{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// WriteJSONFile writes the collection to path, creating or truncating it.
func WriteJSONFile(path string, rs []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

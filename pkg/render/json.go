package render

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/renoma/pkg/scan"
)

// JSON writes res as indented JSON.
func JSON(w io.Writer, res *scan.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

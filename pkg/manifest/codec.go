package manifest

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cubic-dev/ui/internal/errors"
	"github.com/cubic-dev/ui/pkg/endpoint"
)

// Format is a manifest encoding.
type Format int

const (
	// JSON encodes manifests as a JSON array.
	JSON Format = iota
	// YAML encodes manifests as a YAML sequence.
	YAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	default:
		return "json"
	}
}

// FormatFor picks the format from a file name's extension.
// Unknown extensions are JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// ParseFormat parses "json" or "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return JSON, errors.New("E130").WithDetail("unknown manifest format " + s).
			WithSuggestion("Use json or yaml")
	}
}

// Decode parses a manifest. Empty input is an empty manifest.
func Decode(data []byte, format Format) ([]endpoint.Endpoint, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var eps []endpoint.Endpoint
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &eps)
	default:
		err = json.Unmarshal(data, &eps)
	}
	if err != nil {
		return nil, errors.New("E130").WithDetail("decoding " + format.String()).Wrap(err)
	}

	for i, ep := range eps {
		if ep.Route == "" {
			return nil, errors.New("E130").WithDetail(fmt.Sprintf("entry %d has no route", i))
		}
	}
	return eps, nil
}

// Encode serializes endpoints. A nil list encodes as an empty manifest.
func Encode(eps []endpoint.Endpoint, format Format) ([]byte, error) {
	if eps == nil {
		eps = []endpoint.Endpoint{}
	}

	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(eps); err != nil {
			return nil, errors.New("E131").WithDetail("encoding yaml").Wrap(err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.New("E131").WithDetail("encoding yaml").Wrap(err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(eps, "", "  ")
		if err != nil {
			return nil, errors.New("E131").WithDetail("encoding json").Wrap(err)
		}
		return append(data, '\n'), nil
	}
}

// syntaxOffset returns the byte offset of a JSON syntax error in err.
func syntaxOffset(err error) (int64, bool) {
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return syntaxErr.Offset, true
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return typeErr.Offset, true
	}
	return 0, false
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/itchyny/gojq"
	"github.com/kaptinlin/jsonrepair"
)

// DecodeOptions control Decode.
type DecodeOptions struct {
	// TextQuery is a jq expression that extracts the text from each record.
	// It must yield a string or null. Empty reads the "text" field.
	TextQuery string

	// Repair retries malformed JSON through jsonrepair before failing.
	Repair bool

	Logger *slog.Logger
}

func (o *DecodeOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Decode reads notes from a JSON array or from JSON Lines.
//
// Each record is an object with an optional "id" and an optional "text", or
// a bare string which is taken as the text. Records without an id get a
// random UUID. Any malformed record fails the whole decode with an error
// wrapping ErrDecode.
func Decode(r io.Reader, opts DecodeOptions) ([]Note, error) {
	var query *gojq.Query
	if opts.TextQuery != "" {
		q, err := gojq.Parse(opts.TextQuery)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid text query %q: %w", ErrDecode, opts.TextQuery, err)
		}
		query = q
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	records, err := splitRecords(data, &opts)
	if err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(records))
	for i, rec := range records {
		n, err := toNote(rec, query)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrDecode, i, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// splitRecords parses data as a JSON array or as one JSON value per line.
func splitRecords(data []byte, opts *DecodeOptions) ([]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []any
		if err := unmarshal(trimmed, &records, opts); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return records, nil
	}

	var records []any
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec any
		if err := unmarshal(b, &rec, opts); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrDecode, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return records, nil
}

// unmarshal decodes data, retrying through jsonrepair on a syntax error when
// opts.Repair is set.
func unmarshal(data []byte, v any, opts *DecodeOptions) error {
	err := json.Unmarshal(data, v)
	if err == nil || !opts.Repair {
		return err
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return fmt.Errorf("%w (repair failed: %v)", err, rerr)
	}
	opts.logger().Warn("repaired malformed corpus JSON", "offset", syntaxErr.Offset)
	return json.Unmarshal([]byte(fixed), v)
}

func toNote(rec any, query *gojq.Query) (Note, error) {
	var n Note
	obj, isObj := rec.(map[string]any)
	if isObj {
		if id, ok := obj["id"].(string); ok {
			n.ID = id
		}
		if at, ok := obj["createdAt"].(string); ok {
			n.CreatedAt = at
		}
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	var text any
	switch {
	case query != nil:
		v, err := runQuery(query, rec)
		if err != nil {
			return Note{}, err
		}
		text = v
	case isObj:
		text = obj["text"]
	default:
		text = rec
	}

	switch t := text.(type) {
	case nil:
	case string:
		n.Text = &t
	default:
		return Note{}, fmt.Errorf("text is %T, want string or null", text)
	}
	return n, nil
}

// runQuery returns the first value produced by q, or nil when it produces
// none.
func runQuery(q *gojq.Query, input any) (any, error) {
	it := q.Run(input)
	v, ok := it.Next()
	if !ok {
		return nil, nil
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("text query: %w", err)
	}
	return v, nil
}

package modelfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/White-Green/MkMarkov/pkg/chain"
)

// Variant names of the markov_data.json layout.
var kindNames = map[chain.Kind]string{
	chain.KindStart: "Start",
	chain.KindWord:  "String",
	chain.KindBody:  "FunctionStart",
	chain.KindCall:  "Function",
	chain.KindEnd:   "End",
}

var stateNames = map[chain.ParamState]string{
	chain.ParamAbsent:    "None",
	chain.ParamNoValue:   "ValueIsNull",
	chain.ParamWithValue: "Value",
}

type jsonModel struct {
	TokenMap         [][]json.RawMessage `json:"token_map"`
	FunctionParamMap [][]json.RawMessage `json:"function_param_map"`
}

func encodeJSON(w io.Writer, m *chain.Model) error {
	out := jsonModel{
		TokenMap:         make([][]json.RawMessage, 0, len(m.Transitions())),
		FunctionParamMap: make([][]json.RawMessage, 0, len(m.Params())),
	}
	for _, t := range m.Transitions() {
		row, err := rawRow(tokenJSON(t.From), tokenJSON(t.To), t.Count)
		if err != nil {
			return err
		}
		out.TokenMap = append(out.TokenMap, row)
	}
	for _, p := range m.Params() {
		row, err := rawRow(p.Function, p.Key, valueJSON(p.Value), p.Count)
		if err != nil {
			return err
		}
		out.FunctionParamMap = append(out.FunctionParamMap, row)
	}
	return json.NewEncoder(w).Encode(out)
}

func rawRow(cols ...any) ([]json.RawMessage, error) {
	row := make([]json.RawMessage, len(cols))
	for i, c := range cols {
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		row[i] = b
	}
	return row, nil
}

// tokenJSON renders unit variants as a bare string and the others as a
// single-key object.
func tokenJSON(t chain.Token) any {
	name := kindNames[t.Kind]
	if t.Kind == chain.KindStart || t.Kind == chain.KindEnd {
		return name
	}
	return map[string]string{name: t.Text}
}

func valueJSON(v chain.ParamValue) any {
	name := stateNames[v.State]
	if v.State != chain.ParamWithValue {
		return name
	}
	return map[string]string{name: v.Text}
}

// variant decodes an externally tagged enum value.
func variant(raw json.RawMessage) (name, text string, hasText bool, err error) {
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, "", false, nil
	}
	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", "", false, fmt.Errorf("invalid variant %s", raw)
	}
	if len(obj) != 1 {
		return "", "", false, fmt.Errorf("invalid variant %s", raw)
	}
	for k, v := range obj {
		name, text = k, v
	}
	return name, text, true, nil
}

func parseToken(raw json.RawMessage) (chain.Token, error) {
	name, text, hasText, err := variant(raw)
	if err != nil {
		return chain.Token{}, err
	}
	for k, n := range kindNames {
		if n != name {
			continue
		}
		unit := k == chain.KindStart || k == chain.KindEnd
		if unit == hasText {
			break
		}
		return chain.Token{Kind: k, Text: text}, nil
	}
	return chain.Token{}, fmt.Errorf("invalid token %s", raw)
}

func parseValue(raw json.RawMessage) (chain.ParamValue, error) {
	name, text, hasText, err := variant(raw)
	if err != nil {
		return chain.ParamValue{}, err
	}
	for s, n := range stateNames {
		if n != name {
			continue
		}
		if (s == chain.ParamWithValue) != hasText {
			break
		}
		return chain.ParamValue{State: s, Text: text}, nil
	}
	return chain.ParamValue{}, fmt.Errorf("invalid parameter value %s", raw)
}

func decodeJSON(r io.Reader) (*chain.Model, error) {
	var in jsonModel
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}

	transitions := make([]chain.Transition, 0, len(in.TokenMap))
	for i, row := range in.TokenMap {
		if len(row) != 3 {
			return nil, fmt.Errorf("token_map[%d]: want 3 columns, got %d", i, len(row))
		}
		from, err := parseToken(row[0])
		if err != nil {
			return nil, fmt.Errorf("token_map[%d]: %w", i, err)
		}
		to, err := parseToken(row[1])
		if err != nil {
			return nil, fmt.Errorf("token_map[%d]: %w", i, err)
		}
		var count uint64
		if err := json.Unmarshal(row[2], &count); err != nil {
			return nil, fmt.Errorf("token_map[%d]: count: %w", i, err)
		}
		transitions = append(transitions, chain.Transition{From: from, To: to, Count: count})
	}

	params := make([]chain.ParamCount, 0, len(in.FunctionParamMap))
	for i, row := range in.FunctionParamMap {
		if len(row) != 4 {
			return nil, fmt.Errorf("function_param_map[%d]: want 4 columns, got %d", i, len(row))
		}
		var p chain.ParamCount
		if err := json.Unmarshal(row[0], &p.Function); err != nil {
			return nil, fmt.Errorf("function_param_map[%d]: function: %w", i, err)
		}
		if err := json.Unmarshal(row[1], &p.Key); err != nil {
			return nil, fmt.Errorf("function_param_map[%d]: key: %w", i, err)
		}
		v, err := parseValue(row[2])
		if err != nil {
			return nil, fmt.Errorf("function_param_map[%d]: %w", i, err)
		}
		p.Value = v
		if err := json.Unmarshal(row[3], &p.Count); err != nil {
			return nil, fmt.Errorf("function_param_map[%d]: count: %w", i, err)
		}
		params = append(params, p)
	}
	return chain.NewModel(transitions, params), nil
}

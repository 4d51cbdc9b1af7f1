package modelfile

import (
	"fmt"

	"github.com/White-Green/MkMarkov/pkg/chain"
)

// wireVersion is bumped on incompatible msgpack layout changes.
const wireVersion = 1

type wireModel struct {
	Version     int              `msgpack:"v"`
	Transitions []wireTransition `msgpack:"t"`
	Params      []wireParam      `msgpack:"p"`
}

type wireTransition struct {
	_msgpack struct{} `msgpack:",as_array"`

	FromKind chain.Kind
	FromText string
	ToKind   chain.Kind
	ToText   string
	Count    uint64
}

type wireParam struct {
	_msgpack struct{} `msgpack:",as_array"`

	Function string
	Key      string
	State    chain.ParamState
	Value    string
	Count    uint64
}

func toWire(m *chain.Model) wireModel {
	wm := wireModel{Version: wireVersion}
	for _, t := range m.Transitions() {
		wm.Transitions = append(wm.Transitions, wireTransition{
			FromKind: t.From.Kind, FromText: t.From.Text,
			ToKind: t.To.Kind, ToText: t.To.Text,
			Count: t.Count,
		})
	}
	for _, p := range m.Params() {
		wm.Params = append(wm.Params, wireParam{
			Function: p.Function, Key: p.Key,
			State: p.Value.State, Value: p.Value.Text,
			Count: p.Count,
		})
	}
	return wm
}

func (wm *wireModel) model() (*chain.Model, error) {
	if wm.Version != wireVersion {
		return nil, fmt.Errorf("modelfile: unsupported model version %d", wm.Version)
	}
	transitions := make([]chain.Transition, 0, len(wm.Transitions))
	for _, t := range wm.Transitions {
		if t.FromKind > chain.KindEnd || t.ToKind > chain.KindEnd {
			return nil, fmt.Errorf("modelfile: invalid token kind in transition %d/%d", t.FromKind, t.ToKind)
		}
		transitions = append(transitions, chain.Transition{
			From:  chain.Token{Kind: t.FromKind, Text: t.FromText},
			To:    chain.Token{Kind: t.ToKind, Text: t.ToText},
			Count: t.Count,
		})
	}
	params := make([]chain.ParamCount, 0, len(wm.Params))
	for _, p := range wm.Params {
		if p.State > chain.ParamWithValue {
			return nil, fmt.Errorf("modelfile: invalid parameter state %d", p.State)
		}
		params = append(params, chain.ParamCount{
			Function: p.Function,
			Key:      p.Key,
			Value:    chain.ParamValue{State: p.State, Text: p.Value},
			Count:    p.Count,
		})
	}
	return chain.NewModel(transitions, params), nil
}

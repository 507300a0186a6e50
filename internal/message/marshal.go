package message

import "encoding/json"

// wireValue and wireMessage are the JSON-serializable shadow of Value
// and Message, used by the cache plane (and any future durable store)
// to round-trip a message through a byte-oriented backend. Message's
// own fields stay unexported so callers can't bypass With/Without.
type wireValue struct {
	Kind   Kind        `json:"kind"`
	Bytes  []byte      `json:"bytes,omitempty"`
	Symbol string      `json:"symbol,omitempty"`
	Int    int64       `json:"int,omitempty"`
	Float  float64     `json:"float,omitempty"`
	Bool   bool        `json:"bool,omitempty"`
	Msg    *wireMessage `json:"msg,omitempty"`
	List   []wireValue `json:"list,omitempty"`
}

type wireMessage struct {
	Keys   []string    `json:"keys"`
	Values []wireValue `json:"values"`
}

func toWireValue(v Value) wireValue {
	wv := wireValue{Kind: v.Kind, Bytes: v.Bytes, Symbol: v.Symbol, Int: v.Int, Float: v.Float, Bool: v.Bool}
	if v.Kind == KindMessage && v.Msg != nil {
		wm := toWireMessage(v.Msg)
		wv.Msg = &wm
	}
	if v.Kind == KindList {
		wv.List = make([]wireValue, len(v.List))
		for i, el := range v.List {
			wv.List[i] = toWireValue(el)
		}
	}
	return wv
}

func fromWireValue(wv wireValue) Value {
	v := Value{Kind: wv.Kind, Bytes: wv.Bytes, Symbol: wv.Symbol, Int: wv.Int, Float: wv.Float, Bool: wv.Bool}
	if wv.Kind == KindMessage && wv.Msg != nil {
		v.Msg = fromWireMessage(*wv.Msg)
	}
	if wv.Kind == KindList {
		v.List = make([]Value, len(wv.List))
		for i, el := range wv.List {
			v.List[i] = fromWireValue(el)
		}
	}
	return v
}

func toWireMessage(m *Message) wireMessage {
	wm := wireMessage{Keys: append([]string(nil), m.order...)}
	wm.Values = make([]wireValue, len(wm.Keys))
	for i, k := range wm.Keys {
		wm.Values[i] = toWireValue(m.fields[k])
	}
	return wm
}

func fromWireMessage(wm wireMessage) *Message {
	m := New()
	for i, k := range wm.Keys {
		m = m.With(k, fromWireValue(wm.Values[i]))
	}
	return m
}

// MarshalValue encodes v as JSON, the scalar/list-aware counterpart to
// Message.MarshalBinary — used where an operation's output may be a
// bare scalar rather than a sub-message.
func MarshalValue(v Value) ([]byte, error) {
	return json.Marshal(toWireValue(v))
}

// UnmarshalValue decodes data produced by MarshalValue.
func UnmarshalValue(data []byte) (Value, error) {
	var wv wireValue
	if err := json.Unmarshal(data, &wv); err != nil {
		return Value{}, err
	}
	return fromWireValue(wv), nil
}

// MarshalBinary encodes m as JSON, preserving key order and value
// kinds exactly.
func (m *Message) MarshalBinary() ([]byte, error) {
	if m == nil {
		return json.Marshal(wireMessage{})
	}
	return json.Marshal(toWireMessage(m))
}

// UnmarshalMessage decodes data produced by MarshalBinary back into a
// Message.
func UnmarshalMessage(data []byte) (*Message, error) {
	var wm wireMessage
	if err := json.Unmarshal(data, &wm); err != nil {
		return nil, err
	}
	return fromWireMessage(wm), nil
}

package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type SlotKind int

const (
	SlotNull SlotKind = iota
	SlotBool
	SlotNumber
	SlotString
	// SlotRaw — массивы и объекты как есть, разбирают потребители.
	SlotRaw
)

func (k SlotKind) String() string {
	switch k {
	case SlotNull:
		return "null"
	case SlotBool:
		return "bool"
	case SlotNumber:
		return "number"
	case SlotString:
		return "string"
	case SlotRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// SlotValue — один извлечённый слот. Нулевое значение = null.
// Числа хранятся исходным текстом: сервис их не проверяет и не округляет.
type SlotValue struct {
	kind SlotKind
	b    bool
	num  json.Number
	str  string
	raw  json.RawMessage
}

func NullSlot() SlotValue { return SlotValue{} }
func BoolSlot(b bool) SlotValue { return SlotValue{kind: SlotBool, b: b} }
func StringSlot(s string) SlotValue { return SlotValue{kind: SlotString, str: s} }

func NumberSlot(f float64) SlotValue {
	return SlotValue{kind: SlotNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

func (v SlotValue) Kind() SlotKind { return v.kind }
func (v SlotValue) IsNull() bool { return v.kind == SlotNull }

func (v SlotValue) Bool() (bool, bool) { return v.b, v.kind == SlotBool }
func (v SlotValue) Str() (string, bool) { return v.str, v.kind == SlotString }
func (v SlotValue) Raw() (json.RawMessage, bool) { return v.raw, v.kind == SlotRaw }

// Number — исходный текст числа, без потери точности.
func (v SlotValue) Number() (json.Number, bool) { return v.num, v.kind == SlotNumber }

// Float — ok=false, если это не число или оно не влезает в float64.
func (v SlotValue) Float() (float64, bool) {
	if v.kind != SlotNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v.num), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (v SlotValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case SlotBool:
		return json.Marshal(v.b)
	case SlotNumber:
		return []byte(v.num), nil
	case SlotString:
		return json.Marshal(v.str)
	case SlotRaw:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

func (v *SlotValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("slot: empty value")
	}
	if !json.Valid(data) {
		return fmt.Errorf("slot: invalid json %q", short(string(data)))
	}

	switch data[0] {
	case 'n':
		*v = NullSlot()
	case 't', 'f':
		*v = BoolSlot(data[0] == 't')
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("slot: %w", err)
		}
		*v = StringSlot(s)
	case '[', '{':
		*v = SlotValue{kind: SlotRaw, raw: append(json.RawMessage(nil), data...)}
	default:
		*v = SlotValue{kind: SlotNumber, num: json.Number(data)}
	}
	return nil
}

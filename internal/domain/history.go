package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type HistoryAction string

const (
	ActionCreated            HistoryAction = "created"
	ActionStatusChanged      HistoryAction = "status_changed"
	ActionAssigned           HistoryAction = "assigned"
	ActionPriorityChanged    HistoryAction = "priority_changed"
	ActionProgressUpdated    HistoryAction = "progress_updated"
	ActionDeadlineUpdated    HistoryAction = "deadline_updated"
	ActionCommentAdded       HistoryAction = "comment_added"
	ActionAttachmentAdded    HistoryAction = "attachment_added"
	ActionDescriptionUpdated HistoryAction = "description_updated"
	ActionTitleUpdated       HistoryAction = "title_updated"
)

var historyActions = map[HistoryAction]bool{
	ActionCreated: true, ActionStatusChanged: true, ActionAssigned: true,
	ActionPriorityChanged: true, ActionProgressUpdated: true, ActionDeadlineUpdated: true,
	ActionCommentAdded: true, ActionAttachmentAdded: true, ActionDescriptionUpdated: true,
	ActionTitleUpdated: true,
}

func (a HistoryAction) Valid() bool { return historyActions[a] }

// HistoryEntry is an immutable audit record of one change to a project or task.
type HistoryEntry struct {
	Seq        int64         `json:"seq"`
	ID         string        `json:"id"`
	EntityKind EntityKind    `json:"entityKind"`
	EntityID   string        `json:"entityId"`
	ActorID    string        `json:"userId"`
	ActorName  string        `json:"userName"`
	Action     HistoryAction `json:"action"`
	Field      string        `json:"field,omitempty"`
	OldValue   HistoryValue  `json:"oldValue"`
	NewValue   HistoryValue  `json:"newValue"`
	Detail     string        `json:"details,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// ValueKind tags the variant held by a HistoryValue.
type ValueKind string

const (
	ValueNull   ValueKind = "null"
	ValueString ValueKind = "string"
	ValueNumber ValueKind = "number"
	ValueTime   ValueKind = "time"
	ValueEnum   ValueKind = "enum"
	ValueJSON   ValueKind = "json"
)

// HistoryValue is the old/new value of an audited field. Known field types get
// their own variant; anything else is kept as raw JSON.
type HistoryValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Time time.Time
	Raw  json.RawMessage
}

func NullValue() HistoryValue { return HistoryValue{Kind: ValueNull} }
func StringValue(s string) HistoryValue { return HistoryValue{Kind: ValueString, Str: s} }
func NumberValue(f float64) HistoryValue { return HistoryValue{Kind: ValueNumber, Num: f} }
func IntValue(i int) HistoryValue { return NumberValue(float64(i)) }
func TimeValue(t time.Time) HistoryValue { return HistoryValue{Kind: ValueTime, Time: t.UTC()} }
func EnumValue[T ~string](v T) HistoryValue { return HistoryValue{Kind: ValueEnum, Str: string(v)} }

// OptionalTimeValue maps a nil time to NullValue.
func OptionalTimeValue(t *time.Time) HistoryValue {
	if t == nil {
		return NullValue()
	}
	return TimeValue(*t)
}

// JSONValue encodes an arbitrary value as the generic fallback variant.
func JSONValue(v any) (HistoryValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return HistoryValue{}, fmt.Errorf("encoding history value: %w", err)
	}
	return HistoryValue{Kind: ValueJSON, Raw: raw}, nil
}

func (v HistoryValue) IsNull() bool { return v.Kind == "" || v.Kind == ValueNull }

// String renders the value for humans.
func (v HistoryValue) String() string {
	switch v.Kind {
	case ValueString, ValueEnum:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTime:
		return v.Time.Format(time.RFC3339)
	case ValueJSON:
		return string(v.Raw)
	default:
		return ""
	}
}

type wireValue struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (v HistoryValue) MarshalJSON() ([]byte, error) {
	w := wireValue{Kind: v.Kind}
	var err error
	switch v.Kind {
	case ValueString, ValueEnum:
		w.Value, err = json.Marshal(v.Str)
	case ValueNumber:
		w.Value, err = json.Marshal(v.Num)
	case ValueTime:
		w.Value, err = json.Marshal(v.Time.Format(time.RFC3339Nano))
	case ValueJSON:
		w.Value = v.Raw
	default:
		w.Kind = ValueNull
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (v *HistoryValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = NullValue()
		return nil
	}
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding history value: %w", err)
	}
	out := HistoryValue{Kind: w.Kind}
	switch w.Kind {
	case ValueString, ValueEnum:
		if err := json.Unmarshal(w.Value, &out.Str); err != nil {
			return fmt.Errorf("decoding %s history value: %w", w.Kind, err)
		}
	case ValueNumber:
		if err := json.Unmarshal(w.Value, &out.Num); err != nil {
			return fmt.Errorf("decoding number history value: %w", err)
		}
	case ValueTime:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return fmt.Errorf("decoding time history value: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parsing time history value: %w", err)
		}
		out.Time = t
	case ValueJSON:
		out.Raw = append(json.RawMessage(nil), w.Value...)
	case ValueNull, "":
		out.Kind = ValueNull
	default:
		return fmt.Errorf("unknown history value kind %q", w.Kind)
	}
	*v = out
	return nil
}

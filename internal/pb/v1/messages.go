package v1

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Struct field names shared by client and server.
const (
	fieldSubjectID = "subject_id"
	fieldActive    = "active"
	fieldEAR       = "ear"
	fieldTimestamp = "timestamp"
	fieldSource    = "source"
	fieldHostname  = "hostname"
	fieldUsername  = "username"
	fieldAlerts    = "alerts"
)

var (
	// ErrMissingField is returned when a required Struct field is absent.
	ErrMissingField = errors.New("missing field")
	// errWrongKind is returned when a Struct field has an unexpected kind.
	errWrongKind = errors.New("unexpected field kind")
)

// Source identifies the monitor host and user pushing a cue.
type Source struct {
	Hostname string
	Username string
}

// GetHostname returns the hostname, tolerating a nil receiver.
func (s *Source) GetHostname() string {
	if s == nil {
		return ""
	}

	return s.Hostname
}

// GetUsername returns the username, tolerating a nil receiver.
func (s *Source) GetUsername() string {
	if s == nil {
		return ""
	}

	return s.Username
}

// CueRequest is the PushCue payload.
type CueRequest struct {
	SubjectID string
	Active    bool
	EAR       float64
	Source    *Source
}

// AlertState is the relayed alert of one subject.
type AlertState struct {
	SubjectID string
	Active    bool
	EAR       float64
	Timestamp time.Time
	Source    *Source
}

// ToStruct encodes the request.
func (r *CueRequest) ToStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldSubjectID: structpb.NewStringValue(r.SubjectID),
		fieldActive:    structpb.NewBoolValue(r.Active),
		fieldEAR:       structpb.NewNumberValue(r.EAR),
	}

	if r.Source != nil {
		fields[fieldSource] = structpb.NewStructValue(sourceToStruct(r.Source))
	}

	return &structpb.Struct{Fields: fields}
}

// CueRequestFromStruct decodes a PushCue payload.
// The subject identifier is mandatory; the source is optional.
func CueRequestFromStruct(in *structpb.Struct) (*CueRequest, error) {
	subjectID, err := stringField(in, fieldSubjectID)
	if err != nil {
		return nil, err
	}

	active, err := boolField(in, fieldActive)
	if err != nil {
		return nil, err
	}

	return &CueRequest{
		SubjectID: subjectID,
		Active:    active,
		EAR:       in.GetFields()[fieldEAR].GetNumberValue(),
		Source:    sourceFromStruct(in.GetFields()[fieldSource].GetStructValue()),
	}, nil
}

// ToStruct encodes the alert state.
func (a *AlertState) ToStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldSubjectID: structpb.NewStringValue(a.SubjectID),
		fieldActive:    structpb.NewBoolValue(a.Active),
		fieldEAR:       structpb.NewNumberValue(a.EAR),
	}

	if !a.Timestamp.IsZero() {
		fields[fieldTimestamp] = structpb.NewStringValue(a.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	if a.Source != nil {
		fields[fieldSource] = structpb.NewStructValue(sourceToStruct(a.Source))
	}

	return &structpb.Struct{Fields: fields}
}

// AlertStateFromStruct decodes one alert state.
func AlertStateFromStruct(in *structpb.Struct) (*AlertState, error) {
	subjectID, err := stringField(in, fieldSubjectID)
	if err != nil {
		return nil, err
	}

	state := &AlertState{
		SubjectID: subjectID,
		Active:    in.GetFields()[fieldActive].GetBoolValue(),
		EAR:       in.GetFields()[fieldEAR].GetNumberValue(),
		Source:    sourceFromStruct(in.GetFields()[fieldSource].GetStructValue()),
	}

	if raw := in.GetFields()[fieldTimestamp].GetStringValue(); raw != "" {
		state.Timestamp, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldTimestamp, err)
		}
	}

	return state, nil
}

// AlertListToStruct encodes a list of alert states.
func AlertListToStruct(states []*AlertState) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(states))
	for _, state := range states {
		values = append(values, structpb.NewStructValue(state.ToStruct()))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldAlerts: structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}
}

// AlertListFromStruct decodes a list of alert states.
func AlertListFromStruct(in *structpb.Struct) ([]*AlertState, error) {
	values := in.GetFields()[fieldAlerts].GetListValue().GetValues()
	states := make([]*AlertState, 0, len(values))

	for i, value := range values {
		item := value.GetStructValue()
		if item == nil {
			return nil, fmt.Errorf("%s[%d]: %w", fieldAlerts, i, errWrongKind)
		}

		state, err := AlertStateFromStruct(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", fieldAlerts, i, err)
		}

		states = append(states, state)
	}

	return states, nil
}

func sourceToStruct(source *Source) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldHostname: structpb.NewStringValue(source.Hostname),
			fieldUsername: structpb.NewStringValue(source.Username),
		},
	}
}

func sourceFromStruct(in *structpb.Struct) *Source {
	if in == nil {
		return nil
	}

	return &Source{
		Hostname: in.GetFields()[fieldHostname].GetStringValue(),
		Username: in.GetFields()[fieldUsername].GetStringValue(),
	}
}

func stringField(in *structpb.Struct, name string) (string, error) {
	value, ok := in.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	kind, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, errWrongKind)
	}

	if kind.StringValue == "" {
		return "", fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	return kind.StringValue, nil
}

func boolField(in *structpb.Struct, name string) (bool, error) {
	value, ok := in.GetFields()[name]
	if !ok {
		return false, fmt.Errorf("%s: %w", name, ErrMissingField)
	}

	kind, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s: %w", name, errWrongKind)
	}

	return kind.BoolValue, nil
}

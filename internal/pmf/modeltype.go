package pmf

import (
	"errors"
	"fmt"
	"strings"
)

// ModelType names the kind of root aggregate an archive holds.
type ModelType int

const (
	TypeExperimentalData ModelType = iota + 1
	TypePrimaryModelWData
	TypePrimaryModelWOData
	TypeTwoStepSecondaryModel
	TypeOneStepSecondaryModel
	TypeManualSecondaryModel
	TypeTwoStepTertiaryModel
	TypeOneStepTertiaryModel
	TypeManualTertiaryModel
)

// ErrUnknownModelType is returned for names or values outside the enumeration.
var ErrUnknownModelType = errors.New("pmf: unknown model type")

var modelTypeNames = map[ModelType]string{
	TypeExperimentalData:      "EXPERIMENTAL_DATA",
	TypePrimaryModelWData:     "PRIMARY_MODEL_WDATA",
	TypePrimaryModelWOData:    "PRIMARY_MODEL_WODATA",
	TypeTwoStepSecondaryModel: "TWO_STEP_SECONDARY_MODEL",
	TypeOneStepSecondaryModel: "ONE_STEP_SECONDARY_MODEL",
	TypeManualSecondaryModel:  "MANUAL_SECONDARY_MODEL",
	TypeTwoStepTertiaryModel:  "TWO_STEP_TERTIARY_MODEL",
	TypeOneStepTertiaryModel:  "ONE_STEP_TERTIARY_MODEL",
	TypeManualTertiaryModel:   "MANUAL_TERTIARY_MODEL",
}

// ModelTypes returns every model type in declaration order.
func ModelTypes() []ModelType {
	out := make([]ModelType, 0, len(modelTypeNames))
	for t := TypeExperimentalData; t <= TypeManualTertiaryModel; t++ {
		out = append(out, t)
	}
	return out
}

func (t ModelType) String() string {
	if name, ok := modelTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ModelType(%d)", int(t))
}

// Valid reports whether t is one of the declared model types.
func (t ModelType) Valid() bool {
	_, ok := modelTypeNames[t]
	return ok
}

// ParseModelType accepts the upper snake case names case-insensitively.
func ParseModelType(s string) (ModelType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range modelTypeNames {
		if name == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModelType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ModelType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModelType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ModelType) UnmarshalText(text []byte) error {
	parsed, err := ParseModelType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

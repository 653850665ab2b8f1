package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotreat/adapters/encoders"
	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/testkit"
)

func TestDesignJSONRoundTrip(t *testing.T) {
	f := testkit.SignalFrame(200, 42)
	design := designFixture(t, f, []string{"plan", "usage"})

	data, err := json.Marshal(design)
	require.NoError(t, err)

	var restored TreatmentDesign
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, design.ID, restored.ID)
	assert.Equal(t, design.OutcomeColumn, restored.OutcomeColumn)
	assert.Equal(t, design.PositiveValue, restored.PositiveValue)
	assert.Equal(t, design.Descriptors, restored.Descriptors)
	assert.Equal(t, design.Scores, restored.Scores)
	assert.Equal(t, design.TrainingFingerprint, restored.TrainingFingerprint)
	require.Len(t, restored.Encoders, len(design.Encoders))

	// The restored design prepares frames identically to the original
	fresh := testkit.SignalFrame(200, 43)
	want, err := Prepare(design, fresh, PrepareOptions{})
	require.NoError(t, err)
	got, err := Prepare(&restored, fresh, PrepareOptions{})
	require.NoError(t, err)
	assert.Equal(t, want.Frame.Fingerprint(), got.Frame.Fingerprint(),
		"a reloaded design must reproduce the exact derived frame")
}

func TestDesignJSONRoundTrip_MissingNumeric(t *testing.T) {
	f := testkit.MissingNumericFrame(120, []int{5, 60}, 3)
	design := designFixture(t, f, []string{"xn"})

	data, err := json.Marshal(design)
	require.NoError(t, err)
	var restored TreatmentDesign
	require.NoError(t, json.Unmarshal(data, &restored))

	// Imputation parameters survive the trip
	clean, ok := restored.Encoders[0].(*encoders.CleanEncoder)
	require.True(t, ok)
	original := design.Encoders[0].(*encoders.CleanEncoder)
	assert.Equal(t, original.Replacement, clean.Replacement)
}

func TestDesignMarshal_CustomCodeRejected(t *testing.T) {
	custom := treatment.CodeType("rank1")
	reg := encoders.NewRegistry()
	reg.Register(custom, func(col frame.Column, cfg treatment.Config) []encoders.Encoder {
		return []encoders.Encoder{&encoders.PrevalenceEncoder{
			Desc: treatment.VariableDescriptor{Name: col.Name + "_rank1", Origin: col.Name, Code: custom},
		}}
	})

	f := testkit.LevelFrame(60, 8)
	cfg := treatment.DefaultConfig()
	cfg.CodeRestriction = []treatment.CodeType{custom}
	result, err := NewDesignerWithRegistry(reg).Design(context.Background(), f,
		testkit.OutcomeColumn, testkit.PositiveValue, []string{"xc"}, cfg)
	require.NoError(t, err)

	_, err = json.Marshal(result.Design)
	require.Error(t, err, "designs holding custom encoder codes are memory-only")
}

func TestDesignUnmarshal_BadPayloads(t *testing.T) {
	var d TreatmentDesign
	require.Error(t, d.UnmarshalJSON([]byte(`{broken`)))

	// Unknown encoder code in an otherwise well-formed envelope
	payload := `{"descriptors":[],"scores":null,"encoders":[{"code":"mystery","data":{}}]}`
	require.Error(t, d.UnmarshalJSON([]byte(payload)))
}

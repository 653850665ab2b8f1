package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
	"gotreat/internal/testkit"
)

func designFixture(t *testing.T, f *frame.Frame, inputs []string) *TreatmentDesign {
	t.Helper()
	result, err := NewDesigner().Design(context.Background(), f, testkit.OutcomeColumn, testkit.PositiveValue,
		inputs, treatment.DefaultConfig())
	require.NoError(t, err)
	return result.Design
}

func TestPrepare_MissingNumericImputation(t *testing.T) {
	missingAt := []int{3, 40, 117, 250, 333, 480}
	f := testkit.MissingNumericFrame(500, missingAt, 7)
	design := designFixture(t, f, []string{"xn"})

	// Exactly clean + isBAD for a numeric column with missing cells
	require.Len(t, design.Descriptors, 2)
	cleanName := treatment.DerivedName("xn", treatment.CodeClean)
	badName := treatment.DerivedName("xn", treatment.CodeIsBad)

	result, err := Prepare(design, f, PrepareOptions{})
	require.NoError(t, err)

	// Mean over the 494 observed cells
	col, _ := f.Column("xn")
	sum, count := 0.0, 0
	for i, v := range col.Nums {
		if !col.IsMissing(i) {
			sum += v
			count++
		}
	}
	mean := sum / float64(count)

	cleanCol, ok := result.Frame.Column(cleanName)
	require.True(t, ok)
	badCol, ok := result.Frame.Column(badName)
	require.True(t, ok)

	missing := map[int]bool{}
	for _, i := range missingAt {
		missing[i] = true
	}
	for i := 0; i < 500; i++ {
		if missing[i] {
			assert.InDelta(t, mean, cleanCol.Nums[i], 1e-12, "missing row %d imputed with the training mean", i)
			assert.Equal(t, 1.0, badCol.Nums[i])
		} else {
			assert.Equal(t, col.Nums[i], cleanCol.Nums[i], "observed row %d passes through", i)
			assert.Equal(t, 0.0, badCol.Nums[i])
		}
	}
}

func TestPrepare_LeakageAdvisoryOnTrainingFrame(t *testing.T) {
	f := testkit.LevelFrame(100, 9)
	design := designFixture(t, f, []string{"xc"})

	onTraining, err := Prepare(design, f, PrepareOptions{})
	require.NoError(t, err)
	found := false
	for _, w := range onTraining.Warnings {
		if w.Kind == treatment.WarnLeakage {
			found = true
		}
	}
	assert.True(t, found, "applying a design to its own training frame must warn")

	fresh := testkit.LevelFrame(100, 10)
	onFresh, err := Prepare(design, fresh, PrepareOptions{})
	require.NoError(t, err)
	for _, w := range onFresh.Warnings {
		assert.NotEqual(t, treatment.WarnLeakage, w.Kind, "a fresh frame must not trigger the leakage advisory")
	}
}

func TestPrepare_SchemaStableUnderUnseenLevels(t *testing.T) {
	f := testkit.LevelFrame(100, 11)
	design := designFixture(t, f, []string{"xc"})

	scoring, err := Prepare(design, f, PrepareOptions{})
	require.NoError(t, err)

	novel := frame.New(2)
	require.NoError(t, novel.AddColumn(frame.CategoricalColumn("xc", []string{"level_9", "level_1"})))

	result, err := Prepare(design, novel, PrepareOptions{})
	require.NoError(t, err)

	// Column set and order identical to any other prepared frame
	assert.Equal(t, scoring.Frame.Names(), result.Frame.Names())

	for _, desc := range design.Descriptors {
		col, ok := result.Frame.Column(desc.Name)
		require.True(t, ok)
		switch desc.Code {
		case treatment.CodeLev:
			// Unseen level matches no indicator
			assert.Equal(t, 0.0, col.Nums[0], "%s must be 0 for an unseen level", desc.Name)
		case treatment.CodeCatP:
			assert.Equal(t, 1.0/200.0, col.Nums[0], "unseen level falls back to 1/(2n)")
		case treatment.CodeCatB:
			assert.Equal(t, 0.0, col.Nums[0], "unseen level scores the global log-odds delta of 0")
		}
	}

	assert.Equal(t, 1, result.UnseenLevels)
	var unseenWarnings int
	for _, w := range result.Warnings {
		if w.Kind == treatment.WarnUnseenLevel {
			unseenWarnings++
			assert.Equal(t, "xc", w.Column)
			assert.Equal(t, 1, w.Count)
		}
	}
	assert.Equal(t, 1, unseenWarnings, "one unseen-level advisory per origin column")
}

func TestPrepare_Idempotent(t *testing.T) {
	f := testkit.SignalFrame(150, 13)
	design := designFixture(t, f, []string{"plan", "usage"})

	fresh := testkit.SignalFrame(150, 14)
	a, err := Prepare(design, fresh, PrepareOptions{})
	require.NoError(t, err)
	b, err := Prepare(design, fresh, PrepareOptions{})
	require.NoError(t, err)
	assert.Equal(t, a.Frame.Fingerprint(), b.Frame.Fingerprint(),
		"prepare must be deterministic: same design, same frame, same output")
}

func TestPrepare_IncludeOutcome(t *testing.T) {
	f := testkit.LevelFrame(80, 15)
	design := designFixture(t, f, []string{"xc"})

	without, err := Prepare(design, f, PrepareOptions{})
	require.NoError(t, err)
	assert.False(t, without.Frame.HasColumn(testkit.OutcomeColumn))

	with, err := Prepare(design, f, PrepareOptions{IncludeOutcome: true})
	require.NoError(t, err)
	assert.True(t, with.Frame.HasColumn(testkit.OutcomeColumn))
}

func TestPrepare_ColumnKindMismatchIsFatal(t *testing.T) {
	// A column numeric at design time arriving categorical (text cells in a
	// later upload) must be rejected, not applied.
	numeric := testkit.MissingNumericFrame(100, []int{4}, 19)
	design := designFixture(t, numeric, []string{"xn"})

	mismatched := frame.New(2)
	require.NoError(t, mismatched.AddColumn(frame.CategoricalColumn("xn", []string{"tall", "short"})))

	_, err := Prepare(design, mismatched, PrepareOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	// And the inverse: categorical at design time, numeric now
	categorical := testkit.LevelFrame(100, 20)
	catDesign := designFixture(t, categorical, []string{"xc"})

	numbers := frame.New(2)
	require.NoError(t, numbers.AddColumn(frame.NumericColumn("xc", []float64{1, 2})))

	_, err = Prepare(catDesign, numbers, PrepareOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestPrepare_MissingDesignColumn(t *testing.T) {
	f := testkit.LevelFrame(80, 16)
	design := designFixture(t, f, []string{"xc"})

	other := frame.New(2)
	require.NoError(t, other.AddColumn(frame.CategoricalColumn("unrelated", []string{"a", "b"})))

	_, err := Prepare(design, other, PrepareOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestPrepare_NilAndEmptyInputs(t *testing.T) {
	f := testkit.LevelFrame(80, 18)
	design := designFixture(t, f, []string{"xc"})

	_, err := Prepare(nil, f, PrepareOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Prepare(design, frame.New(0), PrepareOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
}

package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotreat/domain/frame"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
	"gotreat/internal/testkit"
)

func TestDesign_ThreeLevelCategoricalScenario(t *testing.T) {
	f := testkit.LevelFrame(100, 17)
	designer := NewDesigner()

	result, err := designer.Design(context.Background(), f, testkit.OutcomeColumn, testkit.PositiveValue,
		[]string{"xc"}, treatment.DefaultConfig())
	require.NoError(t, err)

	// 3 lev indicators (all levels pass the 0.02 floor) + catP + catB
	var levCount, catPCount, catBCount int
	for _, desc := range result.Design.Descriptors {
		switch desc.Code {
		case treatment.CodeLev:
			levCount++
		case treatment.CodeCatP:
			catPCount++
		case treatment.CodeCatB:
			catBCount++
		}
	}
	assert.Equal(t, 3, levCount, "all three levels (including the missing token) earn indicators")
	assert.Equal(t, 1, catPCount)
	assert.Equal(t, 1, catBCount)

	// The lev indicators partition the rows: they sum to exactly 1 per row
	require.Equal(t, 100, result.CrossFrame.NumRows())
	var levCols []frame.Column
	for _, desc := range result.Design.Descriptors {
		if desc.Code == treatment.CodeLev {
			col, ok := result.CrossFrame.Column(desc.Name)
			require.True(t, ok)
			levCols = append(levCols, col)
		}
	}
	for i := 0; i < 100; i++ {
		sum := 0.0
		for _, col := range levCols {
			sum += col.Nums[i]
		}
		assert.Equal(t, 1.0, sum, "lev indicators must sum to 1 at row %d", i)
	}

	// Every derived variable has a score row
	assert.Len(t, result.Scores, len(result.Design.Descriptors))
}

func TestDesign_ValidationErrors(t *testing.T) {
	f := testkit.LevelFrame(60, 2)
	designer := NewDesigner()
	ctx := context.Background()
	cfg := treatment.DefaultConfig()

	cases := []struct {
		name    string
		run     func() error
		code    string
	}{
		{"unknown outcome", func() error {
			_, err := designer.Design(ctx, f, "nope", "pos", []string{"xc"}, cfg)
			return err
		}, errors.CodeConfigInvalid},
		{"unknown input column", func() error {
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "pos", []string{"ghost"}, cfg)
			return err
		}, errors.CodeConfigInvalid},
		{"outcome as input", func() error {
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "pos", []string{testkit.OutcomeColumn}, cfg)
			return err
		}, errors.CodeConfigInvalid},
		{"bad fold count", func() error {
			bad := cfg
			bad.FoldCount = 1
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "pos", []string{"xc"}, bad)
			return err
		}, errors.CodeConfigInvalid},
		{"bad min fraction", func() error {
			bad := cfg
			bad.MinFraction = 1.5
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "pos", []string{"xc"}, bad)
			return err
		}, errors.CodeConfigInvalid},
		{"unknown code restriction", func() error {
			bad := cfg
			bad.CodeRestriction = []treatment.CodeType{"mystery"}
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "pos", []string{"xc"}, bad)
			return err
		}, errors.CodeConfigInvalid},
		{"constant outcome", func() error {
			_, err := designer.Design(ctx, f, testkit.OutcomeColumn, "not_a_level", []string{"xc"}, cfg)
			return err
		}, errors.CodeInsufficientData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
		})
	}
}

func TestDesign_EmptyFrame(t *testing.T) {
	designer := NewDesigner()
	_, err := designer.Design(context.Background(), frame.New(0), "y", "pos", []string{"x"}, treatment.DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
}

func TestDesign_SeedReproducibility(t *testing.T) {
	designer := NewDesigner()
	ctx := context.Background()
	cfg := treatment.DefaultConfig()
	cfg.Seed = 99

	run := func() *DesignResult {
		f := testkit.SignalFrame(300, 5)
		result, err := designer.Design(ctx, f, testkit.OutcomeColumn, testkit.PositiveValue,
			[]string{"plan", "usage", "noise_num", "noise_cat"}, cfg)
		require.NoError(t, err)
		return result
	}

	a := run()
	b := run()
	assert.Equal(t, a.CrossFrame.Fingerprint(), b.CrossFrame.Fingerprint(),
		"same data and seed must reproduce the identical cross frame")
	assert.Equal(t, a.Scores, b.Scores)
}

func TestDesign_NullDataCalibration(t *testing.T) {
	// All candidate columns independent of the outcome: the type-adaptive
	// thresholds admit about one false positive across the catalogue.
	f := testkit.NoiseFrame(800, 6, 6, 21)
	designer := NewDesigner()

	var inputs []string
	for _, name := range f.Names() {
		if name != testkit.OutcomeColumn {
			inputs = append(inputs, name)
		}
	}

	cfg := treatment.DefaultConfig()
	cfg.Seed = 21
	result, err := designer.Design(context.Background(), f, testkit.OutcomeColumn, testkit.PositiveValue, inputs, cfg)
	require.NoError(t, err)

	recommended := len(result.Scores.Recommended())
	assert.LessOrEqual(t, recommended, 4,
		"pure noise should yield about one recommended variable, got %d", recommended)
}

func TestDesign_SignalRecovery(t *testing.T) {
	f := testkit.SignalFrame(600, 33)
	designer := NewDesigner()

	cfg := treatment.DefaultConfig()
	cfg.Seed = 33
	result, err := designer.Design(context.Background(), f, testkit.OutcomeColumn, testkit.PositiveValue,
		[]string{"plan", "usage", "noise_num", "noise_cat"}, cfg)
	require.NoError(t, err)

	byName := map[string]treatment.ScoreRow{}
	for _, row := range result.Scores {
		byName[row.Variable] = row
	}

	usage := byName[treatment.DerivedName("usage", treatment.CodeClean)]
	assert.True(t, usage.Recommended, "usage carries real signal and must be recommended")

	planB := byName[treatment.DerivedName("plan", treatment.CodeCatB)]
	assert.True(t, planB.Recommended, "plan impact code carries real signal and must be recommended")

	noise := byName[treatment.DerivedName("noise_num", treatment.CodeClean)]
	assert.Greater(t, noise.Significance, noise.Threshold,
		"noise should not clear its threshold")
}

func TestDesign_CodeRestrictionLimitsCatalogue(t *testing.T) {
	f := testkit.SignalFrame(200, 4)
	designer := NewDesigner()

	cfg := treatment.DefaultConfig()
	cfg.CodeRestriction = []treatment.CodeType{treatment.CodeClean, treatment.CodeCatB}
	result, err := designer.Design(context.Background(), f, testkit.OutcomeColumn, testkit.PositiveValue,
		[]string{"plan", "usage"}, cfg)
	require.NoError(t, err)

	for _, desc := range result.Design.Descriptors {
		if desc.Code != treatment.CodeClean && desc.Code != treatment.CodeCatB {
			t.Errorf("unexpected code %s in restricted design", desc.Code)
		}
	}
}

func TestDesign_CancelledContext(t *testing.T) {
	f := testkit.SignalFrame(200, 8)
	designer := NewDesigner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := designer.Design(ctx, f, testkit.OutcomeColumn, testkit.PositiveValue,
		[]string{"plan", "usage"}, treatment.DefaultConfig())
	require.Error(t, err)
}

func TestOutcomeVector_NumericOutcome(t *testing.T) {
	f := frame.New(4)
	require.NoError(t, f.AddColumn(frame.NumericColumn("flag", []float64{1, 0, 1, 0})))

	y, err := outcomeVector(f, "flag", "1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 0}, y)

	_, err = outcomeVector(f, "flag", "yes")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestOutcomeVector_MissingOutcomeIsFatal(t *testing.T) {
	f := frame.New(3)
	require.NoError(t, f.AddColumn(frame.NumericColumn("flag", []float64{1, math.NaN(), 0})))

	_, err := outcomeVector(f, "flag", "1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
}

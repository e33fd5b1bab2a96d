package promotions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kamesan/internal/core/apperror"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator()
	require.NoError(t, err)
	return ev
}

func TestEvalConditions(t *testing.T) {
	ev := newEvaluator(t)

	facts := Facts{
		Subtotal:      150.0,
		ItemCount:     3,
		PaymentMethod: "CARD",
		Hour:          14,
		Weekday:       5,
	}

	tests := []struct {
		name      string
		condition string
		want      bool
	}{
		{"empty matches everything", "", true},
		{"subtotal threshold met", "subtotal >= 100.0", true},
		{"subtotal threshold not met", "subtotal >= 500.0", false},
		{"payment method match", `payment_method == "CARD"`, true},
		{"combined condition", `subtotal > 100.0 && item_count >= 3`, true},
		{"weekday window", "weekday >= 1 && weekday <= 5", true},
		{"happy hour", "hour >= 16 && hour < 19", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Eval(tt.condition, facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRejectsInvalidSyntax(t *testing.T) {
	ev := newEvaluator(t)

	err := ev.Check("subtotal >=")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestCheckRejectsNonBoolean(t *testing.T) {
	ev := newEvaluator(t)

	err := ev.Check("subtotal + 1.0")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestCheckRejectsUnknownVariable(t *testing.T) {
	ev := newEvaluator(t)

	err := ev.Check("loyalty_points > 100")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestEvalCachesPrograms(t *testing.T) {
	ev := newEvaluator(t)

	facts := Facts{Subtotal: 10}
	for i := 0; i < 3; i++ {
		_, err := ev.Eval("subtotal > 5.0", facts)
		require.NoError(t, err)
	}

	ev.mu.RLock()
	defer ev.mu.RUnlock()
	assert.Len(t, ev.programs, 1)
}

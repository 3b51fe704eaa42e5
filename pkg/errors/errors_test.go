package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GradientBoostingIncidence", "PredictCumulativeIncidence")

	// 基本的なエラーメッセージの確認
	want := "hazardous: GradientBoostingIncidence: this model is not fitted yet. Call Fit() before using PredictCumulativeIncidence()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	// NotFittedError型にキャスト可能か確認
	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewInvalidGridError(t *testing.T) {
	err := NewInvalidGridError("TimeGridBuilder.Build", "fewer than 2 distinct observed durations", 1)

	want := "hazardous: TimeGridBuilder.Build: invalid time grid (1 points): fewer than 2 distinct observed durations"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var gridErr *InvalidGridError
	if !As(err, &gridErr) {
		t.Fatal("Error should be castable to *InvalidGridError")
	}
	if gridErr.NumPoints != 1 {
		t.Errorf("NumPoints = %d, want 1", gridErr.NumPoints)
	}
}

func TestNewInsufficientGridError(t *testing.T) {
	err := NewInsufficientGridError("IntegratedBrierScore", 1)

	want := "hazardous: IntegratedBrierScore: integration requires at least 2 time points, got 1"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var gridErr *InsufficientGridError
	if !As(err, &gridErr) {
		t.Error("Error should be castable to *InsufficientGridError")
	}
}

func TestNewShapeMismatchError(t *testing.T) {
	tests := []struct {
		name    string
		axis    int
		wantMsg string
	}{
		{
			name:    "rows axis",
			axis:    0,
			wantMsg: "hazardous: BrierScoreIncidence: shape mismatch on axis 0 (rows). Expected 10, got 8",
		},
		{
			name:    "columns axis",
			axis:    1,
			wantMsg: "hazardous: BrierScoreIncidence: shape mismatch on axis 1 (columns). Expected 10, got 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewShapeMismatchError("BrierScoreIncidence", 10, 8, tt.axis)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var shapeErr *ShapeMismatchError
			if !As(err, &shapeErr) {
				t.Fatal("Error should be castable to *ShapeMismatchError")
			}
			if shapeErr.Expected != 10 || shapeErr.Got != 8 {
				t.Errorf("Expected/Got = %d/%d, want 10/8", shapeErr.Expected, shapeErr.Got)
			}
		})
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("WithMinSurvivalProb", "must be in (0, 1]")

	want := "hazardous: WithMinSurvivalProb: must be in (0, 1]"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valueErr *ValueError
	if !As(err, &valueErr) {
		t.Error("Error should be castable to *ValueError")
	}
}

func TestWarningMessages(t *testing.T) {
	degenerate := NewDegenerateCensoringWarning(7)
	if !strings.Contains(degenerate.Error(), "7 samples") {
		t.Errorf("unexpected message: %v", degenerate.Error())
	}

	extrapolation := NewExtrapolationWarning(12.5, 10)
	if !strings.Contains(extrapolation.Error(), "12.5") || !strings.Contains(extrapolation.Error(), "10") {
		t.Errorf("unexpected message: %v", extrapolation.Error())
	}

	undefined := NewUndefinedMetricWarning("brier_score", "competing events present")
	if !strings.Contains(undefined.Error(), "brier_score") {
		t.Errorf("unexpected message: %v", undefined.Error())
	}
}

func TestWarnRouting(t *testing.T) {
	// zerolog関数が設定されている場合はそちらが優先される
	var viaZerolog, viaHandler error
	SetZerologWarnFunc(func(w error) { viaZerolog = w })
	SetWarningHandler(func(w error) { viaHandler = w })
	t.Cleanup(func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(error) {})
	})

	first := NewDegenerateCensoringWarning(3)
	Warn(first)
	if viaZerolog != first {
		t.Error("zerolog warn func should take precedence")
	}
	if viaHandler != nil {
		t.Error("handler should not fire while a zerolog func is set")
	}

	// zerolog関数を外すとハンドラにフォールバックする
	SetZerologWarnFunc(nil)
	second := NewExtrapolationWarning(5, 4)
	Warn(second)
	if viaHandler != second {
		t.Error("handler should receive the warning after the zerolog func is cleared")
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewNotFittedError("IpcwEstimator", "Predict")
	wrapped := Wrap(base, "ComputeWeights")

	var notFittedErr *NotFittedError
	if !As(wrapped, &notFittedErr) {
		t.Error("wrapping should preserve the underlying error type")
	}
	if !Is(Wrap(ErrEmptyData, "Fit"), ErrEmptyData) {
		t.Error("wrapped sentinel should still match with Is")
	}
}

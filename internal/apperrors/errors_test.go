package apperrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_ErrorFormatsWithAndWithoutModel(t *testing.T) {
	plain := New(KindConfiguration, "bad input")
	assert.Equal(t, "[ConfigurationError] bad input", plain.Error())

	withModel := New(KindConfiguration, "bad input").WithModel("LeaseRevenueModel")
	assert.Equal(t, "[ConfigurationError] bad input (model=LeaseRevenueModel)", withModel.Error())
}

func TestNewf_FormatsMessage(t *testing.T) {
	err := Newf(KindQuery, "unknown metric %q", "foo")
	assert.Equal(t, "unknown metric \"foo\"", err.HumanMessage)
}

func TestWrap_PreservesCauseForErrorsUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	wrapped := Wrap(cause, KindConvergence, "could not solve IRR")

	assert.Same(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))
}

func TestWithDate_AnnotatesErrorDate(t *testing.T) {
	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	err := New(KindOutOfTimeline, "date out of range").WithDate(d)
	require := assert.New(t)
	require.NotNil(err.Date)
	require.True(d.Equal(*err.Date))
}

func TestIs_MatchesKindOnAppError(t *testing.T) {
	err := New(KindLedgerSealed, "sealed")
	assert.True(t, Is(err, KindLedgerSealed))
	assert.False(t, Is(err, KindQuery))
}

func TestIs_FalseForNonAppError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindQuery))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poofware/attendance-service/internal/constants"
)

func TestValidateLocationDataAcceptsFreshAccurateFix(t *testing.T) {
	code, msg := ValidateLocationData(40.0, -3.0, 10, time.Now().UnixMilli(), false)
	assert.Empty(t, code)
	assert.Empty(t, msg)
}

func TestValidateLocationDataRejectsOutOfRangeCoordinates(t *testing.T) {
	now := time.Now().UnixMilli()
	for _, c := range [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}} {
		code, _ := ValidateLocationData(c[0], c[1], 10, now, false)
		assert.Equal(t, ErrCodeInvalidPayload, code)
	}
}

func TestValidateLocationDataRejectsLowAccuracy(t *testing.T) {
	code, _ := ValidateLocationData(40.0, -3.0, constants.MaxGPSAccuracyMeters+1, time.Now().UnixMilli(), false)
	assert.Equal(t, ErrCodeLocationInaccurate, code)
}

func TestValidateLocationDataRejectsSkewedTimestamp(t *testing.T) {
	skewMS := constants.MaxLocationTimestampSkew.Milliseconds()

	// Too old and too far in the future both fail.
	code, _ := ValidateLocationData(40.0, -3.0, 10, time.Now().UnixMilli()-skewMS-1000, false)
	assert.Equal(t, ErrCodeInvalidPayload, code)

	code, _ = ValidateLocationData(40.0, -3.0, 10, time.Now().UnixMilli()+skewMS+1000, false)
	assert.Equal(t, ErrCodeInvalidPayload, code)

	// Well within the window passes.
	code, _ = ValidateLocationData(40.0, -3.0, 10, time.Now().UnixMilli()-skewMS/2, false)
	assert.Empty(t, code)
}

func TestValidateLocationDataRejectsMockedLocation(t *testing.T) {
	code, _ := ValidateLocationData(40.0, -3.0, 10, time.Now().UnixMilli(), true)
	assert.Equal(t, ErrCodeInvalidPayload, code)
}

package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	created   int
	validated int
	mapViews  int
}

func (f *fakeTracker) TrackReportCreated(userID uuid.UUID, latitude, longitude float64, reportType, severity string) {
	f.created++
}

func (f *fakeTracker) TrackReportValidated(userID uuid.UUID, reportCreatedAt time.Time) {
	f.validated++
}

func (f *fakeTracker) TrackMapView(userID uuid.UUID) {
	f.mapViews++
}

// Validation happens before any persistence or enrichment, so these paths
// are exercised without a database.
func newValidationOnlyService(tracker *fakeTracker) *ReportService {
	return NewReportService(nil, tracker, nil, nil, nil)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	tracker := &fakeTracker{}
	service := newValidationOnlyService(tracker)

	_, err := service.Create(uuid.New(), &CreateReportRequest{
		Title:       "Smoke over the river",
		Description: "Thick smoke visible",
		ReportType:  "smog_event",
		Latitude:    40.0,
		Longitude:   -73.0,
	})

	require.ErrorIs(t, err, ErrInvalidType)
	assert.Zero(t, tracker.created, "no event for a rejected report")
}

func TestCreateRejectsUnknownSeverity(t *testing.T) {
	service := newValidationOnlyService(&fakeTracker{})

	_, err := service.Create(uuid.New(), &CreateReportRequest{
		Title:       "Noise complaint",
		Description: "Constant construction noise",
		ReportType:  TypeNoisePollution,
		Severity:    "apocalyptic",
		Latitude:    40.0,
		Longitude:   -73.0,
	})

	require.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestCreateRejectsBadCoordinates(t *testing.T) {
	service := newValidationOnlyService(&fakeTracker{})

	tests := []struct{ lat, lon float64 }{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	}
	for _, tt := range tests {
		_, err := service.Create(uuid.New(), &CreateReportRequest{
			Title:       "Out of bounds",
			Description: "x",
			ReportType:  TypeOther,
			Latitude:    tt.lat,
			Longitude:   tt.lon,
		})
		require.ErrorIs(t, err, ErrInvalidCoordinate, "lat=%v lon=%v", tt.lat, tt.lon)
	}
}

func TestValidateRejectsBadStatus(t *testing.T) {
	service := newValidationOnlyService(&fakeTracker{})

	_, err := service.Validate(uuid.New(), uuid.New(), &ValidateReportRequest{Status: "approved"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = service.Validate(uuid.New(), uuid.New(), &ValidateReportRequest{Status: StatusPending})
	require.ErrorIs(t, err, ErrInvalidStatus, "cannot move a report back to pending")
}

func TestIsHighSeverity(t *testing.T) {
	assert.True(t, (&Report{Severity: SeverityHigh}).IsHighSeverity())
	assert.True(t, (&Report{Severity: SeverityCritical}).IsHighSeverity())
	assert.False(t, (&Report{Severity: SeverityMedium}).IsHighSeverity())
	assert.False(t, (&Report{Severity: SeverityLow}).IsHighSeverity())
}

func TestTypeAndSeveritySets(t *testing.T) {
	assert.Len(t, ValidTypes, 8)
	assert.Len(t, ValidSeverities, 4)
	assert.Len(t, ValidStatuses, 4)
	assert.True(t, ValidTypes[TypeWildlifeConservation])
	assert.False(t, ValidTypes["light_pollution"])
}

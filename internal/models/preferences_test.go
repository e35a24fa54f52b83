package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func prefsWithQuietHours(startH, startM, endH, endM int) *NotificationPreferences {
	return &NotificationPreferences{
		QuietHoursEnabled: true,
		QuietStartHour:    startH,
		QuietStartMinute:  startM,
		QuietEndHour:      endH,
		QuietEndMinute:    endM,
	}
}

func atClock(hour, min int) time.Time {
	return time.Date(2026, time.March, 14, hour, min, 0, 0, time.UTC)
}

func TestSuppressesAtWrapsMidnight(t *testing.T) {
	prefs := prefsWithQuietHours(22, 0, 7, 0)
	prefs.Timezone = "UTC"

	cases := []struct {
		hour, min int
		want      bool
	}{
		{23, 0, true},  // late evening inside the window
		{3, 0, true},   // after midnight still inside
		{12, 0, false}, // midday outside
		{7, 0, false},  // end boundary is exclusive
		{6, 59, true},  // last minute inside
		{22, 0, true},  // start boundary is inclusive
		{21, 59, false},
	}

	for _, tc := range cases {
		if got := prefs.SuppressesAt(atClock(tc.hour, tc.min)); got != tc.want {
			t.Fatalf("SuppressesAt(%02d:%02d) = %v, want %v", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestSuppressesAtSameDayWindow(t *testing.T) {
	prefs := prefsWithQuietHours(9, 30, 17, 0)
	prefs.Timezone = "UTC"

	if !prefs.SuppressesAt(atClock(12, 0)) {
		t.Fatal("expected midday inside a 09:30-17:00 window to suppress")
	}
	if prefs.SuppressesAt(atClock(8, 0)) {
		t.Fatal("expected early morning outside the window")
	}
	if prefs.SuppressesAt(atClock(17, 0)) {
		t.Fatal("expected the end minute to be outside the window")
	}
}

func TestSuppressesAtEqualStartAndEndNeverSuppresses(t *testing.T) {
	prefs := prefsWithQuietHours(8, 0, 8, 0)
	prefs.Timezone = "UTC"

	for hour := 0; hour < 24; hour++ {
		if prefs.SuppressesAt(atClock(hour, 0)) {
			t.Fatalf("expected start==end to never suppress, suppressed at %02d:00", hour)
		}
	}
}

func TestSuppressesAtDisabled(t *testing.T) {
	prefs := prefsWithQuietHours(22, 0, 7, 0)
	prefs.QuietHoursEnabled = false

	if prefs.SuppressesAt(atClock(23, 0)) {
		t.Fatal("expected disabled quiet hours to never suppress")
	}
}

func TestSuppressesAtHonorsTimezone(t *testing.T) {
	prefs := prefsWithQuietHours(22, 0, 7, 0)
	prefs.Timezone = "America/Denver"

	// 05:00 UTC is 22:00 or 23:00 in Denver depending on DST, inside either way.
	utcNight := time.Date(2026, time.January, 10, 5, 30, 0, 0, time.UTC)
	if !prefs.SuppressesAt(utcNight) {
		t.Fatal("expected UTC early morning to fall inside Denver quiet hours")
	}

	// 20:00 UTC is midday in Denver.
	utcNoonish := time.Date(2026, time.January, 10, 20, 0, 0, 0, time.UTC)
	if prefs.SuppressesAt(utcNoonish) {
		t.Fatal("expected Denver midday to be outside quiet hours")
	}
}

func TestRangesFollowIncludeFlags(t *testing.T) {
	prefs := &NotificationPreferences{IncludeShortRange: true, IncludeMediumRange: true}
	if got := prefs.Ranges(); len(got) != 2 || got[0] != RangeShort || got[1] != RangeMedium {
		t.Fatalf("unexpected ranges: %v", got)
	}

	prefs = &NotificationPreferences{IncludeMediumRange: true}
	if got := prefs.Ranges(); len(got) != 1 || got[0] != RangeMedium {
		t.Fatalf("unexpected ranges: %v", got)
	}

	prefs = &NotificationPreferences{}
	if got := prefs.Ranges(); len(got) != 0 {
		t.Fatalf("expected no ranges, got %v", got)
	}
}

func TestMonitoredStationIDsSerialize(t *testing.T) {
	prefs := &NotificationPreferences{
		MonitoredStationIDs: datatypes.NewJSONSlice([]string{"ABC123", "DEF456"}),
	}
	if len(prefs.MonitoredStationIDs) != 2 {
		t.Fatalf("expected 2 station ids, got %d", len(prefs.MonitoredStationIDs))
	}
}

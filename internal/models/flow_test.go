package models

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestConvertFlowCMSToCFS(t *testing.T) {
	got := ConvertFlow(10, FlowUnitCMS, FlowUnitCFS)
	if !almostEqual(got, 353.146667) {
		t.Fatalf("ConvertFlow(10, cms, cfs) = %v", got)
	}
}

func TestConvertFlowCFSToCMS(t *testing.T) {
	got := ConvertFlow(353.146667, FlowUnitCFS, FlowUnitCMS)
	if !almostEqual(got, 10) {
		t.Fatalf("ConvertFlow(353.146667, cfs, cms) = %v", got)
	}
}

func TestConvertFlowSameUnit(t *testing.T) {
	if got := ConvertFlow(42, FlowUnitCFS, FlowUnitCFS); got != 42 {
		t.Fatalf("expected identity conversion, got %v", got)
	}
}

func TestConvertFlowRoundTrips(t *testing.T) {
	orig := 1234.5
	back := ConvertFlow(ConvertFlow(orig, FlowUnitCFS, FlowUnitCMS), FlowUnitCMS, FlowUnitCFS)
	if !almostEqual(orig, back) {
		t.Fatalf("round trip drifted: %v -> %v", orig, back)
	}
}

func TestConvertFlowUnknownUnitPassesThrough(t *testing.T) {
	if got := ConvertFlow(7, FlowUnit("gpm"), FlowUnitCFS); got != 7 {
		t.Fatalf("expected unknown unit to pass through, got %v", got)
	}
}

func TestFlowUnitValid(t *testing.T) {
	if !FlowUnitCFS.Valid() || !FlowUnitCMS.Valid() {
		t.Fatal("expected supported units to be valid")
	}
	if FlowUnit("l/s").Valid() {
		t.Fatal("expected unsupported unit to be invalid")
	}
}

func TestForecastRangeValid(t *testing.T) {
	if !RangeShort.Valid() || !RangeMedium.Valid() {
		t.Fatal("expected known ranges to be valid")
	}
	if ForecastRange("long_range").Valid() {
		t.Fatal("expected unknown range to be invalid")
	}
}

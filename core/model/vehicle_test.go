package model

import "testing"

func TestCapacityValidate(t *testing.T) {
	c := Capacity{MaxVolume: 100, MaxWeight: 200, MaxStops: 3}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid capacity rejected: %v", err)
	}
	for _, bad := range []Capacity{
		{MaxVolume: 0, MaxWeight: 200, MaxStops: 3},
		{MaxVolume: 100, MaxWeight: -1, MaxStops: 3},
		{MaxVolume: 100, MaxWeight: 200, MaxStops: 0},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestVehicleFits(t *testing.T) {
	v := Vehicle{ID: "V1", Capacity: Capacity{MaxVolume: 100, MaxWeight: 200, MaxStops: 2}}
	orders := []Order{
		{ID: "a", Volume: 40, Weight: 80},
		{ID: "b", Volume: 50, Weight: 100},
	}
	if !v.Fits(orders) {
		t.Fatal("route within limits should fit")
	}
	if v.Fits(append(orders, Order{ID: "c", Volume: 1, Weight: 1})) {
		t.Fatal("route above stop limit should not fit")
	}
	if v.Fits([]Order{{ID: "d", Volume: 101, Weight: 1}}) {
		t.Fatal("route above volume limit should not fit")
	}
	if v.Fits([]Order{{ID: "e", Volume: 1, Weight: 201}}) {
		t.Fatal("route above weight limit should not fit")
	}
}

func TestVehicleStatusString(t *testing.T) {
	cases := map[VehicleStatus]string{
		StatusAvailable:   "available",
		StatusDispatched:  "dispatched",
		StatusReturning:   "returning",
		VehicleStatus(42): "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("status %d: expected %q got %q", s, want, got)
		}
	}
}

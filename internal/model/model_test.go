package model

import "testing"

func TestParseServiceType(t *testing.T) {
	for in, want := range map[string]ServiceType{
		"hotel": ServiceHotel, " Umrah ": ServiceUmrah, "BUNDLE": ServiceBundle, "educational": ServiceEducational,
	} {
		if got, ok := ParseServiceType(in); !ok || got != want {
			t.Errorf("ParseServiceType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseServiceType("boat"); ok {
		t.Error("boat accepted")
	}
}

func TestPackageKinds(t *testing.T) {
	cases := []struct {
		kind  PackageKind
		st    ServiceType
		table string
	}{
		{PackageTour, ServiceTour, "tours"},
		{PackageUmrah, ServiceUmrah, "umrah_packages"},
		{PackageHealth, ServiceHealth, "health_services"},
		{PackageEducational, ServiceEducational, "educational_programs"},
	}
	for _, tc := range cases {
		k, ok := ParsePackageKind(string(tc.kind))
		if !ok || k.ServiceType() != tc.st || k.Table() != tc.table {
			t.Errorf("%s: st=%s table=%s ok=%v", tc.kind, k.ServiceType(), k.Table(), ok)
		}
		if back, ok := tc.st.PackageKind(); !ok || back != tc.kind {
			t.Errorf("%s.PackageKind() = %s, %v", tc.st, back, ok)
		}
	}
	if _, ok := ParsePackageKind("Tours"); ok {
		t.Error("kind segment is case sensitive")
	}
	if _, ok := ServiceHotel.PackageKind(); ok {
		t.Error("hotel is not a package")
	}
}

func TestRoles(t *testing.T) {
	if r, ok := ParseRole("tour_guide"); !ok || r != RoleTourGuide {
		t.Fatalf("ParseRole = %q, %v", r, ok)
	}
	if RoleAdmin.SelfRegisterable() || !RoleCarOwner.SelfRegisterable() {
		t.Error("only admins are excluded from sign-up")
	}
	if st, ok := RoleCarOwner.OwnedServiceType(); !ok || st != ServiceCar {
		t.Errorf("car owner owns %s", st)
	}
	if RoleCustomer.IsOwner() || RoleAdmin.IsOwner() {
		t.Error("customers and admins own no services")
	}
}

func TestBookingStatusClasses(t *testing.T) {
	for _, s := range AllBookingStatuses {
		if s.Active() == s.Terminal() {
			t.Errorf("%s must be exactly one of active or terminal", s)
		}
	}
	if len(ActiveBookingStatuses) != 3 {
		t.Errorf("active statuses = %v", ActiveBookingStatuses)
	}
	if ps, ok := ParsePaymentStatus("refunded"); !ok || ps != PaymentRefunded {
		t.Errorf("ParsePaymentStatus = %q, %v", ps, ok)
	}
}

package permissions

import "testing"

func TestCheck(t *testing.T) {
	set := Set{ViewSales, ViewProducts}

	if !Check(false, set, ViewSales) {
		t.Fatal("expected granted permission to pass")
	}
	if Check(false, set, EditSales) {
		t.Fatal("expected missing permission to fail")
	}
	if !Check(true, nil, ManageUsers) {
		t.Fatal("admins pass every check")
	}
	if Check(false, nil, ViewSales) {
		t.Fatal("empty set grants nothing")
	}
}

func TestSetRoundTrip(t *testing.T) {
	original := Set{ViewSales, EditSales}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var decoded Set
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !decoded.Has(ViewSales) || !decoded.Has(EditSales) || decoded.Has(ViewAudit) {
		t.Fatalf("round trip lost data: %v", decoded)
	}
}

func TestScanHandlesNilAndBytes(t *testing.T) {
	var s Set
	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if len(s) != 0 {
		t.Fatalf("expected empty set, got %v", s)
	}

	if err := s.Scan([]byte(`["sales.view"]`)); err != nil {
		t.Fatalf("Scan bytes failed: %v", err)
	}
	if !s.Has(ViewSales) {
		t.Fatalf("expected sales.view, got %v", s)
	}
}

func TestAllCoversEveryPermission(t *testing.T) {
	all := All()
	for _, p := range []Permission{
		ViewEmployees, EditEmployees,
		ViewProducts, EditProducts,
		ViewCustomers, EditCustomers,
		ViewSales, EditSales,
		ManageUsers, ViewAudit,
	} {
		if !all.Has(p) {
			t.Fatalf("All() is missing %s", p)
		}
	}
}

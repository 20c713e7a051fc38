package services

import (
	"errors"
	"reflect"
	"testing"
)

func TestCreateResortStoresCents(t *testing.T) {
	db := newTestDB(t)
	svc := NewResortService(db)
	partner := seedPartner(t, db, "sunset", 10)

	resort, err := svc.Create(partner.ID, CreateResortInput{
		Name:              "  Sunset Cove ",
		Location:          "Maldives",
		Description:       "Overwater villas",
		BasePricePerNight: 450,
		AmenitiesCSV:      "Pool, Spa, , Dive Center ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resort.Name != "Sunset Cove" {
		t.Fatalf("Name = %q, want trimmed", resort.Name)
	}
	if resort.BasePricePerNight != 45000 {
		t.Fatalf("BasePricePerNight = %d cents, want 45000", resort.BasePricePerNight)
	}
	want := []string{"Pool", "Spa", "Dive Center"}
	if got := resort.AmenityList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("AmenityList() = %v, want %v", got, want)
	}
}

func TestCreateResortValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewResortService(db)
	partner := seedPartner(t, db, "sunset", 10)

	cases := []CreateResortInput{
		{Name: "", Location: "Maldives", BasePricePerNight: 100},
		{Name: "Cove", Location: "", BasePricePerNight: 100},
		{Name: "Cove", Location: "Maldives", BasePricePerNight: 0},
		{Name: "Cove", Location: "Maldives", BasePricePerNight: -5},
	}
	for i, in := range cases {
		if _, err := svc.Create(partner.ID, in); err == nil {
			t.Errorf("case %d: invalid input accepted", i)
		}
	}
}

func TestResortTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewResortService(db)
	p1 := seedPartner(t, db, "sunset", 10)
	p2 := seedPartner(t, db, "palms", 15)
	r1 := seedResort(t, db, p1.ID, "Sunset Cove", 45000)
	seedResort(t, db, p2.ID, "Twin Palms", 20000)

	list, err := svc.ListByPartner(p1.ID)
	if err != nil {
		t.Fatalf("ListByPartner() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != r1.ID {
		t.Fatalf("ListByPartner(p1) returned %d resorts, want only p1's", len(list))
	}

	// p2 cannot see p1's resort even with the real id
	if _, err := svc.FindForPartner(r1.ID, p2.ID); !errors.Is(err, ErrResortNotFound) {
		t.Fatalf("cross-tenant find: error = %v, want ErrResortNotFound", err)
	}
}

func TestDeleteResortOwnershipChecked(t *testing.T) {
	db := newTestDB(t)
	svc := NewResortService(db)
	p1 := seedPartner(t, db, "sunset", 10)
	p2 := seedPartner(t, db, "palms", 15)
	r1 := seedResort(t, db, p1.ID, "Sunset Cove", 45000)

	// p2 deleting p1's resort touches nothing
	if err := svc.Delete(r1.ID, p2.ID); !errors.Is(err, ErrResortNotFound) {
		t.Fatalf("cross-tenant delete: error = %v, want ErrResortNotFound", err)
	}
	if _, err := svc.FindForPartner(r1.ID, p1.ID); err != nil {
		t.Fatalf("resort disappeared after cross-tenant delete attempt: %v", err)
	}

	if err := svc.Delete(r1.ID, p1.ID); err != nil {
		t.Fatalf("owner delete error = %v", err)
	}
	if _, err := svc.FindForPartner(r1.ID, p1.ID); !errors.Is(err, ErrResortNotFound) {
		t.Fatalf("resort still present after owner delete: %v", err)
	}
}

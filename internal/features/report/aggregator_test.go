package report

import (
	"context"
	"testing"
)

func TestGroupedDetailsFollowsTemplateOrder(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	// Fill Safety items only; Hydraulics stays empty.
	for _, in := range []DetailInput{
		{ReportID: rep.ID.Hex(), ItemID: f.itemLight.ID.Hex(), StateID: f.stateOK.ID.Hex()},
		{ReportID: rep.ID.Hex(), ItemID: f.itemHorn.ID.Hex(), StateID: f.stateBad.ID.Hex(), InternalNote: "weak"},
	} {
		if _, err := f.svc.AddDetail(context.Background(), f.mechanic, in); err != nil {
			t.Fatalf("add detail: %v", err)
		}
	}

	grouped, err := f.svc.GroupedDetails(context.Background(), f.mechanic, rep.ID.Hex())
	if err != nil {
		t.Fatalf("grouped details: %v", err)
	}

	if len(grouped.Groups) != 2 {
		t.Fatalf("expected both template groups, got %d", len(grouped.Groups))
	}
	if grouped.Groups[0].GroupName != "Hydraulics" || grouped.Groups[1].GroupName != "Safety" {
		t.Errorf("expected template group order, got %q then %q",
			grouped.Groups[0].GroupName, grouped.Groups[1].GroupName)
	}
	if len(grouped.Groups[0].Items) != 0 {
		t.Errorf("expected empty Hydraulics group, got %d items", len(grouped.Groups[0].Items))
	}

	safety := grouped.Groups[1]
	if len(safety.Items) != 2 {
		t.Fatalf("expected 2 Safety details, got %d", len(safety.Items))
	}
	// Horn ranks before Lights within the group.
	if safety.Items[0].ItemName != "Horn" || safety.Items[1].ItemName != "Lights" {
		t.Errorf("expected item rank order, got %q then %q",
			safety.Items[0].ItemName, safety.Items[1].ItemName)
	}
	if safety.Items[0].StateName != "Needs repair" {
		t.Errorf("expected joined state name, got %q", safety.Items[0].StateName)
	}
}

func TestGroupedDetailsHonorsViewPolicy(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	if _, err := f.svc.GroupedDetails(context.Background(), f.other, rep.ID.Hex()); err == nil {
		t.Fatal("expected foreign mechanic to be rejected")
	}
	if _, err := f.svc.GroupedDetails(context.Background(), f.admin, rep.ID.Hex()); err != nil {
		t.Fatalf("admin access: %v", err)
	}
}

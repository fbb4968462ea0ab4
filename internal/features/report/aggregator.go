package report

import (
	"context"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupedDetails assembles the report's recorded details in the template's
// own order: groups by rank, items by rank within each group. Every group of
// the template appears, even when none of its items has a detail yet, and
// item and state ids are joined with their display names.
func (s *ReportServiceImpl) GroupedDetails(ctx context.Context, actor *user.User, reportID string) (*GroupedDetails, error) {
	rep, err := s.Get(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}

	groups, err := s.Checklists.ListGroups(ctx, rep.ChecklistID)
	if err != nil {
		return nil, apperr.Store(err, "failed to load checklist groups")
	}
	groupIDs := make([]primitive.ObjectID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	items, err := s.Checklists.ListItemsByGroups(ctx, groupIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to load checklist items")
	}

	details, err := s.Repo.ListDetails(ctx, rep.ID)
	if err != nil {
		return nil, apperr.Store(err, "failed to load report details")
	}
	byItem := make(map[primitive.ObjectID]ReportDetail, len(details))
	stateIDs := make([]primitive.ObjectID, 0, len(details))
	for _, d := range details {
		byItem[d.ItemID] = d
		stateIDs = append(stateIDs, d.StateID)
	}
	states, err := s.States.FindByIDs(ctx, stateIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to resolve states")
	}

	itemsByGroup := make(map[primitive.ObjectID][]int, len(groups))
	for i, it := range items {
		itemsByGroup[it.GroupID] = append(itemsByGroup[it.GroupID], i)
	}

	out := &GroupedDetails{ReportID: rep.ID, Groups: make([]DetailGroup, 0, len(groups))}
	for _, g := range groups {
		dg := DetailGroup{GroupName: g.Name, Items: []DetailWithNames{}}
		for _, idx := range itemsByGroup[g.ID] {
			it := items[idx]
			d, ok := byItem[it.ID]
			if !ok {
				continue
			}
			named := DetailWithNames{
				ID:           d.ID,
				ReportID:     d.ReportID,
				ItemID:       it.ID,
				ItemName:     it.Name,
				StateID:      d.StateID,
				InternalNote: d.InternalNote,
				CustomerNote: d.CustomerNote,
			}
			if st, ok := states[d.StateID]; ok {
				named.StateName = st.Name
			}
			dg.Items = append(dg.Items, named)
		}
		out.Groups = append(out.Groups, dg)
	}
	return out, nil
}

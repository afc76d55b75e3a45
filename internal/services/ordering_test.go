package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/models"
)

func TestOrderingAssignsIncreasingPositions(t *testing.T) {
	db := openServiceTestDB(t)
	ordering, err := NewOrderingService(db)
	require.NoError(t, err)

	ctx := context.Background()
	var created []*models.Course
	for _, title := range []string{"Go", "SQL", "Docker"} {
		course := &models.Course{Title: title}
		require.NoError(t, ordering.Create(ctx, coursesTable, course))
		created = append(created, course)
	}

	require.Equal(t, 1, created[0].Order)
	require.Equal(t, 2, created[1].Order)
	require.Equal(t, 3, created[2].Order)
}

func TestOrderingReorder(t *testing.T) {
	db := openServiceTestDB(t)
	ordering, err := NewOrderingService(db)
	require.NoError(t, err)

	ctx := context.Background()
	c1 := &models.Course{Title: "one"}
	c2 := &models.Course{Title: "two"}
	c3 := &models.Course{Title: "three"}
	for _, course := range []*models.Course{c1, c2, c3} {
		require.NoError(t, ordering.Create(ctx, coursesTable, course))
	}

	require.NoError(t, ordering.Reorder(ctx, coursesTable, []string{c3.ID, c1.ID, c2.ID}))

	orders := map[string]int{}
	var courses []models.Course
	require.NoError(t, db.Find(&courses).Error)
	for _, course := range courses {
		orders[course.ID] = course.Order
	}
	require.Equal(t, map[string]int{c3.ID: 3, c1.ID: 2, c2.ID: 1}, orders)

	next := &models.Course{Title: "four"}
	require.NoError(t, ordering.Create(ctx, coursesTable, next))
	require.Equal(t, 4, next.Order)
}

func TestOrderingReorderRejectsInvalidLists(t *testing.T) {
	db := openServiceTestDB(t)
	ordering, err := NewOrderingService(db)
	require.NoError(t, err)

	ctx := context.Background()
	a := &models.Offering{Name: "Audit"}
	b := &models.Offering{Name: "Build"}
	require.NoError(t, ordering.Create(ctx, "services", a))
	require.NoError(t, ordering.Create(ctx, "services", b))

	cases := map[string][]string{
		"empty":     nil,
		"blank":     {a.ID, " "},
		"duplicate": {a.ID, a.ID},
		"partial":   {a.ID},
		"unknown":   {a.ID, "missing"},
		"superset":  {a.ID, b.ID, "missing"},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, ordering.Reorder(ctx, "services", ids), ErrInvalidOrder)
		})
	}

	var stored []models.Offering
	require.NoError(t, db.Order("display_order DESC").Find(&stored).Error)
	require.Equal(t, b.ID, stored[0].ID)
	require.Equal(t, 2, stored[0].Order)
}

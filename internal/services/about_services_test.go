package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

func TestTestimonialImageReplacement(t *testing.T) {
	db := openServiceTestDB(t)
	assets, store := newTestAssets(t)
	svc, err := NewTestimonialService(db, assets)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, TestimonialInput{Name: "Jo"}, nil)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	upload := imageUpload("jo.png")
	created, err := svc.Create(ctx, TestimonialInput{Name: "Jo", Designation: "CTO", Content: "Great"}, &upload)
	require.NoError(t, err)
	require.True(t, store.Has(created.Image))

	replacement := imageUpload("jo2.png")
	updated, err := svc.Update(ctx, created.ID, TestimonialInput{Content: "Even better"}, &replacement)
	require.NoError(t, err)
	require.Equal(t, "Jo", updated.Name)
	require.Equal(t, "Even better", updated.Content)
	require.NotEqual(t, created.Image, updated.Image)
	require.False(t, store.Has(created.Image))
	require.True(t, store.Has(updated.Image))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Zero(t, store.Len())
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrTestimonialNotFound)
}

func TestTeamMemberCRUD(t *testing.T) {
	db := openServiceTestDB(t)
	assets, store := newTestAssets(t)
	svc, err := NewTeamMemberService(db, assets)
	require.NoError(t, err)
	ctx := context.Background()

	photo := imageUpload("me.jpg")
	member, err := svc.Create(ctx, TeamMemberInput{Name: "Sam", Role: "Engineer", LinkedIn: "https://linkedin.com/in/sam"}, &photo)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, member.ID, TeamMemberInput{Role: "Lead", LinkedIn: "https://linkedin.com/in/sam2"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Lead", updated.Role)
	require.Equal(t, "https://linkedin.com/in/sam2", updated.LinkedIn)
	require.Equal(t, member.Photo, updated.Photo)

	require.NoError(t, svc.Delete(ctx, member.ID))
	require.Zero(t, store.Len())
}

func TestCompanyNameConflict(t *testing.T) {
	db := openServiceTestDB(t)
	assets, store := newTestAssets(t)
	svc, err := NewCompanyService(db, assets)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CompanyInput{Name: "Acme"}, nil)
	require.NoError(t, err)

	logo := imageUpload("acme.png")
	_, err = svc.Create(ctx, CompanyInput{Name: "Acme"}, &logo)
	require.ErrorIs(t, err, ErrCompanyExists)
	require.Zero(t, store.Len())

	other, err := svc.Create(ctx, CompanyInput{Name: "Globex"}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, other.ID, CompanyInput{Name: "Acme"}, nil)
	require.ErrorIs(t, err, ErrCompanyExists)

	companies, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	require.Equal(t, "Acme", companies[0].Name)
}

package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/storage"
)

// RegistryConfig tunes the services built by NewRegistry.
type RegistryConfig struct {
	OTPTTL         time.Duration
	StorageTimeout time.Duration
	OTPOptions     []OTPOption
}

// Registry holds one instance of every domain service.
type Registry struct {
	Users        *UserAccountService
	Admins       *AdminAccountService
	OTP          *OTPService
	Assets       *AssetService
	Ordering     *OrderingService
	Blogs        *BlogService
	Comments     *CommentService
	Testimonials *TestimonialService
	Team         *TeamMemberService
	Companies    *CompanyService
	Offerings    *OfferingService
	Courses      *CourseService
	Gallery      *GalleryService
	Leads        *LeadService
}

// NewRegistry wires the domain services over a shared database, mailer and
// object store.
func NewRegistry(db *gorm.DB, mailer mail.Mailer, store storage.Storage, cfg RegistryConfig) (*Registry, error) {
	if db == nil {
		return nil, errors.New("services: db is required")
	}

	var (
		r   Registry
		err error
	)

	otpOpts := append([]OTPOption{WithOTPTTL(cfg.OTPTTL)}, cfg.OTPOptions...)
	if r.OTP, err = NewOTPService(db, mailer, otpOpts...); err != nil {
		return nil, err
	}
	if r.Assets, err = NewAssetService(store, cfg.StorageTimeout); err != nil {
		return nil, err
	}
	if r.Ordering, err = NewOrderingService(db); err != nil {
		return nil, err
	}
	if r.Users, err = NewUserAccountService(db, r.OTP); err != nil {
		return nil, err
	}
	if r.Admins, err = NewAdminAccountService(db); err != nil {
		return nil, err
	}
	if r.Blogs, err = NewBlogService(db, r.Assets); err != nil {
		return nil, err
	}
	if r.Comments, err = NewCommentService(db); err != nil {
		return nil, err
	}
	if r.Testimonials, err = NewTestimonialService(db, r.Assets); err != nil {
		return nil, err
	}
	if r.Team, err = NewTeamMemberService(db, r.Assets); err != nil {
		return nil, err
	}
	if r.Companies, err = NewCompanyService(db, r.Assets); err != nil {
		return nil, err
	}
	if r.Offerings, err = NewOfferingService(db, r.Ordering); err != nil {
		return nil, err
	}
	if r.Courses, err = NewCourseService(db, r.Ordering, r.Assets); err != nil {
		return nil, err
	}
	if r.Gallery, err = NewGalleryService(db, r.Assets); err != nil {
		return nil, err
	}
	if r.Leads, err = NewLeadService(db, mailer); err != nil {
		return nil, err
	}
	return &r, nil
}

package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
)

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) get(academyID, id int64) (announcement.Announcement, error) {
	if a, ok := repo.db.s.announcements[id]; ok && a.AcademyID == academyID && live(a.DeletedAt) {
		return a, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	defer repo.db.lock(ctx)()

	a.ID = repo.db.nextID()
	repo.db.s.announcements[a.ID] = a
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, academyID, id int64) (announcement.Announcement, error) {
	defer repo.db.lock(ctx)()
	return repo.get(academyID, id)
}

func (repo *announcementRepository) ListAnnouncements(ctx context.Context, academyID int64, filter announcement.QueryFilter) ([]announcement.Announcement, error) {
	defer repo.db.lock(ctx)()

	list := repo.db.s.announcements.rows(func(a announcement.Announcement) bool {
		return a.AcademyID == academyID && live(a.DeletedAt) && (filter.Type == "" || a.Type == filter.Type)
	})
	// newest first
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.get(a.AcademyID, a.ID); err != nil {
		return announcement.Announcement{}, err
	}
	repo.db.s.announcements[a.ID] = a
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	a, err := repo.get(academyID, id)
	if err != nil {
		return err
	}
	a.DeletedAt = deleted(at)
	repo.db.s.announcements[id] = a
	return nil
}

type attachmentRepository struct {
	db *DB
}

var _ attachment.Repository = (*attachmentRepository)(nil) // interface compliance check

func NewAttachmentRepository(db *DB) attachment.Repository {
	return &attachmentRepository{db: db}
}

func (repo *attachmentRepository) CreateAttachment(ctx context.Context, a attachment.Attachment) (attachment.Attachment, error) {
	defer repo.db.lock(ctx)()

	a.ID = repo.db.nextID()
	repo.db.s.attachments[a.ID] = a
	return a, nil
}

func (repo *attachmentRepository) get(academyID, id int64) (attachment.Attachment, error) {
	if a, ok := repo.db.s.attachments[id]; ok && a.AcademyID == academyID && live(a.DeletedAt) {
		return a, nil
	}
	return attachment.Attachment{}, attachment.ErrNotFound
}

func (repo *attachmentRepository) GetAttachment(ctx context.Context, academyID, id int64) (attachment.Attachment, error) {
	defer repo.db.lock(ctx)()
	return repo.get(academyID, id)
}

func (repo *attachmentRepository) ListAttachments(ctx context.Context, academyID int64, owner attachment.Owner) ([]attachment.Attachment, error) {
	defer repo.db.lock(ctx)()

	return repo.db.s.attachments.rows(func(a attachment.Attachment) bool {
		return a.AcademyID == academyID && live(a.DeletedAt) &&
			(owner.Kind == "" || a.OwnerKind == owner.Kind) &&
			(owner.ID == 0 || a.OwnerID == owner.ID)
	}), nil
}

func (repo *attachmentRepository) DeleteAttachment(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	a, err := repo.get(academyID, id)
	if err != nil {
		return err
	}
	a.DeletedAt = deleted(at)
	repo.db.s.attachments[id] = a
	return nil
}

package sqlxrepos

import (
	"context"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
)

const (
	liveAnnouncement = "SELECT * FROM announcement WHERE deleted_at IS NULL"
	liveAttachment   = "SELECT * FROM attachment WHERE deleted_at IS NULL"
)

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	q := insertQuery("announcement", "academy_id", "employee_id", "title", "body", "type", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, nil, q, a)
	if err != nil {
		return announcement.Announcement{}, err
	}
	a.ID = id
	return a, nil
}

func (repo *announcementRepository) GetAnnouncement(ctx context.Context, academyID, id int64) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := repo.db.get(ctx, &a, announcement.ErrNotFound, liveAnnouncement+" AND academy_id = $1 AND id = $2", academyID, id)
	return a, err
}

func (repo *announcementRepository) ListAnnouncements(ctx context.Context, academyID int64, filter announcement.QueryFilter) ([]announcement.Announcement, error) {
	w := newWhere(academyID)
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	list := make([]announcement.Announcement, 0)
	err := repo.db.list(ctx, &list, liveAnnouncement+" AND academy_id = $1"+w.sql()+" ORDER BY id DESC", w.args...)
	return list, err
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	q := updateQuery("announcement", "title", "body", "type", "updated_at")
	if err := repo.db.update(ctx, nil, announcement.ErrNotFound, q, a); err != nil {
		return announcement.Announcement{}, err
	}
	return a, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, announcement.ErrNotFound, softDeleteQuery("announcement"), academyID, id, at)
}

type attachmentRepository struct {
	db *DB
}

var _ attachment.Repository = (*attachmentRepository)(nil) // interface compliance check

func NewAttachmentRepository(db *DB) attachment.Repository {
	return &attachmentRepository{db: db}
}

func (repo *attachmentRepository) CreateAttachment(ctx context.Context, a attachment.Attachment) (attachment.Attachment, error) {
	q := insertQuery("attachment", "academy_id", "owner_kind", "owner_id", "stored_name", "original_name",
		"content_type", "size", "created_at")
	id, err := repo.db.insert(ctx, nil, q, a)
	if err != nil {
		return attachment.Attachment{}, err
	}
	a.ID = id
	return a, nil
}

func (repo *attachmentRepository) GetAttachment(ctx context.Context, academyID, id int64) (attachment.Attachment, error) {
	var a attachment.Attachment
	err := repo.db.get(ctx, &a, attachment.ErrNotFound, liveAttachment+" AND academy_id = $1 AND id = $2", academyID, id)
	return a, err
}

func (repo *attachmentRepository) ListAttachments(ctx context.Context, academyID int64, owner attachment.Owner) ([]attachment.Attachment, error) {
	w := newWhere(academyID)
	if owner.Kind != "" {
		w.add("owner_kind = ?", owner.Kind)
	}
	if owner.ID != 0 {
		w.add("owner_id = ?", owner.ID)
	}
	list := make([]attachment.Attachment, 0)
	err := repo.db.list(ctx, &list, liveAttachment+" AND academy_id = $1"+w.sql()+" ORDER BY id", w.args...)
	return list, err
}

func (repo *attachmentRepository) DeleteAttachment(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, attachment.ErrNotFound, softDeleteQuery("attachment"), academyID, id, at)
}

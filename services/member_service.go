package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/repositories"
	"github.com/dojoverse/dojo-system/storage"
	"github.com/google/uuid"
)

type CreateMemberInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	BeltRank  string  `json:"belt_rank"`
}

type UpdateMemberInput struct {
	FirstName *string              `json:"first_name"`
	LastName  *string              `json:"last_name"`
	Email     *string              `json:"email"`
	Phone     *string              `json:"phone"`
	BeltRank  *string              `json:"belt_rank"`
	Status    *models.MemberStatus `json:"status"`
}

type MemberService interface {
	CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error)
	GetMemberByID(ctx context.Context, id int) (*models.Member, error)
	ListMembers(ctx context.Context, status *models.MemberStatus) ([]*models.Member, error)
	UpdateMember(ctx context.Context, id int, input UpdateMemberInput) (*models.Member, error)
	DeleteMember(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, contentType string, r io.Reader) (*models.Member, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExpireLapsedMembers(ctx context.Context) (int64, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
	uploader   storage.FileUploader
	email      Mailer
	logger     *slog.Logger
}

func NewMemberService(
	memberRepo repositories.MemberRepository,
	uploader storage.FileUploader,
	email Mailer,
	logger *slog.Logger,
) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		uploader:   uploader,
		email:      email,
		logger:     logger,
	}
}

func (s *memberService) CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrMemberNameRequired
	}
	if input.Email == "" {
		return nil, ErrMemberEmailRequired
	}

	now := time.Now().UTC()
	member := &models.Member{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Phone:      input.Phone,
		BeltRank:   input.BeltRank,
		Status:     models.MemberActive,
		BadgeToken: uuid.NewString(),
		// The first month is covered by the signup fee.
		ExpiresAt: now.AddDate(0, 1, 0),
		JoinedAt:  now,
	}
	if member.BeltRank == "" {
		member.BeltRank = "white"
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberEmailConflict) {
			return nil, ErrMemberEmailConflict
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	if err := s.email.SendWelcomeEmail(member.Email, member.FirstName); err != nil {
		s.logger.Error("failed to send welcome email",
			slog.Int("member_id", member.ID), slog.Any("error", err))
	}

	s.populatePhotoURL(member)
	return member, nil
}

func (s *memberService) GetMemberByID(ctx context.Context, id int) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	s.populatePhotoURL(member)
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context, status *models.MemberStatus) ([]*models.Member, error) {
	members, err := s.memberRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		s.populatePhotoURL(member)
	}
	return members, nil
}

func (s *memberService) UpdateMember(ctx context.Context, id int, input UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		member.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		member.LastName = *input.LastName
	}
	if input.Email != nil {
		member.Email = *input.Email
	}
	if input.Phone != nil {
		member.Phone = input.Phone
	}
	if input.BeltRank != nil {
		member.BeltRank = *input.BeltRank
	}
	if input.Status != nil {
		member.Status = *input.Status
	}

	if member.FirstName == "" || member.LastName == "" {
		return nil, ErrMemberNameRequired
	}
	if member.Email == "" {
		return nil, ErrMemberEmailRequired
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberEmailConflict) {
			return nil, ErrMemberEmailConflict
		}
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member %d: %w", id, err)
	}
	return member, nil
}

func (s *memberService) DeleteMember(ctx context.Context, id int) error {
	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if member.PhotoKey != nil {
		if err := s.uploader.Delete(ctx, *member.PhotoKey); err != nil {
			s.logger.Error("failed to delete member photo from storage",
				slog.Int("member_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *memberService) UploadPhoto(ctx context.Context, id int, contentType string, r io.Reader) (*models.Member, error) {
	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("members/%d/photo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo for member %d: %w", id, err)
	}

	if err := s.memberRepo.UpdatePhotoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	member.PhotoKey = &result.Key
	s.populatePhotoURL(member)
	return member, nil
}

// ExportCSV streams the full roster to w.
func (s *memberService) ExportCSV(ctx context.Context, w io.Writer) error {
	members, err := s.memberRepo.List(ctx, nil)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "first_name", "last_name", "email", "phone", "belt_rank", "status", "expires_at", "joined_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, m := range members {
		phone := ""
		if m.Phone != nil {
			phone = *m.Phone
		}
		record := []string{
			fmt.Sprintf("%d", m.ID),
			m.FirstName,
			m.LastName,
			m.Email,
			phone,
			m.BeltRank,
			string(m.Status),
			m.ExpiresAt.Format(time.RFC3339),
			m.JoinedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for member %d: %w", m.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExpireLapsedMembers flips active members past their paid-through date to
// expired. Run periodically by the scheduler.
func (s *memberService) ExpireLapsedMembers(ctx context.Context) (int64, error) {
	return s.memberRepo.ExpireLapsed(ctx, time.Now().UTC())
}

func (s *memberService) populatePhotoURL(member *models.Member) {
	if member.PhotoKey != nil {
		url := s.uploader.GetPublicURL(*member.PhotoKey)
		member.PhotoURL = &url
	}
}

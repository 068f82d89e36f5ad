package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/repositories"
)

type ClassInput struct {
	Name        string    `json:"name"`
	Instructor  string    `json:"instructor"`
	StartsAt    time.Time `json:"starts_at"`
	DurationMin int       `json:"duration_min"`
	Capacity    int       `json:"capacity"`
}

type ClassService interface {
	CreateClass(ctx context.Context, input ClassInput) (*models.ClassSession, error)
	GetClassByID(ctx context.Context, id int) (*models.ClassSession, error)
	ListClasses(ctx context.Context) ([]*models.ClassSession, error)
	UpdateClass(ctx context.Context, id int, input ClassInput) (*models.ClassSession, error)
	DeleteClass(ctx context.Context, id int) error
}

type classService struct {
	classRepo repositories.ClassRepository
}

func NewClassService(classRepo repositories.ClassRepository) ClassService {
	return &classService{classRepo: classRepo}
}

func (s *classService) CreateClass(ctx context.Context, input ClassInput) (*models.ClassSession, error) {
	if err := validateClassInput(input); err != nil {
		return nil, err
	}

	class := &models.ClassSession{
		Name:        input.Name,
		Instructor:  input.Instructor,
		StartsAt:    input.StartsAt,
		DurationMin: input.DurationMin,
		Capacity:    input.Capacity,
	}
	if class.DurationMin == 0 {
		class.DurationMin = 60
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class session: %w", err)
	}
	return class, nil
}

func (s *classService) GetClassByID(ctx context.Context, id int) (*models.ClassSession, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClassNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *classService) ListClasses(ctx context.Context) ([]*models.ClassSession, error) {
	return s.classRepo.List(ctx)
}

func (s *classService) UpdateClass(ctx context.Context, id int, input ClassInput) (*models.ClassSession, error) {
	if err := validateClassInput(input); err != nil {
		return nil, err
	}

	class, err := s.GetClassByID(ctx, id)
	if err != nil {
		return nil, err
	}

	class.Name = input.Name
	class.Instructor = input.Instructor
	class.StartsAt = input.StartsAt
	class.DurationMin = input.DurationMin
	class.Capacity = input.Capacity

	if err := s.classRepo.Update(ctx, class); err != nil {
		if errors.Is(err, repositories.ErrClassNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to update class session %d: %w", id, err)
	}
	return class, nil
}

func (s *classService) DeleteClass(ctx context.Context, id int) error {
	if err := s.classRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrClassNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}

func validateClassInput(input ClassInput) error {
	if input.Name == "" {
		return ErrClassNameRequired
	}
	if input.Capacity <= 0 {
		return ErrClassCapacityInvalid
	}
	return nil
}

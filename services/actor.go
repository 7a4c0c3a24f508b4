package services

import (
	"fmt"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	Role models.Role
	ID   uuid.UUID
}

func Student(id uuid.UUID) Actor    { return Actor{Role: models.RoleStudent, ID: id} }
func Instructor(id uuid.UUID) Actor { return Actor{Role: models.RoleInstructor, ID: id} }
func Admin(id uuid.UUID) Actor      { return Actor{Role: models.RoleAdmin, ID: id} }

// partyOf resolves which side of pkg the actor is on. Admins are never a party.
func (a Actor) partyOf(pkg *models.LessonPackage) (models.Role, error) {
	switch a.Role {
	case models.RoleStudent:
		if pkg.StudentID == a.ID {
			return models.RoleStudent, nil
		}
	case models.RoleInstructor:
		if pkg.InstructorID == a.ID {
			return models.RoleInstructor, nil
		}
	case models.RoleAdmin:
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrUnauthorizedActor, a.Role)
	}
	return "", ErrUnauthorizedActor
}

// canView allows either party and admins.
func (a Actor) canView(pkg *models.LessonPackage) error {
	switch a.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent, models.RoleInstructor:
		_, err := a.partyOf(pkg)
		return err
	default:
		return fmt.Errorf("%w: unknown role %q", ErrUnauthorizedActor, a.Role)
	}
}

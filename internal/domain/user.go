package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleStudent Role = "student"
	RoleCoach   Role = "coach"
	RoleAdmin   Role = "admin"
)

// ErrUnknownRole is returned by ParseRole for role strings outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// roleAliases maps the loose role spellings found in imported user data to a Role.
var roleAliases = map[string]Role{
	"student":       RoleStudent,
	"students":      RoleStudent,
	"student_role":  RoleStudent,
	"coach":         RoleCoach,
	"coaches":       RoleCoach,
	"coach_role":    RoleCoach,
	"admin":         RoleAdmin,
	"admins":        RoleAdmin,
	"admin_role":    RoleAdmin,
	"administrator": RoleAdmin,
}

// ParseRole normalizes a raw role string once, at the point where external role
// data enters the system. Everything past this boundary compares typed Roles.
func ParseRole(raw string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if role, ok := roleAliases[key]; ok {
		return role, nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCoach || r == RoleAdmin
}

// User represents a user in the system (a Student, a Coach or an Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Coach-specific ---
	StudentIDs []primitive.ObjectID `bson:"studentIds,omitempty" json:"studentIds,omitempty"`

	// --- Student-specific ---
	CoachID *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`

	// HasPaid selects the paid access window over the free coaching term.
	HasPaid           bool       `bson:"hasPaid" json:"hasPaid"`
	CoachingTermStart *time.Time `bson:"coachingTermStart,omitempty" json:"coachingTermStart,omitempty"`
	CoachingTermEnd   *time.Time `bson:"coachingTermEnd,omitempty" json:"coachingTermEnd,omitempty"`
	AccessStart       *time.Time `bson:"accessStart,omitempty" json:"accessStart,omitempty"`
	AccessEnd         *time.Time `bson:"accessEnd,omitempty" json:"accessEnd,omitempty"`
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProgramAccess is the set of program-window fields an admin can change on a student.
type ProgramAccess struct {
	HasPaid           bool
	CoachingTermStart *time.Time
	CoachingTermEnd   *time.Time
	AccessStart       *time.Time
	AccessEnd         *time.Time
}

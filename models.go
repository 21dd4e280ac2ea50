package todo

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. Usernames are unique at the store level; a race
// between concurrent registrations resolves at the constraint, not in code.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Username      string     `bun:"username,notnull,unique" json:"username"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Disabled      bool       `bun:"disabled,notnull,default:false" json:"disabled"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Identity adapts the record to the token issuing interface.
func (u *User) Identity() Identity {
	return authIdentity{
		id:       u.ID.String(),
		username: u.Username,
	}
}

// Task is the task model. OwnerID binds the task to the registered user that
// created it; only that user may read or mutate it.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   string     `bun:"description" json:"description"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Created       time.Time  `bun:"created,nullzero,default:current_timestamp" json:"created"`
	Completed     bool       `bun:"completed,notnull,default:false" json:"completed"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// OwnedBy reports whether user created this task. Callers must translate a
// false result into "not found", never "forbidden".
func (t *Task) OwnedBy(user *User) bool {
	if t == nil || user == nil {
		return false
	}
	return t.OwnerID == user.ID
}

type authIdentity struct {
	id       string
	username string
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Username() string { return a.username }

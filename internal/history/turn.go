package history

import "fmt"

// Role tags who produced a turn. System instructions are never stored as turns.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Greeting is the model turn every session starts with.
const Greeting = "اسلام علیکم! آج کا جوک سناؤں؟ 😄"

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Turn is a single conversational message. Turns are immutable once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn builds a user turn.
func UserTurn(text string) Turn { return Turn{Role: RoleUser, Text: text} }

// ModelTurn builds a model turn.
func ModelTurn(text string) Turn { return Turn{Role: RoleModel, Text: text} }

func (t Turn) String() string {
	return fmt.Sprintf("%s: %s", t.Role, t.Text)
}

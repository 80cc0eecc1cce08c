package domain

import (
	"math"
	"time"
)

// Store keys shared by every persistence backend.
const (
	KeyCurrentUser       = "currentUser"
	KeyCompletedStudents = "completedStudents"
	KeyParticipants      = "participants"
	KeyQuestions         = "questions"
	KeyPoles             = "poles"
	KeySiteSettings      = "siteSettings"
)

// OptionCount is the fixed number of choices per question.
const OptionCount = 4

// UnknownPole groups participant records that carry no pole.
const UnknownPole = "Unknown"

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
	Pole    string   `json:"pole,omitempty"`
}

// ValidCorrect reports whether Correct indexes one of the options.
func (q Question) ValidCorrect() bool {
	return q.Correct >= 0 && q.Correct < len(q.Options)
}

// UserType distinguishes students from admins.
type UserType string

const (
	UserStudent UserType = "student"
	UserAdmin   UserType = "admin"
)

// User is the logged-in identity persisted under KeyCurrentUser.
type User struct {
	Name     string   `json:"name"`
	Pole     string   `json:"pole,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	UserType UserType `json:"userType"`
}

// AnswerEntry is one processed question of a session.
type AnswerEntry struct {
	QuestionID int64 `json:"questionId"`
	Selected   int   `json:"selectedIndex"`
	Correct    bool  `json:"isCorrect"`
	Skipped    bool  `json:"skipped,omitempty"`
}

// SkippedIndex is the selected index recorded for skipped questions.
const SkippedIndex = -1

// ParticipantRecord is the immutable result snapshot written when a session finishes.
type ParticipantRecord struct {
	Name          string    `json:"name"`
	Pole          string    `json:"pole"`
	Phone         string    `json:"phone"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"maxScore"`
	Percentage    int       `json:"percentage"`
	DateSubmitted time.Time `json:"dateSubmitted"`
}

// PoleGroup is one pole's slice of the participant log.
type PoleGroup struct {
	Pole         string              `json:"pole"`
	Participants []ParticipantRecord `json:"participants"`
}

// ParticipantStats summarises the participant log for the admin view.
type ParticipantStats struct {
	Total          int `json:"totalParticipants"`
	AveragePercent int `json:"averageScore"`
	HighestScore   int `json:"highestScore"`
}

// SiteSettings is the admin-editable branding.
type SiteSettings struct {
	Title        string `json:"title"`
	PrimaryColor string `json:"primaryColor"`
}

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	StatusNotStarted SessionStatus = "not_started"
	StatusActive     SessionStatus = "active"
	StatusFinished   SessionStatus = "finished"
)

// FinishReason records which path finalized a session.
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishEnded     FinishReason = "ended"
	FinishExpired   FinishReason = "expired"
	// FinishAborted marks a session replaced before it finished; no record is written.
	FinishAborted FinishReason = "aborted"
)

// QuestionView is a question as shown to the student, without the answer.
type QuestionView struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// SessionSnapshot is a point-in-time view of a quiz session.
type SessionSnapshot struct {
	SessionID        string             `json:"sessionId"`
	User             User               `json:"user"`
	Status           SessionStatus      `json:"status"`
	Cursor           int                `json:"cursor"`
	Total            int                `json:"total"`
	Score            int                `json:"score"`
	Answered         bool               `json:"answered"`
	RemainingSeconds int                `json:"remainingSeconds"`
	Question         *QuestionView      `json:"question,omitempty"`
	Answers          []AnswerEntry      `json:"answers"`
	FinishReason     FinishReason       `json:"finishReason,omitempty"`
	Result           *ParticipantRecord `json:"result,omitempty"`
}

// Percentage rounds 100*score/max half away from zero. Every displayed or
// sorted percentage goes through here.
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(max)))
}

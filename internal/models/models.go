package models

import (
	"time"
)

// Identity is the authenticated user as issued by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type User struct {
	UserID                 string    `json:"userId" bson:"-"`
	Email                  string    `json:"email" bson:"email"`
	Nickname               string    `json:"nickname" bson:"nickname"`
	SexType                string    `json:"sexType" bson:"sexType"`
	AgeGroup               string    `json:"ageGroup" bson:"ageGroup"`
	PasswordHash           string    `json:"-" bson:"passwordHash"`
	RefreshToken           string    `json:"-" bson:"refreshToken"`
	RefreshTokenExpiryTime time.Time `json:"-" bson:"refreshTokenExpiryTime"`
	CreatedAt              time.Time `json:"createdAt" bson:"createdAt"`
}

func (u *User) Identity() *Identity {
	return &Identity{
		UID:         u.UserID,
		Email:       u.Email,
		DisplayName: u.Nickname,
	}
}

type Question struct {
	Question       string   `json:"question" bson:"question"`
	Options        []string `json:"options" bson:"options"`
	SelectedOption string   `json:"selectedOption" bson:"selectedOption"`
}

// Post is a survey posting from the posts collection.
type Post struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	Category         string     `json:"category"`
	SexType          string     `json:"sexType"`
	AgeGroup         string     `json:"ageGroup"`
	ResearchType     string     `json:"researchType"`
	ResearchLocation string     `json:"researchLocation"`
	ResearchTime     string     `json:"researchTime"`
	ImageURL         string     `json:"imageUrl"`
	SurveyData       []Question `json:"surveyData"`
	DeadlineDate     *time.Time `json:"deadlineDate"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Views            int64      `json:"views"`
	Likes            int64      `json:"likes"`
	Rewards          int64      `json:"rewards"`
	Counts           int64      `json:"counts"`
	UserID           string     `json:"userId"`
	Email            string     `json:"email"`
	Nickname         string     `json:"nickname"`
}

// LitePost is the reduced post variant from the litesurveyposts collection.
type LitePost struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Contents     string     `json:"contents"`
	Images       string     `json:"images"`
	Views        int64      `json:"views"`
	Likes        int64      `json:"likes"`
	Counts       int64      `json:"counts"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeadlineDate *time.Time `json:"deadlineDate"`
}

// Submission is one user's answers to one post. It is never updated.
type Submission struct {
	ID               string    `json:"id" bson:"-"`
	PostID           string    `json:"postId" bson:"postId"`
	UserID           string    `json:"userId" bson:"userId"`
	Answers          []string  `json:"answers" bson:"answers"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	Email            string    `json:"email" bson:"email"`
	Nickname         string    `json:"nickname" bson:"nickname"`
	Category         string    `json:"category" bson:"category"`
	AgeGroup         string    `json:"ageGroup" bson:"ageGroup"`
	Title            string    `json:"title" bson:"title"`
	Content          string    `json:"content" bson:"content"`
	ResearchLocation string    `json:"researchLocation" bson:"researchLocation"`
	ResearchTime     string    `json:"researchTime" bson:"researchTime"`
	ResearchType     string    `json:"researchType" bson:"researchType"`
	Deadline         string    `json:"deadline" bson:"deadline"`
	UserEmail        string    `json:"userEmail" bson:"userEmail"`
	UserNickname     string    `json:"userNickname" bson:"userNickname"`
	UserSexType      string    `json:"userSexType" bson:"userSexType"`
}

// CompletionMarker records that a user already submitted a post.
type CompletionMarker struct {
	UserID    string    `json:"userId" bson:"userId"`
	PostID    string    `json:"postId" bson:"postId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	IsDone    bool      `json:"isDone" bson:"isDone"`
}

type Image struct {
	ImageID     string    `json:"imageId" bson:"-"`
	UserID      string    `json:"userId" bson:"userId"`
	ObjectName  string    `json:"objectName" bson:"objectName"`
	ImageURL    string    `json:"imageUrl" bson:"imageUrl"`
	FileName    string    `json:"fileName" bson:"fileName"`
	ContentType string    `json:"contentType" bson:"contentType"`
	Size        int64     `json:"size" bson:"size"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type AnswerCount struct {
	QuestionIndex int    `json:"questionIndex" db:"question_index"`
	Answer        string `json:"answer" db:"answer"`
	Count         int    `json:"count" db:"count"`
}

type AnswerDistribution struct {
	PostID      string        `json:"postId"`
	Submissions int           `json:"submissions"`
	Answers     []AnswerCount `json:"answers"`
}

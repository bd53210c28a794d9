// internal/domain/models/account.go
package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NicknamePattern follows the study path alphabet.
const NicknamePattern = `^[ㄱ-ㅎ가-힣a-z0-9_-]{2,20}$`

var NicknameRE = regexp.MustCompile(NicknamePattern)

// Account is a signed-up user. Studies reference accounts by ID only.
// TagIDs and ZoneIDs record interests used for study recommendations.
type Account struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Nickname     string             `bson:"nickname" json:"nickname"`
	NicknameCI   string             `bson:"nickname_ci" json:"-"` // folded for lookups
	Email        string             `bson:"email" json:"email"`   // stored lowercase
	PasswordHash string             `bson:"password_hash" json:"-"`

	EmailVerified              bool       `bson:"email_verified" json:"email_verified"`
	EmailCheckToken            string     `bson:"email_check_token,omitempty" json:"-"`
	EmailCheckTokenGeneratedAt *time.Time `bson:"email_check_token_generated_at,omitempty" json:"-"`
	JoinedAt                   *time.Time `bson:"joined_at,omitempty" json:"joined_at,omitempty"`

	TagIDs  IDSet `bson:"tag_ids" json:"tag_ids"`
	ZoneIDs IDSet `bson:"zone_ids" json:"zone_ids"`

	// Notification preferences
	StudyCreatedByEmail bool `bson:"study_created_by_email" json:"study_created_by_email"`
	StudyUpdatedByEmail bool `bson:"study_updated_by_email" json:"study_updated_by_email"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CanSendConfirmEmail reports whether enough time has passed since the last
// confirmation token was issued.
func (a *Account) CanSendConfirmEmail(now time.Time, interval time.Duration) bool {
	if a.EmailCheckTokenGeneratedAt == nil {
		return true
	}
	return a.EmailCheckTokenGeneratedAt.Before(now.Add(-interval))
}

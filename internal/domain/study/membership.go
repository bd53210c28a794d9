// internal/domain/study/membership.go
package study

import (
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsManager reports whether accountID manages the study.
func IsManager(s *models.Study, accountID primitive.ObjectID) bool {
	return s.ManagerIDs.Has(accountID)
}

// IsMember reports whether accountID has joined the study.
func IsMember(s *models.Study, accountID primitive.ObjectID) bool {
	return s.MemberIDs.Has(accountID)
}

// IsJoinable reports whether accountID may join: the study is published and
// recruiting, and the account is neither a member nor a manager.
func IsJoinable(s *models.Study, accountID primitive.ObjectID) bool {
	return s.Published && s.Recruiting &&
		!s.MemberIDs.Has(accountID) && !s.ManagerIDs.Has(accountID)
}

// AddManager inserts accountID into the managers set.
func AddManager(s *models.Study, accountID primitive.ObjectID) {
	s.ManagerIDs.Add(accountID)
}

// AddMember inserts accountID into the members set. Eligibility is the
// caller's concern so privileged flows can bypass IsJoinable.
func AddMember(s *models.Study, accountID primitive.ObjectID) {
	if s.MemberIDs.Add(accountID) {
		s.MemberCount = s.MemberIDs.Len()
	}
}

// RemoveMember deletes accountID from the members set.
func RemoveMember(s *models.Study, accountID primitive.ObjectID) {
	if s.MemberIDs.Remove(accountID) {
		s.MemberCount = s.MemberIDs.Len()
	}
}

// AddTag labels the study with tag. Adding a present tag is a no-op.
func AddTag(s *models.Study, tag models.Tag) { s.TagIDs.Add(tag.ID) }

// RemoveTag drops tag from the study. Removing an absent tag is a no-op.
func RemoveTag(s *models.Study, tag models.Tag) { s.TagIDs.Remove(tag.ID) }

// AddZone places the study in zone.
func AddZone(s *models.Study, zone models.Zone) { s.ZoneIDs.Add(zone.ID) }

// RemoveZone takes the study out of zone.
func RemoveZone(s *models.Study, zone models.Zone) { s.ZoneIDs.Remove(zone.ID) }

// Account interests. Same set semantics as the study sets.

// AddInterestTag records tag as one of the account's interests.
func AddInterestTag(a *models.Account, tag models.Tag) { a.TagIDs.Add(tag.ID) }

// RemoveInterestTag forgets tag as an interest.
func RemoveInterestTag(a *models.Account, tag models.Tag) { a.TagIDs.Remove(tag.ID) }

// AddInterestZone records zone as an area the account wants studies in.
func AddInterestZone(a *models.Account, zone models.Zone) { a.ZoneIDs.Add(zone.ID) }

// RemoveInterestZone forgets zone as an area of interest.
func RemoveInterestZone(a *models.Account, zone models.Zone) { a.ZoneIDs.Remove(zone.ID) }

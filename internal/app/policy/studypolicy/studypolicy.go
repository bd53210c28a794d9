// internal/app/policy/studypolicy/studypolicy.go
package studypolicy

import (
	"errors"

	"github.com/dalemusser/studyhub/internal/app/system/authz"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/domain/study"
)

// ErrForbidden is returned by RequireManage when the caller lacks
// permission for the operation.
var ErrForbidden = errors.New("forbidden")

// CanManage reports whether the caller manages the study. Every settings
// operation (description, banner, tags, zones, lifecycle, path, title,
// removal) requires it.
func CanManage(c authz.Caller, s *models.Study) bool {
	return !c.Anonymous() && study.IsManager(s, c.AccountID)
}

// CanJoin reports whether the caller may join the study right now.
func CanJoin(c authz.Caller, s *models.Study) bool {
	return !c.Anonymous() && study.IsJoinable(s, c.AccountID)
}

// CanLeave reports whether the caller is a member who may leave.
func CanLeave(c authz.Caller, s *models.Study) bool {
	return !c.Anonymous() && study.IsMember(s, c.AccountID)
}

// CanView reports whether the caller may see the study. Drafts are visible
// to their managers only.
func CanView(c authz.Caller, s *models.Study) bool {
	return s.Published || CanManage(c, s)
}

// RequireManage returns ErrForbidden unless the caller manages the study.
func RequireManage(c authz.Caller, s *models.Study) error { return require(CanManage(c, s)) }

func require(ok bool) error {
	if ok {
		return nil
	}
	return ErrForbidden
}
